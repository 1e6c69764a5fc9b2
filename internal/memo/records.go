package memo

import (
	"github.com/near/borsh-go"

	"memo-engine-sol/internal/rpc"
)

// 各业务域的 category / operation 标签。合约侧按字面量校验，不可改动。
const (
	CategoryProfile = "profile"
	CategoryBlog    = "blog"
	CategoryForum   = "forum"
	CategoryProject = "project"
	CategoryChat    = "chat"

	OpCreateProfile  = "create_profile"
	OpUpdateProfile  = "update_profile"
	OpCreateBlog     = "create_blog"
	OpUpdateBlog     = "update_blog"
	OpBurnForBlog    = "burn_for_blog"
	OpMintForBlog    = "mint_for_blog"
	OpCreatePost     = "create_post"
	OpBurnForPost    = "burn_for_post"
	OpMintForPost    = "mint_for_post"
	OpCreateProject  = "create_project"
	OpUpdateProject  = "update_project"
	OpBurnForProject = "burn_for_project"
	OpSendMessage    = "send_message"
)

// RecordVersion 是当前所有记录结构的版本号
const RecordVersion uint8 = 1

// 字段长度上限（字节）
const (
	maxUsernameLen    = 32
	maxProfileImage   = 256
	maxAboutMeLen     = 128
	maxBlogNameLen    = 64
	maxBlogDescLen    = 256
	maxBlogImageLen   = 256
	maxPostTitleLen   = 128
	maxPostContentLen = 512
	maxPostImageLen   = 256
	maxReplyMsgLen    = 512
	maxProjNameLen    = 64
	maxProjDescLen    = 256
	maxProjImageLen   = 256
	maxProjWebsiteLen = 128
	maxProjectTags    = 4
	maxProjTagLen     = 32
	maxBurnMintMsgLen = 696
)

// encodeRecord 校验后序列化并封包。所有记录的统一出口。
// borsh-go 会把顶层指针序列化成 Option，调用方必须传结构体值。
func encodeRecord(rec interface{ Validate() error }, burnAmount uint64) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	payload, err := borsh.Serialize(rec)
	if err != nil {
		return "", rpc.Otherf("serialize record: %v", err)
	}
	return EncodeEnvelope(burnAmount, payload)
}

// ---------- profile ----------

// ProfileCreationData 与 memo-profile 合约的 create_profile 校验格式一致
type ProfileCreationData struct {
	Version    uint8
	Category   string
	Operation  string
	UserPubkey string
	Username   string
	Image      string
	AboutMe    *string
}

func NewProfileCreationData(userPubkey, username, image string, aboutMe *string) *ProfileCreationData {
	return &ProfileCreationData{
		Version:    RecordVersion,
		Category:   CategoryProfile,
		Operation:  OpCreateProfile,
		UserPubkey: userPubkey,
		Username:   username,
		Image:      image,
		AboutMe:    aboutMe,
	}
}

func (d ProfileCreationData) Validate() error {
	if d.Username == "" || len(d.Username) > maxUsernameLen {
		return rpc.InvalidParamf("invalid username: %d characters (must be 1-%d)", len(d.Username), maxUsernameLen)
	}
	if len(d.Image) > maxProfileImage {
		return rpc.InvalidParamf("invalid image: %d characters (max: %d)", len(d.Image), maxProfileImage)
	}
	if d.AboutMe != nil && len(*d.AboutMe) > maxAboutMeLen {
		return rpc.InvalidParamf("invalid about_me: %d characters (max: %d)", len(*d.AboutMe), maxAboutMeLen)
	}
	return nil
}

func (d *ProfileCreationData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

// ProfileUpdateData 的可选字段语义：外层 nil 表示不改，AboutMe 内层 nil 表示清空
type ProfileUpdateData struct {
	Version    uint8
	Category   string
	Operation  string
	UserPubkey string
	Username   *string
	Image      *string
	AboutMe    **string
}

func NewProfileUpdateData(userPubkey string, username, image *string, aboutMe **string) *ProfileUpdateData {
	return &ProfileUpdateData{
		Version:    RecordVersion,
		Category:   CategoryProfile,
		Operation:  OpUpdateProfile,
		UserPubkey: userPubkey,
		Username:   username,
		Image:      image,
		AboutMe:    aboutMe,
	}
}

func (d ProfileUpdateData) Validate() error {
	if d.Username == nil && d.Image == nil && d.AboutMe == nil {
		return rpc.InvalidParamf("profile update must change at least one field")
	}
	if d.Username != nil && (*d.Username == "" || len(*d.Username) > maxUsernameLen) {
		return rpc.InvalidParamf("invalid username: %d characters (must be 1-%d)", len(*d.Username), maxUsernameLen)
	}
	if d.Image != nil && len(*d.Image) > maxProfileImage {
		return rpc.InvalidParamf("invalid image: %d characters (max: %d)", len(*d.Image), maxProfileImage)
	}
	if d.AboutMe != nil && *d.AboutMe != nil && len(**d.AboutMe) > maxAboutMeLen {
		return rpc.InvalidParamf("invalid about_me: %d characters (max: %d)", len(**d.AboutMe), maxAboutMeLen)
	}
	return nil
}

func (d *ProfileUpdateData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

// ---------- blog ----------

type BlogCreationData struct {
	Version     uint8
	Category    string
	Operation   string
	BlogID      uint64
	Name        string
	Description string
	Image       string
}

func NewBlogCreationData(blogID uint64, name, description, image string) *BlogCreationData {
	return &BlogCreationData{
		Version:     RecordVersion,
		Category:    CategoryBlog,
		Operation:   OpCreateBlog,
		BlogID:      blogID,
		Name:        name,
		Description: description,
		Image:       image,
	}
}

func (d BlogCreationData) Validate() error {
	if d.Name == "" || len(d.Name) > maxBlogNameLen {
		return rpc.InvalidParamf("invalid blog name: %d characters (must be 1-%d)", len(d.Name), maxBlogNameLen)
	}
	if len(d.Description) > maxBlogDescLen {
		return rpc.InvalidParamf("invalid blog description: %d characters (max: %d)", len(d.Description), maxBlogDescLen)
	}
	if len(d.Image) > maxBlogImageLen {
		return rpc.InvalidParamf("invalid blog image: %d characters (max: %d)", len(d.Image), maxBlogImageLen)
	}
	return nil
}

func (d *BlogCreationData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

type BlogUpdateData struct {
	Version     uint8
	Category    string
	Operation   string
	BlogID      uint64
	Name        *string
	Description *string
	Image       *string
}

func NewBlogUpdateData(blogID uint64, name, description, image *string) *BlogUpdateData {
	return &BlogUpdateData{
		Version:     RecordVersion,
		Category:    CategoryBlog,
		Operation:   OpUpdateBlog,
		BlogID:      blogID,
		Name:        name,
		Description: description,
		Image:       image,
	}
}

func (d BlogUpdateData) Validate() error {
	if d.Name == nil && d.Description == nil && d.Image == nil {
		return rpc.InvalidParamf("blog update must change at least one field")
	}
	if d.Name != nil && (*d.Name == "" || len(*d.Name) > maxBlogNameLen) {
		return rpc.InvalidParamf("invalid blog name: %d characters (must be 1-%d)", len(*d.Name), maxBlogNameLen)
	}
	if d.Description != nil && len(*d.Description) > maxBlogDescLen {
		return rpc.InvalidParamf("invalid blog description: %d characters (max: %d)", len(*d.Description), maxBlogDescLen)
	}
	if d.Image != nil && len(*d.Image) > maxBlogImageLen {
		return rpc.InvalidParamf("invalid blog image: %d characters (max: %d)", len(*d.Image), maxBlogImageLen)
	}
	return nil
}

func (d *BlogUpdateData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

// BlogBurnData 记录对某博客的燃烧附言
type BlogBurnData struct {
	Version   uint8
	Category  string
	Operation string
	BlogID    uint64
	Burner    string
	Message   string
}

func NewBlogBurnData(blogID uint64, burner, message string) *BlogBurnData {
	return &BlogBurnData{
		Version:   RecordVersion,
		Category:  CategoryBlog,
		Operation: OpBurnForBlog,
		BlogID:    blogID,
		Burner:    burner,
		Message:   message,
	}
}

func (d BlogBurnData) Validate() error {
	if len(d.Message) > maxBurnMintMsgLen {
		return rpc.InvalidParamf("burn message too long: %d characters (max: %d)", len(d.Message), maxBurnMintMsgLen)
	}
	return nil
}

func (d *BlogBurnData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

type BlogMintData struct {
	Version   uint8
	Category  string
	Operation string
	BlogID    uint64
	Minter    string
	Message   string
}

func NewBlogMintData(blogID uint64, minter, message string) *BlogMintData {
	return &BlogMintData{
		Version:   RecordVersion,
		Category:  CategoryBlog,
		Operation: OpMintForBlog,
		BlogID:    blogID,
		Minter:    minter,
		Message:   message,
	}
}

func (d BlogMintData) Validate() error {
	if len(d.Message) > maxBurnMintMsgLen {
		return rpc.InvalidParamf("mint message too long: %d characters (max: %d)", len(d.Message), maxBurnMintMsgLen)
	}
	return nil
}

func (d *BlogMintData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

// ---------- forum ----------

type PostCreationData struct {
	Version   uint8
	Category  string
	Operation string
	Creator   string
	PostID    uint64
	Title     string
	Content   string
	Image     string
}

func NewPostCreationData(creator string, postID uint64, title, content, image string) *PostCreationData {
	return &PostCreationData{
		Version:   RecordVersion,
		Category:  CategoryForum,
		Operation: OpCreatePost,
		Creator:   creator,
		PostID:    postID,
		Title:     title,
		Content:   content,
		Image:     image,
	}
}

func (d PostCreationData) Validate() error {
	if d.Title == "" || len(d.Title) > maxPostTitleLen {
		return rpc.InvalidParamf("invalid post title: %d characters (must be 1-%d)", len(d.Title), maxPostTitleLen)
	}
	if d.Content == "" || len(d.Content) > maxPostContentLen {
		return rpc.InvalidParamf("invalid post content: %d characters (must be 1-%d)", len(d.Content), maxPostContentLen)
	}
	if len(d.Image) > maxPostImageLen {
		return rpc.InvalidParamf("invalid post image: %d characters (max: %d)", len(d.Image), maxPostImageLen)
	}
	return nil
}

func (d *PostCreationData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

// PostBurnData 是帖子下的燃烧回复
type PostBurnData struct {
	Version   uint8
	Category  string
	Operation string
	User      string
	PostID    uint64
	Message   string
}

func NewPostBurnData(user string, postID uint64, message string) *PostBurnData {
	return &PostBurnData{
		Version:   RecordVersion,
		Category:  CategoryForum,
		Operation: OpBurnForPost,
		User:      user,
		PostID:    postID,
		Message:   message,
	}
}

func (d PostBurnData) Validate() error {
	if len(d.Message) > maxReplyMsgLen {
		return rpc.InvalidParamf("reply message too long: %d characters (max: %d)", len(d.Message), maxReplyMsgLen)
	}
	return nil
}

func (d *PostBurnData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

type PostMintData struct {
	Version   uint8
	Category  string
	Operation string
	User      string
	PostID    uint64
	Message   string
}

func NewPostMintData(user string, postID uint64, message string) *PostMintData {
	return &PostMintData{
		Version:   RecordVersion,
		Category:  CategoryForum,
		Operation: OpMintForPost,
		User:      user,
		PostID:    postID,
		Message:   message,
	}
}

func (d PostMintData) Validate() error {
	if len(d.Message) > maxReplyMsgLen {
		return rpc.InvalidParamf("reply message too long: %d characters (max: %d)", len(d.Message), maxReplyMsgLen)
	}
	return nil
}

func (d *PostMintData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

// ---------- project ----------

type ProjectCreationData struct {
	Version     uint8
	Category    string
	Operation   string
	ProjectID   uint64
	Name        string
	Description string
	Image       string
	Website     string
	Tags        []string
}

func NewProjectCreationData(projectID uint64, name, description, image, website string, tags []string) *ProjectCreationData {
	return &ProjectCreationData{
		Version:     RecordVersion,
		Category:    CategoryProject,
		Operation:   OpCreateProject,
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		Image:       image,
		Website:     website,
		Tags:        tags,
	}
}

func (d ProjectCreationData) Validate() error {
	if d.Name == "" || len(d.Name) > maxProjNameLen {
		return rpc.InvalidParamf("invalid project name: %d characters (must be 1-%d)", len(d.Name), maxProjNameLen)
	}
	if len(d.Description) > maxProjDescLen {
		return rpc.InvalidParamf("invalid project description: %d characters (max: %d)", len(d.Description), maxProjDescLen)
	}
	if len(d.Image) > maxProjImageLen {
		return rpc.InvalidParamf("invalid project image: %d characters (max: %d)", len(d.Image), maxProjImageLen)
	}
	if len(d.Website) > maxProjWebsiteLen {
		return rpc.InvalidParamf("invalid project website: %d characters (max: %d)", len(d.Website), maxProjWebsiteLen)
	}
	return validateProjectTags(d.Tags)
}

func (d *ProjectCreationData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

type ProjectUpdateData struct {
	Version     uint8
	Category    string
	Operation   string
	ProjectID   uint64
	Name        *string
	Description *string
	Image       *string
	Website     *string
	Tags        *[]string
}

func NewProjectUpdateData(projectID uint64, name, description, image, website *string, tags *[]string) *ProjectUpdateData {
	return &ProjectUpdateData{
		Version:     RecordVersion,
		Category:    CategoryProject,
		Operation:   OpUpdateProject,
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		Image:       image,
		Website:     website,
		Tags:        tags,
	}
}

func (d ProjectUpdateData) Validate() error {
	if d.Name == nil && d.Description == nil && d.Image == nil && d.Website == nil && d.Tags == nil {
		return rpc.InvalidParamf("project update must change at least one field")
	}
	if d.Name != nil && (*d.Name == "" || len(*d.Name) > maxProjNameLen) {
		return rpc.InvalidParamf("invalid project name: %d characters (must be 1-%d)", len(*d.Name), maxProjNameLen)
	}
	if d.Description != nil && len(*d.Description) > maxProjDescLen {
		return rpc.InvalidParamf("invalid project description: %d characters (max: %d)", len(*d.Description), maxProjDescLen)
	}
	if d.Image != nil && len(*d.Image) > maxProjImageLen {
		return rpc.InvalidParamf("invalid project image: %d characters (max: %d)", len(*d.Image), maxProjImageLen)
	}
	if d.Website != nil && len(*d.Website) > maxProjWebsiteLen {
		return rpc.InvalidParamf("invalid project website: %d characters (max: %d)", len(*d.Website), maxProjWebsiteLen)
	}
	if d.Tags != nil {
		return validateProjectTags(*d.Tags)
	}
	return nil
}

func (d *ProjectUpdateData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

type ProjectBurnData struct {
	Version   uint8
	Category  string
	Operation string
	ProjectID uint64
	Burner    string
	Message   string
}

func NewProjectBurnData(projectID uint64, burner, message string) *ProjectBurnData {
	return &ProjectBurnData{
		Version:   RecordVersion,
		Category:  CategoryProject,
		Operation: OpBurnForProject,
		ProjectID: projectID,
		Burner:    burner,
		Message:   message,
	}
}

func (d ProjectBurnData) Validate() error {
	if len(d.Message) > maxBurnMintMsgLen {
		return rpc.InvalidParamf("burn message too long: %d characters (max: %d)", len(d.Message), maxBurnMintMsgLen)
	}
	return nil
}

func (d *ProjectBurnData) Encode(burnAmount uint64) (string, error) {
	return encodeRecord(*d, burnAmount)
}

func validateProjectTags(tags []string) error {
	if len(tags) > maxProjectTags {
		return rpc.InvalidParamf("too many tags: %d (max: %d)", len(tags), maxProjectTags)
	}
	for _, tag := range tags {
		if tag == "" || len(tag) > maxProjTagLen {
			return rpc.InvalidParamf("invalid tag: %d characters (must be 1-%d)", len(tag), maxProjTagLen)
		}
	}
	return nil
}

// ---------- memo-burn 原文 ----------

// EncodeRawBurnNote 将自由文本直接作为封包 payload（memo-burn 程序的格式）
func EncodeRawBurnNote(burnAmount uint64, message string) (string, error) {
	return EncodeEnvelope(burnAmount, []byte(message))
}
