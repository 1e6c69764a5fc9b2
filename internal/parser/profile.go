package parser

// Profile 是资料合约的用户账户
type Profile struct {
	User        string
	Username    string
	Image       string
	CreatedAt   int64
	LastUpdated int64
	AboutMe     *string
	Bump        uint8
}

// ParseProfile 按账户布局从左到右解析：
// [disc 8] user 32 | username | image | created_at | last_updated | about_me Option | bump
func ParseProfile(data []byte) (*Profile, error) {
	cur := NewCursor(data)
	if err := cur.Skip("discriminator", 8); err != nil {
		return nil, err
	}

	var p Profile
	var err error
	if p.User, err = cur.PubKey("user"); err != nil {
		return nil, err
	}
	if p.Username, err = cur.String("username"); err != nil {
		return nil, err
	}
	if p.Image, err = cur.String("image"); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = cur.I64("created_at"); err != nil {
		return nil, err
	}
	if p.LastUpdated, err = cur.I64("last_updated"); err != nil {
		return nil, err
	}
	if p.AboutMe, err = cur.OptionString("about_me"); err != nil {
		return nil, err
	}
	if p.Bump, err = cur.U8("bump"); err != nil {
		return nil, err
	}
	return &p, nil
}
