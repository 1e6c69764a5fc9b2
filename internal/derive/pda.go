package derive

import (
	"encoding/binary"

	"github.com/blocto/solana-go-sdk/common"

	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/rpc"
)

// PDA 是一次 program derived address 推导的结果
type PDA struct {
	Address common.PublicKey
	Bump    uint8
}

func findPDA(program common.PublicKey, seeds ...[]byte) (PDA, error) {
	addr, bump, err := common.FindProgramAddress(seeds, program)
	if err != nil {
		return PDA{}, rpc.Otherf("derive pda: %v", err)
	}
	return PDA{Address: addr, Bump: bump}, nil
}

func u64Seed(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

// ProfilePDA 用户资料账户：["profile", user]
func ProfilePDA(program, user common.PublicKey) (PDA, error) {
	return findPDA(program, consts.SeedUserProfile, user.Bytes())
}

// BlogCounterPDA 博客全局计数器：["global_blog_counter"]
func BlogCounterPDA(program common.PublicKey) (PDA, error) {
	return findPDA(program, consts.SeedGlobalBlogCounter)
}

// BlogPDA 单个博客账户：["blog", blog_id 小端]
func BlogPDA(program common.PublicKey, blogID uint64) (PDA, error) {
	return findPDA(program, consts.SeedBlog, u64Seed(blogID))
}

// GlobalCounterPDA 论坛与项目程序共用 ["global_counter"] 种子，
// 各自部署在不同 program 上互不冲突。
func GlobalCounterPDA(program common.PublicKey) (PDA, error) {
	return findPDA(program, consts.SeedGlobalCounter)
}

// PostPDA 帖子账户：["post", post_id 小端]
func PostPDA(program common.PublicKey, postID uint64) (PDA, error) {
	return findPDA(program, consts.SeedPost, u64Seed(postID))
}

// ProjectPDA 项目账户：["project", project_id 小端]
func ProjectPDA(program common.PublicKey, projectID uint64) (PDA, error) {
	return findPDA(program, consts.SeedProject, u64Seed(projectID))
}

// BurnLeaderboardPDA 项目燃烧排行榜：["burn_leaderboard"]
func BurnLeaderboardPDA(program common.PublicKey) (PDA, error) {
	return findPDA(program, consts.SeedBurnLeaderboard)
}

// UserBurnStatsPDA 用户全局燃烧统计：["user_global_burn_stats", user]，
// 挂在 memo-burn 程序下。
func UserBurnStatsPDA(burnProgram, user common.PublicKey) (PDA, error) {
	return findPDA(burnProgram, consts.SeedUserGlobalBurnStats, user.Bytes())
}

// ChatGroupPDA 聊天群账户：["chat_group", group_id 小端]，挂在 memo-chat 程序下
func ChatGroupPDA(chatProgram common.PublicKey, groupID uint64) (PDA, error) {
	return findPDA(chatProgram, consts.SeedChatGroup, u64Seed(groupID))
}

// MintAuthorityPDA 铸币权限账户：["mint_authority"]，挂在 memo-mint 程序下
func MintAuthorityPDA(mintProgram common.PublicKey) (PDA, error) {
	return findPDA(mintProgram, consts.SeedMintAuthority)
}

// AssociatedTokenAddress 推导关联代币账户。
// 种子里带 token program，token-2022 资产必须传 2022 的程序地址，
// sdk 自带的 helper 写死了经典 token program，这里不用它。
func AssociatedTokenAddress(owner, mint, tokenProgram common.PublicKey) (PDA, error) {
	return findPDA(consts.AssociatedTokenProgram, owner.Bytes(), tokenProgram.Bytes(), mint.Bytes())
}
