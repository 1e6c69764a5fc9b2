package consts

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	// Programs
	SystemProgramStr          = "11111111111111111111111111111111"
	TokenProgram2022Str       = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AssociatedTokenProgramStr = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	ComputeBudgetProgramIdStr = "ComputeBudget111111111111111111111111111111"
	MemoProgramStr            = "MemoSq4gqABAXKb96qnH8TysNcWxMyWxNVimRaJNdXuY"
	SysvarInstructionsStr     = "Sysvar1nstructions1111111111111111111111111"
)

// PDA 种子（与各合约声明一致）。
// forum、project、chat 合约各自的全局计数器同名，但挂在不同 program 下。
var (
	SeedUserProfile         = []byte("profile")
	SeedMintAuthority       = []byte("mint_authority")
	SeedBlog                = []byte("blog")
	SeedGlobalBlogCounter   = []byte("global_blog_counter")
	SeedPost                = []byte("post")
	SeedGlobalCounter       = []byte("global_counter")
	SeedProject             = []byte("project")
	SeedBurnLeaderboard     = []byte("burn_leaderboard")
	SeedUserGlobalBurnStats = []byte("user_global_burn_stats")
	SeedChatGroup           = []byte("chat_group")
)
