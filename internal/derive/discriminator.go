package derive

import (
	"crypto/sha256"
)

// 各合约指令名。判别码在调用处按名推导，不维护硬编码字节表。
const (
	IxCreateProfile = "create_profile"
	IxUpdateProfile = "update_profile"
	IxDeleteProfile = "delete_profile"

	IxCreateBlog  = "create_blog"
	IxUpdateBlog  = "update_blog"
	IxBurnForBlog = "burn_for_blog"
	IxMintForBlog = "mint_for_blog"

	IxCreatePost  = "create_post"
	IxBurnForPost = "burn_for_post"
	IxMintForPost = "mint_for_post"

	IxCreateProject  = "create_project"
	IxUpdateProject  = "update_project"
	IxBurnForProject = "burn_for_project"

	IxProcessBurn   = "process_burn"
	IxProcessMint   = "process_mint"
	IxInitBurnStats = "initialize_user_global_burn_stats"

	IxSendMemoToGroup = "send_memo_to_group"
)

// InstructionDiscriminator 推导 anchor 全局指令判别码：
// sha256("global:" + 指令名) 的前 8 字节。
func InstructionDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("global:" + name))
	out := make([]byte, 8)
	copy(out, sum[:8])
	return out
}
