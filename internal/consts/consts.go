package consts

import "runtime"

// 链上 memo 封包的协议级常量。所有长度均以 borsh 序列化后的字节数计。
const (
	// BurnMemoVersion 当前封包版本号
	BurnMemoVersion uint8 = 1

	// BorshFixedOverhead = version(1) + burn_amount(8) + payload 长度前缀(4)
	BorshFixedOverhead = 13

	// MinMemoLength 所有业务域共享的最小封包长度
	MinMemoLength = 69

	// MaxMemoLengthMint mint/profile/blog/forum/project 域的最大封包长度
	MaxMemoLengthMint = 800

	// MaxMemoLengthToken token 域的最大封包长度
	MaxMemoLengthToken = 700

	// MaxPayloadLength = MaxMemoLengthMint - BorshFixedOverhead
	MaxPayloadLength = MaxMemoLengthMint - BorshFixedOverhead
)

// 各业务域的最小燃烧量（token 最小单位，1 token = 1_000_000）
const (
	MinProfileBurnAmount = 420_000_000        // 420 tokens
	MinBlogBurnAmount    = 1_000_000          // 1 token，且必须为整数个 token
	MinPostBurnAmount    = 1_000_000          // 1 token
	MinProjectBurnAmount = 42_069_000_000     // create/update project
	MinProjectBurnForProjectAmount = 420_000_000 // burn_for_project
	MinBurnAmount        = 1_000_000          // memo-burn 程序下限
	MaxBurnAmount        = 1_000_000_000_000 * 1_000_000
	TokenDecimalsFactor  = 1_000_000
)

// 账户尺寸
const (
	// UserGlobalBurnStatsSize = disc(8) + owner(32) + total_burned(8) + burn_count(8) + last_burn_ts(8) + bump(1)
	UserGlobalBurnStatsSize = 65
)

// CpuCount 表示逻辑 CPU 核心数，用于控制并发任务调度上限
var CpuCount = runtime.NumCPU()
