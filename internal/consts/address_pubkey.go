package consts

import (
	"github.com/blocto/solana-go-sdk/common"
)

// 公钥形式的地址常量（common.PublicKey），用于指令组装、链上比对等场景。
var (
	SystemProgram          common.PublicKey
	TokenProgram2022       common.PublicKey
	AssociatedTokenProgram common.PublicKey
	ComputeBudgetProgram   common.PublicKey
	MemoProgram            common.PublicKey
	SysvarInstructions     common.PublicKey
)

// init 自动将 base58 字符串地址转换为 common.PublicKey
func init() {
	SystemProgram = common.PublicKeyFromString(SystemProgramStr)
	TokenProgram2022 = common.PublicKeyFromString(TokenProgram2022Str)
	AssociatedTokenProgram = common.PublicKeyFromString(AssociatedTokenProgramStr)
	ComputeBudgetProgram = common.PublicKeyFromString(ComputeBudgetProgramIdStr)
	MemoProgram = common.PublicKeyFromString(MemoProgramStr)
	SysvarInstructions = common.PublicKeyFromString(SysvarInstructionsStr)
}
