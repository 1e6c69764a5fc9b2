package engine

import (
	"encoding/binary"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"memo-engine-sol/internal/consts"
)

// sdk 的 associated-token / token 指令构造器写死了经典 token program，
// 本项目资产在 token-2022 下，这两条指令自己拼（同 derive.AssociatedTokenAddress）。

// spl associated-token-account 程序的指令判别字节
const (
	ataIxCreate           = 0
	ataIxCreateIdempotent = 1
)

// token-2022 TransferChecked 的指令判别字节
const tokenIxTransferChecked = 12

// createTokenAccountIx 构造关联代币账户的创建指令。
// idempotent 为 true 时账户已存在不报错，适合"顺手补建"的场景。
func createTokenAccountIx(funder, owner, tokenAccount, mint common.PublicKey, idempotent bool) types.Instruction {
	tag := byte(ataIxCreate)
	if idempotent {
		tag = ataIxCreateIdempotent
	}
	return types.Instruction{
		ProgramID: consts.AssociatedTokenProgram,
		Accounts: []types.AccountMeta{
			asSigner(funder),
			asWritable(tokenAccount),
			asReadonly(owner),
			asReadonly(mint),
			asReadonly(consts.SystemProgram),
			asReadonly(consts.TokenProgram2022),
		},
		Data: []byte{tag},
	}
}

// transferCheckedIx 构造 token-2022 的 TransferChecked 指令。
// decimals 随指令上链，与 mint 实际精度不符时合约直接拒绝。
func transferCheckedIx(source, mint, dest, owner common.PublicKey, amount uint64, decimals uint8) types.Instruction {
	data := make([]byte, 10)
	data[0] = tokenIxTransferChecked
	binary.LittleEndian.PutUint64(data[1:9], amount)
	data[9] = decimals
	return types.Instruction{
		ProgramID: consts.TokenProgram2022,
		Accounts: []types.AccountMeta{
			asWritable(source),
			asReadonly(mint),
			asWritable(dest),
			{PubKey: owner, IsSigner: true},
		},
		Data: data,
	}
}
