package engine

import (
	"context"

	"github.com/blocto/solana-go-sdk/types"

	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/derive"
	"memo-engine-sol/internal/memo"
	"memo-engine-sol/internal/txbuild"
	"memo-engine-sol/pkg/logger"
)

// MintWithMemo 组装挂留言的铸币交易。铸币域的附言是明文，
// 不走封包，长度窗口仍是 [69, 800]。
func (e *Engine) MintWithMemo(ctx context.Context, user string, note string) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if err := memo.ValidateMemoLength(note, consts.MaxMemoLengthMint); err != nil {
		return nil, err
	}

	mintAuth, err := derive.MintAuthorityPDA(e.programs.Mint)
	if err != nil {
		return nil, err
	}
	uta, err := e.userTokenAccount(userPk)
	if err != nil {
		return nil, err
	}

	var ixs []types.Instruction
	info, err := e.client.GetAccountInfo(ctx, uta.ToBase58())
	if err != nil {
		return nil, err
	}
	if info == nil {
		logger.Infof("[Engine] token account %s missing, prepending create", uta.ToBase58())
		ixs = append(ixs, createTokenAccountIx(userPk, userPk, uta, e.programs.TokenMint, true))
	}

	ixs = append(ixs, types.Instruction{
		ProgramID: e.programs.Mint,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(e.programs.TokenMint),
			asReadonly(mintAuth.Address),
			asWritable(uta),
			asReadonly(consts.TokenProgram2022),
			asReadonly(consts.SysvarInstructions),
		},
		Data: derive.InstructionDiscriminator(derive.IxProcessMint),
	})

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxProcessMint,
		FeePayer:           userPk,
		MemoText:           note,
		Instructions:       ixs,
		Budget:             e.budget(txbuild.BudgetMint),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}
