package engine

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	sysprog "github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"

	"memo-engine-sol/internal/derive"
	"memo-engine-sol/internal/rpc"
	"memo-engine-sol/internal/txbuild"
	"memo-engine-sol/pkg/logger"
)

// 平台代币固定 6 位小数，transfer_checked 要求显式传入
const tokenDecimals = 6

// TransferNative 组装一笔 SOL 转账。转账不带附言也不强制模拟成功：
// 模拟挂掉时按画像默认额度继续，让节点 preflight 做最终裁决。
func (e *Engine) TransferNative(ctx context.Context, from, to string, lamports uint64) (*txbuild.Prepared, error) {
	fromPk, toPk, err := parseTransferPair(from, to)
	if err != nil {
		return nil, err
	}
	if lamports == 0 {
		return nil, rpc.InvalidParamf("transfer amount must be positive")
	}

	ix := sysprog.Transfer(sysprog.TransferParam{
		From:   fromPk,
		To:     toPk,
		Amount: lamports,
	})

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               "transfer_native",
		FeePayer:           fromPk,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetTransfer),
		PriceMicroLamports: e.price(),
	})
}

// TransferToken 组装一笔平台代币转账（transfer_checked）。
// 收款方代币账户不存在时先插一条创建指令，租金由付款方出。
func (e *Engine) TransferToken(ctx context.Context, from, to string, amount uint64) (*txbuild.Prepared, error) {
	fromPk, toPk, err := parseTransferPair(from, to)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, rpc.InvalidParamf("transfer amount must be positive")
	}

	fromATA, err := e.userTokenAccount(fromPk)
	if err != nil {
		return nil, err
	}
	toATA, err := e.userTokenAccount(toPk)
	if err != nil {
		return nil, err
	}

	var ixs []types.Instruction
	info, err := e.client.GetAccountInfo(ctx, toATA.ToBase58())
	if err != nil {
		return nil, err
	}
	if info == nil {
		logger.Infof("[Engine] recipient token account %s missing, prepending create", toATA.ToBase58())
		ixs = append(ixs, createTokenAccountIx(fromPk, toPk, toATA, e.programs.TokenMint, false))
	}
	ixs = append(ixs, transferCheckedIx(fromATA, e.programs.TokenMint, toATA, fromPk, amount, tokenDecimals))

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               "transfer_token",
		FeePayer:           fromPk,
		Instructions:       ixs,
		Budget:             e.budget(txbuild.BudgetTransfer),
		PriceMicroLamports: e.price(),
	})
}

func parseTransferPair(from, to string) (fromPk, toPk common.PublicKey, err error) {
	fromPk, err = derive.ParseAddress(from)
	if err != nil {
		return fromPk, toPk, err
	}
	toPk, err = derive.ParseAddress(to)
	if err != nil {
		return fromPk, toPk, err
	}
	if fromPk == toPk {
		return fromPk, toPk, rpc.InvalidParamf("cannot transfer to self: %s", from)
	}
	return fromPk, toPk, nil
}
