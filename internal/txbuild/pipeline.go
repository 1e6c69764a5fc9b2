package txbuild

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"memo-engine-sol/internal/rpc"
	"memo-engine-sol/pkg/logger"
)

// Descriptor 描述一次上链操作的全部组装参数。
// 各业务域只负责填描述，组装、模拟、预算、编码走同一条流水线。
type Descriptor struct {
	Name               string
	FeePayer           common.PublicKey
	MemoText           string // 空串表示本交易不带附言指令
	Instructions       []types.Instruction
	Budget             Profile
	PriceMicroLamports uint64 // 0 表示不加价格指令
	RequireSimSuccess  bool   // 模拟报业务错误时中止，并附带链上日志细节
	SkipBudget         bool   // 极简路径：不加预算指令、不模拟
}

// Prepared 是流水线产物，交易尚未签名
type Prepared struct {
	Name            string
	Unsigned        *Unsigned
	RecentBlockhash string
	UnitLimit       uint32
	UnitsConsumed   uint64 // 模拟实际消耗，0 表示未拿到
	UsedFallback    bool
	MemoLength      int
}

type Pipeline struct {
	client *rpc.Client
}

func NewPipeline(client *rpc.Client) *Pipeline {
	return &Pipeline{client: client}
}

// Prepare 组装一笔未签名交易。
// 预算路径先以满额占位模拟，再按画像折算正式限额；模拟拿不到消耗量时
// 走回退表。除参数本身非法外，预算环节不会让流水线失败。
func (p *Pipeline) Prepare(ctx context.Context, d Descriptor) (*Prepared, error) {
	bh, err := p.client.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	out := &Prepared{
		Name:            d.Name,
		RecentBlockhash: bh.Blockhash,
		MemoLength:      len(d.MemoText),
	}

	if d.SkipBudget {
		ixs := Instructions(d.FeePayer, d.MemoText, d.Instructions, 0, 0)
		unsigned, err := BuildUnsigned(d.FeePayer, bh.Blockhash, ixs)
		if err != nil {
			return nil, err
		}
		out.Unsigned = unsigned
		return out, nil
	}

	simIxs := Instructions(d.FeePayer, d.MemoText, d.Instructions, SimulationUnitLimit, d.PriceMicroLamports)
	simUnsigned, err := BuildUnsigned(d.FeePayer, bh.Blockhash, simIxs)
	if err != nil {
		return nil, err
	}

	var consumed *uint64
	sim, err := p.client.SimulateTransaction(ctx, simUnsigned.Base64)
	switch {
	case err != nil:
		// 模拟接口不可用不阻塞组装，广播前还有节点 preflight 兜底
		logger.Warnf("[TxPipeline] %s: simulation unavailable: %v", d.Name, err)
	case sim.Failed():
		if d.RequireSimSuccess {
			perr := rpc.TransactionFailedf("%s simulation failed: %s", d.Name, string(sim.Err))
			perr.Detail = rpc.ExtractLogDetail(sim.Logs)
			return nil, perr
		}
		logger.Warnf("[TxPipeline] %s: simulation failed, using fallback units: %s", d.Name, string(sim.Err))
	default:
		consumed = sim.UnitsConsumed
		if consumed != nil {
			out.UnitsConsumed = *consumed
		}
	}

	unitLimit, usedFallback := d.Budget.Estimate(consumed, len(d.MemoText))
	out.UnitLimit = unitLimit
	out.UsedFallback = usedFallback

	finalIxs := Instructions(d.FeePayer, d.MemoText, d.Instructions, unitLimit, d.PriceMicroLamports)
	unsigned, err := BuildUnsigned(d.FeePayer, bh.Blockhash, finalIxs)
	if err != nil {
		return nil, err
	}
	out.Unsigned = unsigned

	logger.Infof("[TxPipeline] %s: unit limit %d (simulated %d, fallback=%v), memo %d chars",
		d.Name, unitLimit, out.UnitsConsumed, usedFallback, out.MemoLength)
	return out, nil
}
