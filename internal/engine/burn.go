package engine

import (
	"context"
	"sort"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/derive"
	"memo-engine-sol/internal/memo"
	"memo-engine-sol/internal/parser"
	"memo-engine-sol/internal/rpc"
	"memo-engine-sol/internal/txbuild"
	"memo-engine-sol/pkg/logger"
)

const defaultTopBurnersLimit = 10

// BurnRecord 是用户燃烧历史里的一条记录。结构化附言给出
// Category/Operation，纯文本附言落在 Note 里。
type BurnRecord struct {
	Signature  string
	Slot       uint64
	BlockTime  *int64
	BurnAmount uint64
	Note       string
	Category   string
	Operation  string
}

// BuildBurnTransaction 组装纯燃烧交易，note 作为封包载荷原文上链
func (e *Engine) BuildBurnTransaction(ctx context.Context, user string, amount uint64, note string) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if err := checkBurnWindow(amount); err != nil {
		return nil, err
	}

	memoText, err := memo.EncodeRawBurnNote(amount, note)
	if err != nil {
		return nil, err
	}
	return e.burnMutation(ctx, userPk, amount, memoText, txbuild.BudgetBurn)
}

// BuildTokenBurnReceipt 组装代币转账回执燃烧：附言是挂着转账签名的
// JSON 明文，不走 borsh 封包，长度窗口收紧到 700。
func (e *Engine) BuildTokenBurnReceipt(ctx context.Context, user string, amount uint64, transferSignature, message string) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if err := checkBurnWindow(amount); err != nil {
		return nil, err
	}
	if transferSignature == "" {
		return nil, rpc.InvalidParamf("transfer signature cannot be empty")
	}

	memoText, err := memo.EncodeTokenNote(transferSignature, message)
	if err != nil {
		return nil, err
	}
	return e.burnMutation(ctx, userPk, amount, memoText, txbuild.BudgetToken)
}

func checkBurnWindow(amount uint64) error {
	if amount < consts.MinBurnAmount {
		return rpc.InvalidParamf("burn amount too small: %d (minimum: %d)", amount, consts.MinBurnAmount)
	}
	if amount > consts.MaxBurnAmount {
		return rpc.InvalidParamf("burn amount too large: %d (maximum: %d)", amount, uint64(consts.MaxBurnAmount))
	}
	return nil
}

func (e *Engine) burnMutation(ctx context.Context, userPk common.PublicKey, amount uint64, memoText string, profile txbuild.Profile) (*txbuild.Prepared, error) {
	uta, err := e.userTokenAccount(userPk)
	if err != nil {
		return nil, err
	}
	stats, err := derive.UserBurnStatsPDA(e.programs.Burn, userPk)
	if err != nil {
		return nil, err
	}

	ix := types.Instruction{
		ProgramID: e.programs.Burn,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(e.programs.TokenMint),
			asWritable(uta),
			asWritable(stats.Address),
			asReadonly(consts.TokenProgram2022),
			asReadonly(consts.SysvarInstructions),
		},
		Data: ixData(derive.IxProcessBurn, amount),
	}

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxProcessBurn,
		FeePayer:           userPk,
		MemoText:           memoText,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(profile),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// BuildInitializeBurnStatsTransaction 组装统计账户的初始化交易。
// 不带附言，但照常走模拟预算（账户创建的消耗不吃附言长度）。
func (e *Engine) BuildInitializeBurnStatsTransaction(ctx context.Context, user string) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	stats, err := derive.UserBurnStatsPDA(e.programs.Burn, userPk)
	if err != nil {
		return nil, err
	}

	ix := types.Instruction{
		ProgramID: e.programs.Burn,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(stats.Address),
			asReadonly(consts.SystemProgram),
		},
		Data: derive.InstructionDiscriminator(derive.IxInitBurnStats),
	}

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxInitBurnStats,
		FeePayer:           userPk,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetInitStats),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// GetBurnStats 读取某用户的全局燃烧统计
func (e *Engine) GetBurnStats(ctx context.Context, user string) (*parser.BurnStats, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	stats, err := derive.UserBurnStatsPDA(e.programs.Burn, userPk)
	if err != nil {
		return nil, err
	}
	info, err := e.client.GetAccountInfo(ctx, stats.Address.ToBase58())
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, notFound("burn stats", user)
	}
	return parser.ParseBurnStats(info.Data)
}

// BurnStatsExist 判断用户统计账户是否已初始化
func (e *Engine) BurnStatsExist(ctx context.Context, user string) (bool, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return false, err
	}
	stats, err := derive.UserBurnStatsPDA(e.programs.Burn, userPk)
	if err != nil {
		return false, err
	}
	info, err := e.client.GetAccountInfo(ctx, stats.Address.ToBase58())
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

// GetTopBurners 按累计燃烧量降序返回头部用户。
// 统计账户定长，直接按 dataSize 过滤整程序扫描。
func (e *Engine) GetTopBurners(ctx context.Context, limit int) ([]*parser.BurnStats, error) {
	if limit <= 0 {
		limit = defaultTopBurnersLimit
	}

	accounts, err := e.client.GetProgramAccounts(ctx, e.programs.Burn.ToBase58(), consts.UserGlobalBurnStatsSize)
	if err != nil {
		return nil, err
	}

	burners := make([]*parser.BurnStats, 0, len(accounts))
	for _, acc := range accounts {
		s, perr := parser.ParseBurnStats(acc.Account.Data)
		if perr != nil {
			logger.Warnf("[Engine] skip undecodable burn stats %s: %v", acc.Pubkey, perr)
			continue
		}
		burners = append(burners, s)
	}

	sort.SliceStable(burners, func(i, j int) bool {
		return burners[i].TotalBurned > burners[j].TotalBurned
	})
	if len(burners) > limit {
		burners = burners[:limit]
	}
	return burners, nil
}

// GetLatestBurns 读取燃烧程序地址上的签名历史并还原最近的燃烧记录。
// 附言直接取自签名列表（带 "[N] " 前缀），不用逐笔拉交易；
// 失败交易、无附言和非封包附言的条目跳过。
func (e *Engine) GetLatestBurns(ctx context.Context, limit int) ([]BurnRecord, error) {
	sigs, err := e.client.GetSignaturesForAddress(ctx, e.programs.Burn.ToBase58(), limit, "")
	if err != nil {
		return nil, err
	}

	records := make([]BurnRecord, 0, len(sigs))
	for _, sig := range sigs {
		if sig.Failed() || sig.Memo == nil {
			continue
		}
		text := memo.StripMemoPrefix(*sig.Memo)
		if _, derr := memo.DecodeEnvelope(text); derr != nil {
			continue
		}
		parsed := memo.ParseBurnMemo(text)
		rec := BurnRecord{
			Signature:  sig.Signature,
			Slot:       sig.Slot,
			BlockTime:  sig.BlockTime,
			BurnAmount: parsed.BurnAmount,
			Category:   parsed.Category,
			Operation:  parsed.Operation,
		}
		if parsed.Kind == memo.MemoKindText {
			rec.Note = parsed.Text
		}
		records = append(records, rec)
	}
	return records, nil
}
