package engine

import (
	"context"

	"github.com/blocto/solana-go-sdk/types"

	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/derive"
	"memo-engine-sol/internal/memo"
	"memo-engine-sol/internal/parser"
	"memo-engine-sol/internal/rpc"
	"memo-engine-sol/internal/txbuild"
	"memo-engine-sol/pkg/logger"
)

// CreatePost 组装发帖交易。帖子 id 取自论坛全局计数器，
// 燃烧量必须是整数个代币。
func (e *Engine) CreatePost(ctx context.Context, user string, title, content, image string, burn uint64) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if burn < consts.MinPostBurnAmount {
		return nil, rpc.InvalidParamf("burn amount too small: %d (minimum: %d)", burn, consts.MinPostBurnAmount)
	}
	if burn%consts.TokenDecimalsFactor != 0 {
		return nil, rpc.InvalidParamf("burn amount must be a whole number of tokens: %d", burn)
	}

	counterPDA, err := derive.GlobalCounterPDA(e.programs.Forum)
	if err != nil {
		return nil, err
	}
	postID, err := e.counterValue(ctx, counterPDA.Address)
	if err != nil {
		return nil, err
	}

	memoText, err := memo.NewPostCreationData(user, postID, title, content, image).Encode(burn)
	if err != nil {
		return nil, err
	}

	postPDA, err := derive.PostPDA(e.programs.Forum, postID)
	if err != nil {
		return nil, err
	}
	uta, err := e.userTokenAccount(userPk)
	if err != nil {
		return nil, err
	}
	stats, err := derive.UserBurnStatsPDA(e.programs.Burn, userPk)
	if err != nil {
		return nil, err
	}

	ix := types.Instruction{
		ProgramID: e.programs.Forum,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(counterPDA.Address),
			asWritable(postPDA.Address),
			asWritable(e.programs.TokenMint),
			asWritable(uta),
			asWritable(stats.Address),
			asReadonly(consts.TokenProgram2022),
			asReadonly(e.programs.Burn),
			asReadonly(consts.SystemProgram),
			asReadonly(consts.SysvarInstructions),
		},
		Data: ixData(derive.IxCreatePost, postID, burn),
	}

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxCreatePost,
		FeePayer:           userPk,
		MemoText:           memoText,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetForum),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// BurnForPost 组装给帖子加热的燃烧交易
func (e *Engine) BurnForPost(ctx context.Context, user string, postID uint64, message string, burn uint64) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if burn < consts.MinPostBurnAmount {
		return nil, rpc.InvalidParamf("burn amount too small: %d (minimum: %d)", burn, consts.MinPostBurnAmount)
	}

	memoText, err := memo.NewPostBurnData(user, postID, message).Encode(burn)
	if err != nil {
		return nil, err
	}

	postPDA, err := derive.PostPDA(e.programs.Forum, postID)
	if err != nil {
		return nil, err
	}
	uta, err := e.userTokenAccount(userPk)
	if err != nil {
		return nil, err
	}
	stats, err := derive.UserBurnStatsPDA(e.programs.Burn, userPk)
	if err != nil {
		return nil, err
	}

	ix := types.Instruction{
		ProgramID: e.programs.Forum,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(postPDA.Address),
			asWritable(e.programs.TokenMint),
			asWritable(uta),
			asWritable(stats.Address),
			asReadonly(consts.TokenProgram2022),
			asReadonly(e.programs.Burn),
			asReadonly(consts.SysvarInstructions),
		},
		Data: ixData(derive.IxBurnForPost, postID, burn),
	}

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxBurnForPost,
		FeePayer:           userPk,
		MemoText:           memoText,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetForum),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// MintForPost 组装帖子下的铸币留言交易，不涉及燃烧
func (e *Engine) MintForPost(ctx context.Context, user string, postID uint64, message string) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}

	memoText, err := memo.NewPostMintData(user, postID, message).Encode(0)
	if err != nil {
		return nil, err
	}

	postPDA, err := derive.PostPDA(e.programs.Forum, postID)
	if err != nil {
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

	ix := types.Instruction{
		ProgramID: e.programs.Forum,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(postPDA.Address),
			asWritable(e.programs.TokenMint),
			asReadonly(mintAuth.Address),
			asWritable(uta),
			asReadonly(consts.TokenProgram2022),
			asReadonly(e.programs.Mint),
			asReadonly(consts.SysvarInstructions),
		},
		Data: ixData(derive.IxMintForPost, postID),
	}

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxMintForPost,
		FeePayer:           userPk,
		MemoText:           memoText,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetForum),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// GetPost 读取单个帖子
func (e *Engine) GetPost(ctx context.Context, postID uint64) (*parser.Post, error) {
	postPDA, err := derive.PostPDA(e.programs.Forum, postID)
	if err != nil {
		return nil, err
	}
	info, err := e.client.GetAccountInfo(ctx, postPDA.Address.ToBase58())
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, notFound("post", postID)
	}
	return parser.ParsePost(info.Data)
}

// GetTotalPosts 返回全网帖子总数
func (e *Engine) GetTotalPosts(ctx context.Context) (uint64, error) {
	counterPDA, err := derive.GlobalCounterPDA(e.programs.Forum)
	if err != nil {
		return 0, err
	}
	return e.counterValue(ctx, counterPDA.Address)
}

// GetLatestPosts 按 id 倒序返回最新帖子，坏账户跳过
func (e *Engine) GetLatestPosts(ctx context.Context, limit int) ([]*parser.Post, error) {
	total, err := e.GetTotalPosts(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	if uint64(limit) > total {
		limit = int(total)
	}
	if limit > maxAccountsPerFetch {
		limit = maxAccountsPerFetch
	}

	start := total - uint64(limit)
	infos, err := e.fetchByID(ctx, start, total, func(id uint64) (derive.PDA, error) {
		return derive.PostPDA(e.programs.Forum, id)
	})
	if err != nil {
		return nil, err
	}

	posts := make([]*parser.Post, 0, limit)
	for i := len(infos) - 1; i >= 0; i-- {
		if infos[i] == nil {
			continue
		}
		p, perr := parser.ParsePost(infos[i].Data)
		if perr != nil {
			logger.Warnf("[Engine] skip undecodable post %d: %v", start+uint64(i), perr)
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// PostExists 判断某 id 的帖子是否在链上
func (e *Engine) PostExists(ctx context.Context, postID uint64) (bool, error) {
	postPDA, err := derive.PostPDA(e.programs.Forum, postID)
	if err != nil {
		return false, err
	}
	info, err := e.client.GetAccountInfo(ctx, postPDA.Address.ToBase58())
	if err != nil {
		return false, err
	}
	return info != nil, nil
}
