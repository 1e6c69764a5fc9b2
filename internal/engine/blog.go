package engine

import (
	"context"

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

// blogBurnLeg 是博客域燃烧类指令共用的账户尾段（mint 起）
func (e *Engine) blogBurnLeg(uta, burnStats types.AccountMeta) []types.AccountMeta {
	return []types.AccountMeta{
		asWritable(e.programs.TokenMint),
		uta,
		burnStats,
		asReadonly(consts.TokenProgram2022),
		asReadonly(e.programs.Burn),
	}
}

// CreateBlog 组装开博交易。博客 id 取自全局计数器的当前总数，
// 燃烧量必须是整数个代币。
func (e *Engine) CreateBlog(ctx context.Context, user string, name, description, image string, burn uint64) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if burn < consts.MinBlogBurnAmount {
		return nil, rpc.InvalidParamf("burn amount too small: %d (minimum: %d)", burn, consts.MinBlogBurnAmount)
	}
	if burn%consts.TokenDecimalsFactor != 0 {
		return nil, rpc.InvalidParamf("burn amount must be a whole number of tokens: %d", burn)
	}

	counterPDA, err := derive.BlogCounterPDA(e.programs.Blog)
	if err != nil {
		return nil, err
	}
	blogID, err := e.counterValue(ctx, counterPDA.Address)
	if err != nil {
		return nil, err
	}

	memoText, err := memo.NewBlogCreationData(blogID, name, description, image).Encode(burn)
	if err != nil {
		return nil, err
	}

	blogPDA, err := derive.BlogPDA(e.programs.Blog, blogID)
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

	accounts := []types.AccountMeta{
		asSigner(userPk),
		asWritable(counterPDA.Address),
		asWritable(blogPDA.Address),
	}
	accounts = append(accounts, e.blogBurnLeg(asWritable(uta), asWritable(stats.Address))...)
	accounts = append(accounts, asReadonly(consts.SystemProgram), asReadonly(consts.SysvarInstructions))

	ix := types.Instruction{
		ProgramID: e.programs.Blog,
		Accounts:  accounts,
		Data:      ixData(derive.IxCreateBlog, blogID, burn),
	}

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxCreateBlog,
		FeePayer:           userPk,
		MemoText:           memoText,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetBlog),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// UpdateBlog 组装改博交易，可选字段外层 nil 表示不改
func (e *Engine) UpdateBlog(ctx context.Context, user string, blogID uint64, name, description, image *string, burn uint64) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if burn < consts.MinBlogBurnAmount {
		return nil, rpc.InvalidParamf("burn amount too small: %d (minimum: %d)", burn, consts.MinBlogBurnAmount)
	}

	memoText, err := memo.NewBlogUpdateData(blogID, name, description, image).Encode(burn)
	if err != nil {
		return nil, err
	}
	return e.blogMutation(ctx, userPk, blogID, derive.IxUpdateBlog, memoText, burn)
}

// BurnForBlog 组装向博客燃烧的交易，message 随附言封包上链
func (e *Engine) BurnForBlog(ctx context.Context, user string, blogID uint64, message string, burn uint64) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if burn < consts.MinBlogBurnAmount {
		return nil, rpc.InvalidParamf("burn amount too small: %d (minimum: %d)", burn, consts.MinBlogBurnAmount)
	}

	memoText, err := memo.NewBlogBurnData(blogID, user, message).Encode(burn)
	if err != nil {
		return nil, err
	}
	return e.blogMutation(ctx, userPk, blogID, derive.IxBurnForBlog, memoText, burn)
}

// blogMutation 是 update/burn 共用的组装尾段，两者账户布局一致
func (e *Engine) blogMutation(ctx context.Context, userPk common.PublicKey, blogID uint64, ixName, memoText string, burn uint64) (*txbuild.Prepared, error) {
	blogPDA, err := derive.BlogPDA(e.programs.Blog, blogID)
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

	accounts := []types.AccountMeta{
		asSigner(userPk),
		asWritable(blogPDA.Address),
	}
	accounts = append(accounts, e.blogBurnLeg(asWritable(uta), asWritable(stats.Address))...)
	accounts = append(accounts, asReadonly(consts.SysvarInstructions))

	ix := types.Instruction{
		ProgramID: e.programs.Blog,
		Accounts:  accounts,
		Data:      ixData(ixName, blogID, burn),
	}

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               ixName,
		FeePayer:           userPk,
		MemoText:           memoText,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetBlog),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// MintForBlog 组装博客下的铸币留言交易：不带燃烧腿，铸币权限挂在 memo-mint 程序上
func (e *Engine) MintForBlog(ctx context.Context, user string, blogID uint64, message string) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}

	memoText, err := memo.NewBlogMintData(blogID, user, message).Encode(0)
	if err != nil {
		return nil, err
	}

	blogPDA, err := derive.BlogPDA(e.programs.Blog, blogID)
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
		ProgramID: e.programs.Blog,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(blogPDA.Address),
			asWritable(e.programs.TokenMint),
			asReadonly(mintAuth.Address),
			asWritable(uta),
			asReadonly(consts.TokenProgram2022),
			asReadonly(e.programs.Mint),
			asReadonly(consts.SysvarInstructions),
		},
		Data: ixData(derive.IxMintForBlog, blogID),
	}

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxMintForBlog,
		FeePayer:           userPk,
		MemoText:           memoText,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetBlog),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// GetBlog 读取单个博客
func (e *Engine) GetBlog(ctx context.Context, blogID uint64) (*parser.Blog, error) {
	blogPDA, err := derive.BlogPDA(e.programs.Blog, blogID)
	if err != nil {
		return nil, err
	}
	info, err := e.client.GetAccountInfo(ctx, blogPDA.Address.ToBase58())
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, notFound("blog", blogID)
	}
	return parser.ParseBlog(info.Data)
}

// GetTotalBlogs 返回全网博客总数
func (e *Engine) GetTotalBlogs(ctx context.Context) (uint64, error) {
	counterPDA, err := derive.BlogCounterPDA(e.programs.Blog)
	if err != nil {
		return 0, err
	}
	return e.counterValue(ctx, counterPDA.Address)
}

// GetLatestBlogs 按 id 倒序返回最新的若干博客，坏账户跳过
func (e *Engine) GetLatestBlogs(ctx context.Context, limit int) ([]*parser.Blog, error) {
	total, err := e.GetTotalBlogs(ctx)
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
		return derive.BlogPDA(e.programs.Blog, id)
	})
	if err != nil {
		return nil, err
	}

	blogs := make([]*parser.Blog, 0, limit)
	for i := len(infos) - 1; i >= 0; i-- {
		if infos[i] == nil {
			continue
		}
		b, perr := parser.ParseBlog(infos[i].Data)
		if perr != nil {
			logger.Warnf("[Engine] skip undecodable blog %d: %v", start+uint64(i), perr)
			continue
		}
		blogs = append(blogs, b)
	}
	return blogs, nil
}

// BlogExists 判断某 id 的博客是否在链上
func (e *Engine) BlogExists(ctx context.Context, blogID uint64) (bool, error) {
	blogPDA, err := derive.BlogPDA(e.programs.Blog, blogID)
	if err != nil {
		return false, err
	}
	info, err := e.client.GetAccountInfo(ctx, blogPDA.Address.ToBase58())
	if err != nil {
		return false, err
	}
	return info != nil, nil
}
