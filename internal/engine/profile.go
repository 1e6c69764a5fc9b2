package engine

import (
	"context"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"

	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/derive"
	"memo-engine-sol/internal/memo"
	"memo-engine-sol/internal/parser"
	"memo-engine-sol/internal/rpc"
	"memo-engine-sol/internal/txbuild"
	"memo-engine-sol/pkg/logger"
)

// CreateProfile 组装建档交易：附言走燃烧封包，燃烧腿挂在 memo-burn 程序上。
// aboutMe 为 nil 表示不填简介。
func (e *Engine) CreateProfile(ctx context.Context, user string, burn uint64, username, image string, aboutMe *string) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if burn < consts.MinProfileBurnAmount {
		return nil, rpc.InvalidParamf("burn amount too small: %d (minimum: %d)", burn, consts.MinProfileBurnAmount)
	}

	memoText, err := memo.NewProfileCreationData(user, username, image, aboutMe).Encode(burn)
	if err != nil {
		return nil, err
	}

	profilePDA, err := derive.ProfilePDA(e.programs.Profile, userPk)
	if err != nil {
		return nil, err
	}
	uta, err := e.userTokenAccount(userPk)
	if err != nil {
		return nil, err
	}

	ix := types.Instruction{
		ProgramID: e.programs.Profile,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(profilePDA.Address),
			asWritable(e.programs.TokenMint),
			asWritable(uta),
			asReadonly(consts.TokenProgram2022),
			asReadonly(e.programs.Burn),
			asReadonly(consts.SystemProgram),
			asReadonly(consts.SysvarInstructions),
		},
		Data: ixData(derive.IxCreateProfile, burn),
	}

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxCreateProfile,
		FeePayer:           userPk,
		MemoText:           memoText,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetUserProfile),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// UpdateProfile 组装改档交易。可选参数的三态语义：
// 外层 nil 不改，aboutMe 的内层 nil 表示清空简介。
// 可选参数同时进附言封包与指令数据（合约两边都校验）。
func (e *Engine) UpdateProfile(ctx context.Context, user string, burn uint64, username, image *string, aboutMe **string) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if burn < consts.MinProfileBurnAmount {
		return nil, rpc.InvalidParamf("burn amount too small: %d (minimum: %d)", burn, consts.MinProfileBurnAmount)
	}

	memoText, err := memo.NewProfileUpdateData(user, username, image, aboutMe).Encode(burn)
	if err != nil {
		return nil, err
	}

	profilePDA, err := derive.ProfilePDA(e.programs.Profile, userPk)
	if err != nil {
		return nil, err
	}
	uta, err := e.userTokenAccount(userPk)
	if err != nil {
		return nil, err
	}

	data := ixData(derive.IxUpdateProfile, burn)
	for _, arg := range []any{username, image, aboutMe} {
		raw, serr := borsh.Serialize(arg)
		if serr != nil {
			return nil, rpc.Otherf("serialize optional update arg: %v", serr)
		}
		data = append(data, raw...)
	}

	ix := types.Instruction{
		ProgramID: e.programs.Profile,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(e.programs.TokenMint),
			asWritable(uta),
			asWritable(profilePDA.Address),
			asReadonly(consts.TokenProgram2022),
			asReadonly(consts.SysvarInstructions),
			asReadonly(e.programs.Burn),
		},
		Data: data,
	}

	prepared, err := e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxUpdateProfile,
		FeePayer:           userPk,
		MemoText:           memoText,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetUserProfile),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
	if err != nil {
		return nil, err
	}
	if e.profiles != nil {
		e.profiles.Invalidate(ctx, user)
	}
	return prepared, nil
}

// DeleteProfile 组装销档交易：无附言、无燃烧腿、无预算指令的极简路径
func (e *Engine) DeleteProfile(ctx context.Context, user string) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	profilePDA, err := derive.ProfilePDA(e.programs.Profile, userPk)
	if err != nil {
		return nil, err
	}

	ix := types.Instruction{
		ProgramID: e.programs.Profile,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(profilePDA.Address),
		},
		Data: ixData(derive.IxDeleteProfile),
	}

	prepared, err := e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:         derive.IxDeleteProfile,
		FeePayer:     userPk,
		Instructions: []types.Instruction{ix},
		SkipBudget:   true,
	})
	if err != nil {
		return nil, err
	}
	if e.profiles != nil {
		e.profiles.Invalidate(ctx, user)
	}
	return prepared, nil
}

// GetProfile 读取用户档案，缓存命中时不触网
func (e *Engine) GetProfile(ctx context.Context, user string) (*parser.Profile, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if e.profiles != nil {
		if p, ok := e.profiles.Get(ctx, user); ok {
			return p, nil
		}
	}

	profilePDA, err := derive.ProfilePDA(e.programs.Profile, userPk)
	if err != nil {
		return nil, err
	}
	info, err := e.client.GetAccountInfo(ctx, profilePDA.Address.ToBase58())
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, notFound("profile", user)
	}

	p, err := parser.ParseProfile(info.Data)
	if err != nil {
		return nil, err
	}
	if e.profiles != nil {
		e.profiles.Set(ctx, user, p)
	}
	return p, nil
}

// GetProfilesBatch 批量读档。结果与输入同序，链上没有档案或数据解不开的
// 位置为 nil，不让个别坏项拖垮整批。
func (e *Engine) GetProfilesBatch(ctx context.Context, users []string) ([]*parser.Profile, error) {
	if len(users) == 0 {
		return nil, nil
	}
	out := make([]*parser.Profile, len(users))

	missIdx := make([]int, 0, len(users))
	if e.profiles != nil {
		hits := e.profiles.GetBatch(ctx, users)
		for i, user := range users {
			if p, ok := hits[user]; ok {
				out[i] = p
			} else {
				missIdx = append(missIdx, i)
			}
		}
	} else {
		for i := range users {
			missIdx = append(missIdx, i)
		}
	}
	if len(missIdx) == 0 {
		return out, nil
	}

	addrs := make([]string, len(missIdx))
	for j, i := range missIdx {
		userPk, err := derive.ParseAddress(users[i])
		if err != nil {
			return nil, err
		}
		pda, err := derive.ProfilePDA(e.programs.Profile, userPk)
		if err != nil {
			return nil, err
		}
		addrs[j] = pda.Address.ToBase58()
	}

	infos, err := e.fetchAccounts(ctx, addrs)
	if err != nil {
		return nil, err
	}
	for j, info := range infos {
		i := missIdx[j]
		if info == nil {
			continue
		}
		p, perr := parser.ParseProfile(info.Data)
		if perr != nil {
			logger.Warnf("[Engine] skip undecodable profile %s: %v", users[i], perr)
			continue
		}
		out[i] = p
		if e.profiles != nil {
			e.profiles.Set(ctx, users[i], p)
		}
	}
	return out, nil
}

// ProfileExists 判断用户是否建过档
func (e *Engine) ProfileExists(ctx context.Context, user string) (bool, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return false, err
	}
	profilePDA, err := derive.ProfilePDA(e.programs.Profile, userPk)
	if err != nil {
		return false, err
	}
	info, err := e.client.GetAccountInfo(ctx, profilePDA.Address.ToBase58())
	if err != nil {
		return false, err
	}
	return info != nil, nil
}
