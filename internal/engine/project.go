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

// ProjectStatistics 是一次全量项目扫描的汇总结果
type ProjectStatistics struct {
	TotalProjects     uint64
	ValidProjects     uint64
	TotalMemos        uint64
	TotalBurnedTokens uint64
	Projects          []*parser.Project
}

// LeaderboardRow 是排行榜席位，附带从项目账户补齐的展示字段
type LeaderboardRow struct {
	Rank         int
	ProjectID    uint64
	BurnedAmount uint64
	Name         string
	Creator      string
}

// Leaderboard 是排行榜账户的解析视图
type Leaderboard struct {
	Entries           []LeaderboardRow
	TotalBurnedTokens uint64
}

// CreateProject 组装立项交易。项目 id 取自项目程序的全局计数器。
func (e *Engine) CreateProject(ctx context.Context, user string, name, description, image, website string, tags []string, burn uint64) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if burn < consts.MinProjectBurnAmount {
		return nil, rpc.InvalidParamf("burn amount too small: %d (minimum: %d)", burn, consts.MinProjectBurnAmount)
	}

	counterPDA, err := derive.GlobalCounterPDA(e.programs.Project)
	if err != nil {
		return nil, err
	}
	projectID, err := e.counterValue(ctx, counterPDA.Address)
	if err != nil {
		return nil, err
	}

	memoText, err := memo.NewProjectCreationData(projectID, name, description, image, website, tags).Encode(burn)
	if err != nil {
		return nil, err
	}

	projectPDA, err := derive.ProjectPDA(e.programs.Project, projectID)
	if err != nil {
		return nil, err
	}
	leaderboardPDA, err := derive.BurnLeaderboardPDA(e.programs.Project)
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
		ProgramID: e.programs.Project,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(counterPDA.Address),
			asWritable(projectPDA.Address),
			asWritable(leaderboardPDA.Address),
			asWritable(e.programs.TokenMint),
			asWritable(uta),
			asWritable(stats.Address),
			asReadonly(consts.TokenProgram2022),
			asReadonly(e.programs.Burn),
			asReadonly(consts.SystemProgram),
			asReadonly(consts.SysvarInstructions),
		},
		Data: ixData(derive.IxCreateProject, projectID, burn),
	}

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxCreateProject,
		FeePayer:           userPk,
		MemoText:           memoText,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetProject),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// UpdateProject 组装项目更新交易。待改字段只进附言，
// 指令数据与其他项目变更保持同构。
func (e *Engine) UpdateProject(ctx context.Context, user string, projectID uint64, name, description, image, website *string, tags *[]string, burn uint64) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if burn < consts.MinProjectBurnAmount {
		return nil, rpc.InvalidParamf("burn amount too small: %d (minimum: %d)", burn, consts.MinProjectBurnAmount)
	}

	memoText, err := memo.NewProjectUpdateData(projectID, name, description, image, website, tags).Encode(burn)
	if err != nil {
		return nil, err
	}
	return e.projectMutation(ctx, userPk, projectID, derive.IxUpdateProject, memoText, burn)
}

// BurnForProject 组装向项目燃烧的交易，门槛低于 create/update
func (e *Engine) BurnForProject(ctx context.Context, user string, projectID uint64, message string, burn uint64) (*txbuild.Prepared, error) {
	userPk, err := derive.ParseAddress(user)
	if err != nil {
		return nil, err
	}
	if burn < consts.MinProjectBurnForProjectAmount {
		return nil, rpc.InvalidParamf("burn amount too small: %d (minimum: %d)", burn, consts.MinProjectBurnForProjectAmount)
	}

	memoText, err := memo.NewProjectBurnData(projectID, user, message).Encode(burn)
	if err != nil {
		return nil, err
	}
	return e.projectMutation(ctx, userPk, projectID, derive.IxBurnForProject, memoText, burn)
}

func (e *Engine) projectMutation(ctx context.Context, userPk common.PublicKey, projectID uint64, ixName, memoText string, burn uint64) (*txbuild.Prepared, error) {
	projectPDA, err := derive.ProjectPDA(e.programs.Project, projectID)
	if err != nil {
		return nil, err
	}
	leaderboardPDA, err := derive.BurnLeaderboardPDA(e.programs.Project)
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
		ProgramID: e.programs.Project,
		Accounts: []types.AccountMeta{
			asSigner(userPk),
			asWritable(projectPDA.Address),
			asWritable(leaderboardPDA.Address),
			asWritable(e.programs.TokenMint),
			asWritable(uta),
			asWritable(stats.Address),
			asReadonly(consts.TokenProgram2022),
			asReadonly(e.programs.Burn),
			asReadonly(consts.SysvarInstructions),
		},
		Data: ixData(ixName, projectID, burn),
	}

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               ixName,
		FeePayer:           userPk,
		MemoText:           memoText,
		Instructions:       []types.Instruction{ix},
		Budget:             e.budget(txbuild.BudgetProject),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// GetProject 读取单个项目
func (e *Engine) GetProject(ctx context.Context, projectID uint64) (*parser.Project, error) {
	projectPDA, err := derive.ProjectPDA(e.programs.Project, projectID)
	if err != nil {
		return nil, err
	}
	info, err := e.client.GetAccountInfo(ctx, projectPDA.Address.ToBase58())
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, notFound("project", projectID)
	}
	return parser.ParseProject(info.Data)
}

// ProjectExists 判断某 id 的项目是否在链上
func (e *Engine) ProjectExists(ctx context.Context, projectID uint64) (bool, error) {
	projectPDA, err := derive.ProjectPDA(e.programs.Project, projectID)
	if err != nil {
		return false, err
	}
	info, err := e.client.GetAccountInfo(ctx, projectPDA.Address.ToBase58())
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

// GetTotalProjects 返回全网项目总数
func (e *Engine) GetTotalProjects(ctx context.Context) (uint64, error) {
	counterPDA, err := derive.GlobalCounterPDA(e.programs.Project)
	if err != nil {
		return 0, err
	}
	return e.counterValue(ctx, counterPDA.Address)
}

// GetProjectsRange 按 [start, end) 拉取一段项目，缺失与坏账户跳过
func (e *Engine) GetProjectsRange(ctx context.Context, start, end uint64) ([]*parser.Project, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	infos, err := e.fetchByID(ctx, start, end, func(id uint64) (derive.PDA, error) {
		return derive.ProjectPDA(e.programs.Project, id)
	})
	if err != nil {
		return nil, err
	}

	projects := make([]*parser.Project, 0, len(infos))
	for i, info := range infos {
		if info == nil {
			continue
		}
		p, perr := parser.ParseProject(info.Data)
		if perr != nil {
			logger.Warnf("[Engine] skip undecodable project %d: %v", start+uint64(i), perr)
			continue
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// GetAllProjectStatistics 全量扫描项目账户并汇总。
// id 从 0 连续走到计数器总数，期间坏账户只影响 valid 口径。
func (e *Engine) GetAllProjectStatistics(ctx context.Context) (*ProjectStatistics, error) {
	total, err := e.GetTotalProjects(ctx)
	if err != nil {
		return nil, err
	}
	stats := &ProjectStatistics{TotalProjects: total}
	if total == 0 {
		return stats, nil
	}

	infos, err := e.fetchByID(ctx, 0, total, func(id uint64) (derive.PDA, error) {
		return derive.ProjectPDA(e.programs.Project, id)
	})
	if err != nil {
		return nil, err
	}

	stats.Projects = make([]*parser.Project, 0, total)
	for i, info := range infos {
		if info == nil {
			continue
		}
		p, perr := parser.ParseProject(info.Data)
		if perr != nil {
			logger.Warnf("[Engine] skip undecodable project %d: %v", i, perr)
			continue
		}
		stats.ValidProjects++
		stats.TotalMemos += p.MemoCount
		stats.TotalBurnedTokens += p.BurnedAmount
		stats.Projects = append(stats.Projects, p)
	}
	return stats, nil
}

// GetLeaderboard 读取燃烧排行榜并用项目账户补齐名称与创建者。
// 榜上项目拉不到时对应席位留空展示字段，不整单失败。
func (e *Engine) GetLeaderboard(ctx context.Context) (*Leaderboard, error) {
	leaderboardPDA, err := derive.BurnLeaderboardPDA(e.programs.Project)
	if err != nil {
		return nil, err
	}
	info, err := e.client.GetAccountInfo(ctx, leaderboardPDA.Address.ToBase58())
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, notFound("burn leaderboard", leaderboardPDA.Address.ToBase58())
	}

	entries, err := parser.ParseLeaderboard(info.Data)
	if err != nil {
		return nil, err
	}
	// 链上按插入序存储，这里按燃烧量定榜序
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].BurnedAmount > entries[j].BurnedAmount
	})

	board := &Leaderboard{Entries: make([]LeaderboardRow, 0, len(entries))}
	addrs := make([]string, 0, len(entries))
	for _, entry := range entries {
		pda, derr := derive.ProjectPDA(e.programs.Project, entry.ProjectID)
		if derr != nil {
			return nil, derr
		}
		addrs = append(addrs, pda.Address.ToBase58())
	}

	var projectInfos []*rpc.AccountInfo
	if len(addrs) > 0 {
		projectInfos, err = e.fetchAccounts(ctx, addrs)
		if err != nil {
			return nil, err
		}
	}

	for i, entry := range entries {
		row := LeaderboardRow{
			Rank:         i + 1,
			ProjectID:    entry.ProjectID,
			BurnedAmount: entry.BurnedAmount,
		}
		board.TotalBurnedTokens += entry.BurnedAmount
		if projectInfos[i] != nil {
			if p, perr := parser.ParseProject(projectInfos[i].Data); perr == nil {
				row.Name = p.Name
				row.Creator = p.Creator
			} else {
				logger.Warnf("[Engine] leaderboard rank %d: undecodable project %d: %v", row.Rank, entry.ProjectID, perr)
			}
		}
		board.Entries = append(board.Entries, row)
	}
	return board, nil
}
