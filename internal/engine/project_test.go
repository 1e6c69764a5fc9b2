package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/derive"
	"memo-engine-sol/internal/rpc"
)

func projectFixture(id uint64, creator, name string, memoCount, burned uint64) []byte {
	data := bDisc(nil)
	data = bU64(data, id)
	data = bPub(data, creator)
	data = bI64(data, 1_700_000_000)
	data = bI64(data, 1_700_000_100)
	data = bStr(data, name)
	data = bStr(data, "about "+name)
	data = bStr(data, "https://example.com/p.png")
	data = bStr(data, "https://"+name+".example.com")
	data = bStrVec(data, []string{"defi", "infra"})
	data = bU64(data, memoCount)
	data = bU64(data, burned)
	data = bI64(data, 1_700_000_200)
	return bU8(data, 251)
}

func leaderboardFixture(entries ...[2]uint64) []byte {
	data := bDisc(nil)
	data = bU32(data, uint32(len(entries)))
	for _, e := range entries {
		data = bU64(data, e[0])
		data = bU64(data, e[1])
	}
	return data
}

func projectAddr(t *testing.T, id uint64) string {
	t.Helper()
	pda, err := derive.ProjectPDA(testPrograms(t).Project, id)
	require.NoError(t, err)
	return pda.Address.ToBase58()
}

func projectCounterAddr(t *testing.T) string {
	t.Helper()
	pda, err := derive.GlobalCounterPDA(testPrograms(t).Project)
	require.NoError(t, err)
	return pda.Address.ToBase58()
}

func leaderboardAddr(t *testing.T) string {
	t.Helper()
	pda, err := derive.BurnLeaderboardPDA(testPrograms(t).Project)
	require.NoError(t, err)
	return pda.Address.ToBase58()
}

func TestCreateProject_PreparesTransaction(t *testing.T) {
	node := newMockNode(t)
	node.setAccount(projectCounterAddr(t), bU64(bDisc(nil), 2))
	eng := newTestEngine(t, node, nil)

	prepared, err := eng.CreateProject(context.Background(), newTestUser(),
		"memo-engine", "tx builder", "", "https://example.com", []string{"infra"}, consts.MinProjectBurnAmount)
	require.NoError(t, err)

	assert.Equal(t, derive.IxCreateProject, prepared.Name)
	assert.GreaterOrEqual(t, prepared.MemoLength, consts.MinMemoLength)
	assert.Equal(t, 1, node.callCount("getAccountInfo"), "只读一次计数器")
	assert.Equal(t, 1, node.callCount("simulateTransaction"))
}

func TestCreateProject_RejectsSmallBurn(t *testing.T) {
	eng := newTestEngine(t, newMockNode(t), nil)

	_, err := eng.CreateProject(context.Background(), newTestUser(),
		"p", "", "", "", nil, consts.MinProjectBurnAmount-1)
	require.Error(t, err)
	assert.Equal(t, rpc.KindInvalidParameter, rpc.KindOf(err))
	assert.Contains(t, err.Error(), "burn amount too small")
}

func TestCreateProject_RejectsTooManyTags(t *testing.T) {
	eng := newTestEngine(t, newMockNode(t), nil)

	_, err := eng.CreateProject(context.Background(), newTestUser(),
		"p", "", "", "", []string{"a", "b", "c", "d", "e"}, consts.MinProjectBurnAmount)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many tags")
}

func TestBurnForProject_UsesLowerThreshold(t *testing.T) {
	node := newMockNode(t)
	eng := newTestEngine(t, node, nil)

	// 立项门槛之下、燃烧门槛之上的数额对 burn_for_project 是合法的
	prepared, err := eng.BurnForProject(context.Background(), newTestUser(), 1, "supporting", consts.MinProjectBurnForProjectAmount)
	require.NoError(t, err)
	assert.Equal(t, derive.IxBurnForProject, prepared.Name)

	_, err = eng.BurnForProject(context.Background(), newTestUser(), 1, "supporting", consts.MinProjectBurnForProjectAmount-1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "burn amount too small")
}

func TestGetProjectsRange_ChecksBounds(t *testing.T) {
	eng := newTestEngine(t, newMockNode(t), nil)

	_, err := eng.GetProjectsRange(context.Background(), 5, 5)
	require.Error(t, err)
	assert.Equal(t, rpc.KindInvalidParameter, rpc.KindOf(err))

	_, err = eng.GetProjectsRange(context.Background(), 0, maxRangeSpan+1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "range too large")
}

func TestGetProjectsRange_SkipsHoles(t *testing.T) {
	node := newMockNode(t)
	creator := newTestUser()
	node.setAccount(projectAddr(t, 0), projectFixture(0, creator, "p0", 1, 10))
	node.setAccount(projectAddr(t, 2), projectFixture(2, creator, "p2", 1, 20))
	eng := newTestEngine(t, node, nil)

	projects, err := eng.GetProjectsRange(context.Background(), 0, 3)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, uint64(0), projects[0].ProjectID)
	assert.Equal(t, uint64(2), projects[1].ProjectID)
	assert.Equal(t, []string{"defi", "infra"}, projects[0].Tags)
}

func TestGetAllProjectStatistics_AggregatesValidOnly(t *testing.T) {
	node := newMockNode(t)
	node.setAccount(projectCounterAddr(t), bU64(bDisc(nil), 3))
	creator := newTestUser()
	node.setAccount(projectAddr(t, 0), projectFixture(0, creator, "p0", 2, 100))
	// id 1 缺失
	node.setAccount(projectAddr(t, 2), projectFixture(2, creator, "p2", 3, 200))
	eng := newTestEngine(t, node, nil)

	stats, err := eng.GetAllProjectStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.TotalProjects)
	assert.Equal(t, uint64(2), stats.ValidProjects)
	assert.Equal(t, uint64(5), stats.TotalMemos)
	assert.Equal(t, uint64(300), stats.TotalBurnedTokens)
	assert.Len(t, stats.Projects, 2)
}

func TestGetLeaderboard_NotFound(t *testing.T) {
	eng := newTestEngine(t, newMockNode(t), nil)

	_, err := eng.GetLeaderboard(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "burn leaderboard not found")
}

func TestGetLeaderboard_SortsByBurnAndEnriches(t *testing.T) {
	node := newMockNode(t)
	// 链上插入序：id 0 烧 100，id 1 烧 500，id 2 烧 300
	node.setAccount(leaderboardAddr(t), leaderboardFixture(
		[2]uint64{0, 100}, [2]uint64{1, 500}, [2]uint64{2, 300},
	))
	creator := newTestUser()
	node.setAccount(projectAddr(t, 0), projectFixture(0, creator, "p0", 1, 100))
	node.setAccount(projectAddr(t, 1), projectFixture(1, creator, "p1", 1, 500))
	// id 2 的项目账户已不在链上

	eng := newTestEngine(t, node, nil)
	board, err := eng.GetLeaderboard(context.Background())
	require.NoError(t, err)

	require.Len(t, board.Entries, 3)
	assert.Equal(t, uint64(900), board.TotalBurnedTokens)

	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, uint64(1), board.Entries[0].ProjectID)
	assert.Equal(t, uint64(500), board.Entries[0].BurnedAmount)
	assert.Equal(t, "p1", board.Entries[0].Name)
	assert.Equal(t, creator, board.Entries[0].Creator)

	assert.Equal(t, 2, board.Entries[1].Rank)
	assert.Equal(t, uint64(2), board.Entries[1].ProjectID)
	assert.Empty(t, board.Entries[1].Name, "拉不到的项目席位留空展示字段")

	assert.Equal(t, 3, board.Entries[2].Rank)
	assert.Equal(t, uint64(0), board.Entries[2].ProjectID)
}
