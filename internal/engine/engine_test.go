package engine

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memo-engine-sol/internal/config"
	"memo-engine-sol/internal/rpc"
	"memo-engine-sol/internal/txbuild"
)

// 固定测试地址（合法的 32 字节公钥），区块哈希与钱包共用同一字母表
const (
	testAddr      = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	testBlockhash = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

// mockNode 是一个最小 JSON-RPC 节点：按方法名分发固定响应，
// 并记录调用次数与最近一次参数，供断言引擎实际发了什么请求。
type mockNode struct {
	t *testing.T

	mu         sync.Mutex
	calls      map[string]int
	lastParams map[string][]json.RawMessage

	blockhash       string
	balances        map[string]uint64
	accounts        map[string][]byte
	signatures      map[string][]map[string]any
	transactions    map[string]map[string]any
	programAccounts map[string][]map[string]any
	sendSig         string
	simUnits        uint64
	simFail         bool
	simLogs         []string
}

func newMockNode(t *testing.T) *mockNode {
	return &mockNode{
		t:               t,
		calls:           map[string]int{},
		lastParams:      map[string][]json.RawMessage{},
		blockhash:       testBlockhash,
		balances:        map[string]uint64{},
		accounts:        map[string][]byte{},
		signatures:      map[string][]map[string]any{},
		transactions:    map[string]map[string]any{},
		programAccounts: map[string][]map[string]any{},
		sendSig:         "5VERYfake1111111111111111111111111111111111111111111111111111111111111111111111111",
		simUnits:        100_000,
	}
}

func (m *mockNode) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64            `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			m.t.Errorf("mock node: bad request body: %v", err)
			return
		}

		m.mu.Lock()
		m.calls[req.Method]++
		m.lastParams[req.Method] = req.Params
		result := m.dispatch(req.Method, req.Params)
		m.mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (m *mockNode) dispatch(method string, params []json.RawMessage) any {
	switch method {
	case "getLatestBlockhash":
		return wrapValue(map[string]any{"blockhash": m.blockhash, "lastValidBlockHeight": 1000})

	case "getBalance":
		var addr string
		m.unmarshal(params[0], &addr)
		return wrapValue(m.balances[addr])

	case "getAccountInfo":
		var addr string
		m.unmarshal(params[0], &addr)
		data, ok := m.accounts[addr]
		if !ok {
			return wrapValue(nil)
		}
		return wrapValue(accountJSON(data))

	case "getMultipleAccounts":
		var addrs []string
		m.unmarshal(params[0], &addrs)
		values := make([]any, len(addrs))
		for i, addr := range addrs {
			if data, ok := m.accounts[addr]; ok {
				values[i] = accountJSON(data)
			}
		}
		return wrapValue(values)

	case "getSignaturesForAddress":
		var addr string
		m.unmarshal(params[0], &addr)
		var opts struct {
			Limit  int    `json:"limit"`
			Before string `json:"before"`
		}
		m.unmarshal(params[1], &opts)
		sigs := m.signatures[addr]
		if opts.Before != "" {
			for i, s := range sigs {
				if s["signature"] == opts.Before {
					sigs = sigs[i+1:]
					break
				}
			}
		}
		if opts.Limit > 0 && len(sigs) > opts.Limit {
			sigs = sigs[:opts.Limit]
		}
		if sigs == nil {
			sigs = []map[string]any{}
		}
		return sigs

	case "getProgramAccounts":
		var addr string
		m.unmarshal(params[0], &addr)
		out := m.programAccounts[addr]
		if out == nil {
			out = []map[string]any{}
		}
		return out

	case "getTransaction":
		var sig string
		m.unmarshal(params[0], &sig)
		tx, ok := m.transactions[sig]
		if !ok {
			return nil
		}
		return tx

	case "simulateTransaction":
		if m.simFail {
			return wrapValue(map[string]any{
				"err":  map[string]any{"InstructionError": []any{0, map[string]any{"Custom": 6001}}},
				"logs": m.simLogs,
			})
		}
		return wrapValue(map[string]any{
			"err":           nil,
			"logs":          m.simLogs,
			"unitsConsumed": m.simUnits,
		})

	case "getVersion":
		return map[string]any{"solana-core": "1.18.26", "feature-set": 4215500110}

	case "sendTransaction":
		return m.sendSig

	default:
		m.t.Errorf("mock node: unexpected method %s", method)
		return nil
	}
}

func (m *mockNode) unmarshal(raw json.RawMessage, v any) {
	if err := json.Unmarshal(raw, v); err != nil {
		m.t.Errorf("mock node: bad param %s: %v", raw, err)
	}
}

func (m *mockNode) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *mockNode) lastParamsOf(method string) []json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastParams[method]
}

func (m *mockNode) setAccount(addr string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[addr] = data
}

func wrapValue(v any) map[string]any {
	return map[string]any{
		"context": map[string]any{"slot": uint64(1000)},
		"value":   v,
	}
}

func accountJSON(data []byte) map[string]any {
	return map[string]any{
		"lamports":   uint64(2_039_280),
		"owner":      "11111111111111111111111111111111",
		"data":       []any{base64.StdEncoding.EncodeToString(data), "base64"},
		"executable": false,
		"rentEpoch":  uint64(361),
	}
}

func testPrograms(t *testing.T) Programs {
	t.Helper()
	net, err := config.ResolveNetwork(config.BuiltinNetworks(), "testnet")
	require.NoError(t, err)
	progs, err := ResolvePrograms(net.Programs)
	require.NoError(t, err)
	return progs
}

func newTestEngine(t *testing.T, node *mockNode, settings Settings) *Engine {
	t.Helper()
	srv := httptest.NewServer(node.handler())
	t.Cleanup(srv.Close)

	client, err := rpc.NewClient("testnet", nil, srv.URL, 5*time.Second)
	require.NoError(t, err)

	eng, err := New(Options{
		Client:   client,
		Programs: testPrograms(t),
		Settings: settings,
	})
	require.NoError(t, err)
	return eng
}

// newTestUser 生成一个随机但合法的钱包地址，测试只关心合法性不关心身份
func newTestUser() string {
	return types.NewAccount().PublicKey.ToBase58()
}

// 测试数据构造器，按链上布局往后追加
func bU8(b []byte, v uint8) []byte { return append(b, v) }

func bU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func bU64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}

func bI64(b []byte, v int64) []byte { return bU64(b, uint64(v)) }

func bStr(b []byte, s string) []byte {
	b = bU32(b, uint32(len(s)))
	return append(b, s...)
}

func bOptStr(b []byte, s *string) []byte {
	if s == nil {
		return append(b, 0)
	}
	b = append(b, 1)
	return bStr(b, *s)
}

func bStrVec(b []byte, ss []string) []byte {
	b = bU32(b, uint32(len(ss)))
	for _, s := range ss {
		b = bStr(b, s)
	}
	return b
}

func bPub(b []byte, address string) []byte {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != 32 {
		panic("测试用地址非法: " + address)
	}
	return append(b, raw...)
}

func bDisc(b []byte) []byte { return append(b, make([]byte, 8)...) }

func strPtr(s string) *string { return &s }

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Equal(t, rpc.KindInvalidParameter, rpc.KindOf(err))
}

func TestNew_ClampsHistoryLimit(t *testing.T) {
	node := newMockNode(t)
	srv := httptest.NewServer(node.handler())
	defer srv.Close()
	client, err := rpc.NewClient("testnet", nil, srv.URL, time.Second)
	require.NoError(t, err)

	eng, err := New(Options{Client: client, Programs: testPrograms(t), HistoryPageLimit: 5000})
	require.NoError(t, err)
	assert.Equal(t, maxHistoryLimit, eng.historyLimit, "超出上限的分页配置应被收敛")

	eng, err = New(Options{Client: client, Programs: testPrograms(t)})
	require.NoError(t, err)
	assert.Equal(t, defaultHistoryLimit, eng.historyLimit)
	assert.Equal(t, defaultBulkConcurrency, eng.bulkConcurrency)
}

func TestResolvePrograms_Builtin(t *testing.T) {
	for _, net := range config.BuiltinNetworks() {
		_, err := ResolvePrograms(net.Programs)
		assert.NoError(t, err, "内置网络 %s 的程序地址应全部可解析", net.Name)
	}
}

func TestResolvePrograms_BadAddress(t *testing.T) {
	net, err := config.ResolveNetwork(config.BuiltinNetworks(), "testnet")
	require.NoError(t, err)

	addrs := net.Programs
	addrs.Chat = "not-a-valid-address"
	_, err = ResolvePrograms(addrs)
	require.Error(t, err)
	assert.Equal(t, rpc.KindInvalidAddress, rpc.KindOf(err))
	assert.Contains(t, err.Error(), "chat", "错误里应指明是哪个程序字段")
}

func TestBudget_BufferPercentOverride(t *testing.T) {
	e := &Engine{settings: StaticSettings{BufferPercent: 50}}
	p := e.budget(txbuild.BudgetUserProfile)
	assert.Equal(t, 1.5, p.Buffer)

	e = &Engine{settings: StaticSettings{}}
	p = e.budget(txbuild.BudgetUserProfile)
	assert.Equal(t, 1.1, p.Buffer, "百分比为 0 时保留业务域默认系数")

	e = &Engine{}
	p = e.budget(txbuild.BudgetBurn)
	assert.Equal(t, 1.0, p.Buffer)
}

func TestPrice_FromSettings(t *testing.T) {
	e := &Engine{}
	assert.Zero(t, e.price())

	e = &Engine{settings: StaticSettings{PriceMicroLamports: 5_000}}
	assert.Equal(t, uint64(5_000), e.price())
}

func TestCheckRange(t *testing.T) {
	assert.NoError(t, checkRange(0, 10))
	assert.NoError(t, checkRange(5, 5+maxRangeSpan))

	err := checkRange(5, 5)
	require.Error(t, err)
	assert.Equal(t, rpc.KindInvalidParameter, rpc.KindOf(err))

	err = checkRange(7, 3)
	require.Error(t, err)

	err = checkRange(0, maxRangeSpan+1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "range too large")
}

func TestCounterValue_MissingAccountIsZero(t *testing.T) {
	node := newMockNode(t)
	eng := newTestEngine(t, node, nil)

	total, err := eng.GetTotalBlogs(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total, "计数器账户未初始化时总数按 0 处理")
	assert.Equal(t, 1, node.callCount("getAccountInfo"))
}

func TestBufferPercent_AppliedToSimulatedUnits(t *testing.T) {
	node := newMockNode(t)
	node.simUnits = 100_000
	eng := newTestEngine(t, node, StaticSettings{BufferPercent: 50})

	prepared, err := eng.CreateProfile(context.Background(), newTestUser(), 420_000_000, "alice", "https://example.com/a.png", nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(150_000), prepared.UnitLimit, "模拟消耗 ×1.5 的放大系数")
	assert.Equal(t, uint64(100_000), prepared.UnitsConsumed)
	assert.False(t, prepared.UsedFallback)
}

func TestFetchAccounts_SingleChunkPassesThrough(t *testing.T) {
	node := newMockNode(t)
	eng := newTestEngine(t, node, nil)

	user := newTestUser()
	data := bU64(bDisc(nil), 42)
	node.setAccount(user, data)

	infos, err := eng.fetchAccounts(context.Background(), []string{user, testAddr})
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.NotNil(t, infos[0])
	assert.Equal(t, data, []byte(infos[0].Data))
	assert.Nil(t, infos[1], "不存在的账户应是对应位置的 nil")
	assert.Equal(t, 1, node.callCount("getMultipleAccounts"))
}

func TestFetchAccounts_SplitsLargeBatches(t *testing.T) {
	node := newMockNode(t)
	eng := newTestEngine(t, node, nil)

	addrs := make([]string, maxAccountsPerFetch+5)
	for i := range addrs {
		addrs[i] = newTestUser()
	}
	node.setAccount(addrs[0], bU64(bDisc(nil), 1))
	node.setAccount(addrs[len(addrs)-1], bU64(bDisc(nil), 2))

	infos, err := eng.fetchAccounts(context.Background(), addrs)
	require.NoError(t, err)
	require.Len(t, infos, len(addrs), "分片后结果仍与输入同序同长")
	assert.NotNil(t, infos[0])
	assert.NotNil(t, infos[len(addrs)-1])
	assert.Nil(t, infos[1])
	assert.Equal(t, 2, node.callCount("getMultipleAccounts"))
}
