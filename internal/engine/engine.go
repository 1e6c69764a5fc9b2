package engine

import (
	"context"
	"encoding/binary"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"memo-engine-sol/internal/cache"
	"memo-engine-sol/internal/config"
	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/derive"
	"memo-engine-sol/internal/parser"
	"memo-engine-sol/internal/rpc"
	"memo-engine-sol/internal/txbuild"
	"memo-engine-sol/pkg/logger"
	"memo-engine-sol/pkg/utils"
)

const (
	defaultBulkConcurrency = 8
	defaultHistoryLimit    = 50

	// maxHistoryLimit 留出 limit+1 探测位，保证探测量不超过节点的 1000 上限
	maxHistoryLimit = 999

	// maxAccountsPerFetch 是 getMultipleAccounts 单次调用的节点上限
	maxAccountsPerFetch = 100

	// maxRangeSpan 限制单次区间查询的 id 跨度，防止误传区间打爆节点
	maxRangeSpan = 1000
)

// Settings 提供随部署或调用方变化的运行参数。nil 实现时全部取域内默认值。
type Settings interface {
	// CustomEndpoint 非空时覆盖网络注册表的节点列表（构建 rpc.Client 时生效）
	CustomEndpoint() string
	// ComputeUnitBufferPercentage 模拟用量的放大百分比，
	// >0 时按 1+pct/100 的倍率覆盖各业务域自带的 Buffer 系数
	ComputeUnitBufferPercentage() uint
	// ComputeUnitPriceMicroLamports 计算单元单价，0 表示不附加价格指令
	ComputeUnitPriceMicroLamports() uint64
}

// StaticSettings 是 Settings 的固定值实现，通常由配置文件填充
type StaticSettings struct {
	Endpoint           string
	BufferPercent      uint
	PriceMicroLamports uint64
}

func (s StaticSettings) CustomEndpoint() string                { return s.Endpoint }
func (s StaticSettings) ComputeUnitBufferPercentage() uint     { return s.BufferPercent }
func (s StaticSettings) ComputeUnitPriceMicroLamports() uint64 { return s.PriceMicroLamports }

// Programs 是当前网络已解析的合约与代币公钥
type Programs struct {
	Mint      common.PublicKey
	Burn      common.PublicKey
	Chat      common.PublicKey
	Profile   common.PublicKey
	Project   common.PublicKey
	Blog      common.PublicKey
	Forum     common.PublicKey
	TokenMint common.PublicKey
}

// ResolvePrograms 解析网络注册表里的程序地址，任何一个非法都立即报错
func ResolvePrograms(addrs config.ProgramAddresses) (Programs, error) {
	var out Programs
	fields := []struct {
		name string
		src  string
		dst  *common.PublicKey
	}{
		{"mint", addrs.Mint, &out.Mint},
		{"burn", addrs.Burn, &out.Burn},
		{"chat", addrs.Chat, &out.Chat},
		{"profile", addrs.Profile, &out.Profile},
		{"project", addrs.Project, &out.Project},
		{"blog", addrs.Blog, &out.Blog},
		{"forum", addrs.Forum, &out.Forum},
		{"token_mint", addrs.TokenMint, &out.TokenMint},
	}
	for _, f := range fields {
		pk, err := derive.ParseAddress(f.src)
		if err != nil {
			return Programs{}, rpc.InvalidAddressf("network registry: bad %s program address %q", f.name, f.src)
		}
		*f.dst = pk
	}
	return out, nil
}

// Options 聚合 Engine 的全部依赖，由 svc 层一次性装配
type Options struct {
	Client           *rpc.Client
	Programs         Programs
	Settings         Settings            // 可为 nil
	Profiles         *cache.ProfileStore // 可为 nil，只影响 profile 读路径的缓存
	BulkConcurrency  int
	HistoryPageLimit int
}

// Engine 聚合各业务域的交易构建与链上读取。除注入的协作方外不持有状态，
// 方法可并发调用。
type Engine struct {
	client   *rpc.Client
	pipeline *txbuild.Pipeline
	programs Programs
	settings Settings
	profiles *cache.ProfileStore

	bulkConcurrency int
	historyLimit    int
}

func New(opt Options) (*Engine, error) {
	if opt.Client == nil {
		return nil, rpc.InvalidParamf("engine requires an rpc client")
	}
	bulk := opt.BulkConcurrency
	if bulk <= 0 {
		bulk = defaultBulkConcurrency
	}
	history := opt.HistoryPageLimit
	if history <= 0 {
		history = defaultHistoryLimit
	}
	if history > maxHistoryLimit {
		history = maxHistoryLimit
	}
	return &Engine{
		client:          opt.Client,
		pipeline:        txbuild.NewPipeline(opt.Client),
		programs:        opt.Programs,
		settings:        opt.Settings,
		profiles:        opt.Profiles,
		bulkConcurrency: bulk,
		historyLimit:    history,
	}, nil
}

// budget 对业务域画像应用调用方的放大系数。
// 百分比 >0 时覆盖画像自带 Buffer，0 保留域内默认。
func (e *Engine) budget(p txbuild.Profile) txbuild.Profile {
	if e.settings == nil {
		return p
	}
	if pct := e.settings.ComputeUnitBufferPercentage(); pct > 0 {
		p.Buffer = 1 + float64(pct)/100
	}
	return p
}

// price 返回计算单元单价，0 表示不附加价格指令
func (e *Engine) price() uint64 {
	if e.settings == nil {
		return 0
	}
	return e.settings.ComputeUnitPriceMicroLamports()
}

// userTokenAccount 推导用户的 MEMO 代币关联账户（token-2022 种子）
func (e *Engine) userTokenAccount(user common.PublicKey) (common.PublicKey, error) {
	ata, err := derive.AssociatedTokenAddress(user, e.programs.TokenMint, consts.TokenProgram2022)
	if err != nil {
		return common.PublicKey{}, err
	}
	return ata.Address, nil
}

// counterValue 读取全局计数器账户。账户尚未初始化时按 0 处理（还没有实体）。
func (e *Engine) counterValue(ctx context.Context, counter common.PublicKey) (uint64, error) {
	info, err := e.client.GetAccountInfo(ctx, counter.ToBase58())
	if err != nil {
		return 0, err
	}
	if info == nil {
		return 0, nil
	}
	return parser.ParseCounter(info.Data)
}

// fetchAccounts 批量读账户，结果与输入同序。
// 单片以内直接一次调用，错误原样上抛；超过单片上限时分片并发拉取，
// 失败的片退化为对应位置的空洞并告警，保证批量操作不整体失败。
func (e *Engine) fetchAccounts(ctx context.Context, addrs []string) ([]*rpc.AccountInfo, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	if len(addrs) <= maxAccountsPerFetch {
		infos, err := e.client.GetMultipleAccounts(ctx, addrs)
		if err != nil {
			return nil, err
		}
		if len(infos) != len(addrs) {
			return nil, rpc.Otherf("getMultipleAccounts returned %d entries for %d keys", len(infos), len(addrs))
		}
		return infos, nil
	}

	var chunks [][]string
	for off := 0; off < len(addrs); off += maxAccountsPerFetch {
		end := off + maxAccountsPerFetch
		if end > len(addrs) {
			end = len(addrs)
		}
		chunks = append(chunks, addrs[off:end])
	}

	type chunkResult struct {
		infos []*rpc.AccountInfo
		err   error
	}
	results := utils.ParallelMap(chunks, e.bulkConcurrency, func(chunk []string) chunkResult {
		infos, err := e.client.GetMultipleAccounts(ctx, chunk)
		return chunkResult{infos: infos, err: err}
	})

	out := make([]*rpc.AccountInfo, 0, len(addrs))
	for i, res := range results {
		if res.err != nil || len(res.infos) != len(chunks[i]) {
			logger.Warnf("[Engine] account batch %d/%d degraded to holes: %v", i+1, len(chunks), res.err)
			out = append(out, make([]*rpc.AccountInfo, len(chunks[i]))...)
			continue
		}
		out = append(out, res.infos...)
	}
	return out, nil
}

// fetchByID 按 [start, end) 的 id 区间批量读账户，pdaOf 负责 id → 地址
func (e *Engine) fetchByID(ctx context.Context, start, end uint64, pdaOf func(uint64) (derive.PDA, error)) ([]*rpc.AccountInfo, error) {
	addrs := make([]string, 0, end-start)
	for id := start; id < end; id++ {
		pda, err := pdaOf(id)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, pda.Address.ToBase58())
	}
	return e.fetchAccounts(ctx, addrs)
}

// checkRange 校验区间查询参数：start < end 且跨度不超过 maxRangeSpan
func checkRange(start, end uint64) error {
	if start >= end {
		return rpc.InvalidParamf("invalid range: start %d must be less than end %d", start, end)
	}
	if end-start > maxRangeSpan {
		return rpc.InvalidParamf("range too large: %d ids (max: %d)", end-start, maxRangeSpan)
	}
	return nil
}

// notFound 统一"账户不存在"错误的口径，消息里带实体名与标识
func notFound(entity string, id any) *rpc.Error {
	return rpc.Otherf("%s not found: %v", entity, id)
}

// 账户元数据的三种角色。签名者只出现在费付方位置，恒为可写。
func asSigner(pk common.PublicKey) types.AccountMeta {
	return types.AccountMeta{PubKey: pk, IsSigner: true, IsWritable: true}
}

func asWritable(pk common.PublicKey) types.AccountMeta {
	return types.AccountMeta{PubKey: pk, IsWritable: true}
}

func asReadonly(pk common.PublicKey) types.AccountMeta {
	return types.AccountMeta{PubKey: pk}
}

// ixData 拼接指令判别码与小端 u64 参数
func ixData(name string, args ...uint64) []byte {
	data := derive.InstructionDiscriminator(name)
	for _, a := range args {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], a)
		data = append(data, b[:]...)
	}
	return data
}
