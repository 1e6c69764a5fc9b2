package txbuild

// MaxComputeUnits 是单笔交易的协议上限，也是模拟阶段的占位额度
const MaxComputeUnits = 1_400_000

// SimulationUnitLimit 模拟交易统一用满额占位，保证指令形状与最终交易一致
const SimulationUnitLimit uint32 = MaxComputeUnits

// Step 是回退表的一档：附言长度不超过 MaxMemoLen 时取 Units
type Step struct {
	MaxMemoLen int
	Units      uint32
}

// Profile 描述一类交易的计算预算策略。
// 模拟可用时取 消耗×Buffer 并夹在 [Min, Max]；
// 模拟不可用时按附言长度查表，查不到取 Default。
type Profile struct {
	Buffer  float64
	Min     uint32
	Max     uint32 // 0 按 MaxComputeUnits 处理
	Default uint32
	Table   []Step
}

// Estimate 永不失败：任何输入都能给出一个可用的 CU 额度。
// 返回值第二项表示是否走了回退表。
func (p Profile) Estimate(unitsConsumed *uint64, memoLen int) (uint32, bool) {
	max := p.Max
	if max == 0 || max > MaxComputeUnits {
		max = MaxComputeUnits
	}
	if unitsConsumed != nil {
		scaled := uint64(float64(*unitsConsumed) * p.Buffer)
		if scaled < uint64(p.Min) {
			scaled = uint64(p.Min)
		}
		if scaled > uint64(max) {
			scaled = uint64(max)
		}
		return uint32(scaled), false
	}

	units := p.Default
	for _, step := range p.Table {
		if memoLen <= step.MaxMemoLen {
			units = step.Units
			break
		}
	}
	if units < p.Min {
		units = p.Min
	}
	if units > max {
		units = max
	}
	return units, true
}

// 各业务域的预算画像。数值偏保守：宁可多要额度，也不让交易因超限回滚。
var (
	BudgetToken = Profile{
		Buffer:  1.1,
		Min:     1_000,
		Max:     MaxComputeUnits,
		Default: 400_000,
		Table: []Step{
			{100, 100_000}, {200, 150_000}, {300, 200_000},
			{400, 250_000}, {500, 300_000}, {600, 350_000}, {700, 400_000},
		},
	}

	BudgetUserProfile = Profile{
		Buffer:  1.1,
		Min:     1_000,
		Max:     MaxComputeUnits,
		Default: 450_000,
		Table: []Step{
			{100, 120_000}, {200, 160_000}, {300, 200_000},
			{400, 250_000}, {500, 300_000}, {600, 350_000}, {700, 400_000},
		},
	}

	// 论坛交易指令较重，放大系数和下限都更高
	BudgetForum = Profile{
		Buffer:  1.2,
		Min:     120_000,
		Max:     400_000,
		Default: 400_000,
	}

	BudgetChat = Profile{
		Buffer:  1.2,
		Min:     120_000,
		Max:     400_000,
		Default: 400_000,
	}

	BudgetBlog = Profile{
		Buffer:  1.1,
		Min:     100_000,
		Max:     MaxComputeUnits,
		Default: 400_000,
	}

	BudgetProject = Profile{
		Buffer:  1.1,
		Min:     100_000,
		Max:     MaxComputeUnits,
		Default: 400_000,
	}

	BudgetMint = Profile{
		Buffer:  1.1,
		Min:     100_000,
		Max:     MaxComputeUnits,
		Default: 400_000,
	}

	BudgetBurn = Profile{
		Buffer:  1.0,
		Min:     300_000,
		Default: 400_000,
	}

	BudgetInitStats = Profile{
		Buffer:  1.0,
		Min:     300_000,
		Default: 300_000,
	}

	// 转账指令轻，模拟失败也不拦截，限额贴着实际消耗走
	BudgetTransfer = Profile{
		Buffer:  1.1,
		Min:     1_000,
		Max:     MaxComputeUnits,
		Default: 200_000,
	}
)
