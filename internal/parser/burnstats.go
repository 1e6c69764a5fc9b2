package parser

import (
	"memo-engine-sol/internal/consts"
)

// BurnStats 是 memo-burn 合约的用户全局燃烧统计账户
type BurnStats struct {
	User         string
	TotalBurned  uint64
	BurnCount    uint64
	LastBurnTime int64
	Bump         uint8
}

// ParseBurnStats 解析定长 65 字节的统计账户：
// [disc 8] user 32 | total_burned u64 | burn_count u64 | last_burn_time i64 | bump
func ParseBurnStats(data []byte) (*BurnStats, error) {
	if len(data) < consts.UserGlobalBurnStatsSize {
		return nil, &Truncated{Field: "account", Want: consts.UserGlobalBurnStatsSize, Have: len(data)}
	}

	cur := NewCursor(data)
	if err := cur.Skip("discriminator", 8); err != nil {
		return nil, err
	}

	var s BurnStats
	var err error
	if s.User, err = cur.PubKey("user"); err != nil {
		return nil, err
	}
	if s.TotalBurned, err = cur.U64("total_burned"); err != nil {
		return nil, err
	}
	if s.BurnCount, err = cur.U64("burn_count"); err != nil {
		return nil, err
	}
	if s.LastBurnTime, err = cur.I64("last_burn_time"); err != nil {
		return nil, err
	}
	if s.Bump, err = cur.U8("bump"); err != nil {
		return nil, err
	}
	return &s, nil
}
