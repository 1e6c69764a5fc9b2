package parser

// Project 是项目合约的项目账户
type Project struct {
	ProjectID    uint64
	Creator      string
	CreatedAt    int64
	LastUpdated  int64
	Name         string
	Description  string
	Image        string
	Website      string
	Tags         []string
	MemoCount    uint64
	BurnedAmount uint64
	LastMemoTime int64
	Bump         uint8
}

func ParseProject(data []byte) (*Project, error) {
	cur := NewCursor(data)
	if err := cur.Skip("discriminator", 8); err != nil {
		return nil, err
	}

	var p Project
	var err error
	if p.ProjectID, err = cur.U64("project_id"); err != nil {
		return nil, err
	}
	if p.Creator, err = cur.PubKey("creator"); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = cur.I64("created_at"); err != nil {
		return nil, err
	}
	if p.LastUpdated, err = cur.I64("last_updated"); err != nil {
		return nil, err
	}
	if p.Name, err = cur.String("name"); err != nil {
		return nil, err
	}
	if p.Description, err = cur.String("description"); err != nil {
		return nil, err
	}
	if p.Image, err = cur.String("image"); err != nil {
		return nil, err
	}
	if p.Website, err = cur.String("website"); err != nil {
		return nil, err
	}
	tagCount, err := cur.U32("tags")
	if err != nil {
		return nil, err
	}
	// 每个 tag 至少占 4 字节长度头，预分配前先用剩余字节数封顶
	if int(tagCount) > cur.Remaining()/4 {
		return nil, &Truncated{Field: "tags", Want: int(tagCount) * 4, Have: cur.Remaining()}
	}
	p.Tags = make([]string, 0, tagCount)
	for i := uint32(0); i < tagCount; i++ {
		tag, err := cur.String("tags")
		if err != nil {
			return nil, err
		}
		p.Tags = append(p.Tags, tag)
	}
	if p.MemoCount, err = cur.U64("memo_count"); err != nil {
		return nil, err
	}
	if p.BurnedAmount, err = cur.U64("burned_amount"); err != nil {
		return nil, err
	}
	if p.LastMemoTime, err = cur.I64("last_memo_time"); err != nil {
		return nil, err
	}
	if p.Bump, err = cur.U8("bump"); err != nil {
		return nil, err
	}
	return &p, nil
}

// LeaderboardEntry 是排行榜里的一席，Rank 从 1 开始按存储顺序编号
type LeaderboardEntry struct {
	Rank         int
	ProjectID    uint64
	BurnedAmount uint64
}

// ParseLeaderboard 解析项目燃烧排行榜账户：
// [disc 8] entries_len u32 | (project_id u64, burned_amount u64) × N
func ParseLeaderboard(data []byte) ([]LeaderboardEntry, error) {
	cur := NewCursor(data)
	if err := cur.Skip("discriminator", 8); err != nil {
		return nil, err
	}

	count, err := cur.U32("entries")
	if err != nil {
		return nil, err
	}
	// 每席 16 字节，先校验长度再分配
	if int(count) > cur.Remaining()/16 {
		return nil, &Truncated{Field: "entries", Want: int(count) * 16, Have: cur.Remaining()}
	}
	entries := make([]LeaderboardEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		id, err := cur.U64("entries.project_id")
		if err != nil {
			return nil, err
		}
		amount, err := cur.U64("entries.burned_amount")
		if err != nil {
			return nil, err
		}
		entries = append(entries, LeaderboardEntry{
			Rank:         int(i) + 1,
			ProjectID:    id,
			BurnedAmount: amount,
		})
	}
	return entries, nil
}
