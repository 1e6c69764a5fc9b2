package parser

// ChatGroup 是 memo-chat 合约的群账户
type ChatGroup struct {
	GroupID         uint64
	Creator         string
	CreatedAt       int64
	Name            string
	Description     string
	Image           string
	Tags            []string
	MemoCount       uint64
	BurnedAmount    uint64
	MinMemoInterval int64
	LastMemoTime    int64
	Bump            uint8
}

func ParseChatGroup(data []byte) (*ChatGroup, error) {
	cur := NewCursor(data)
	if err := cur.Skip("discriminator", 8); err != nil {
		return nil, err
	}

	var g ChatGroup
	var err error
	if g.GroupID, err = cur.U64("group_id"); err != nil {
		return nil, err
	}
	if g.Creator, err = cur.PubKey("creator"); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = cur.I64("created_at"); err != nil {
		return nil, err
	}
	if g.Name, err = cur.String("name"); err != nil {
		return nil, err
	}
	if g.Description, err = cur.String("description"); err != nil {
		return nil, err
	}
	if g.Image, err = cur.String("image"); err != nil {
		return nil, err
	}
	tagCount, err := cur.U32("tags")
	if err != nil {
		return nil, err
	}
	if int(tagCount) > cur.Remaining()/4 {
		return nil, &Truncated{Field: "tags", Want: int(tagCount) * 4, Have: cur.Remaining()}
	}
	g.Tags = make([]string, 0, tagCount)
	for i := uint32(0); i < tagCount; i++ {
		tag, err := cur.String("tags")
		if err != nil {
			return nil, err
		}
		g.Tags = append(g.Tags, tag)
	}
	if g.MemoCount, err = cur.U64("memo_count"); err != nil {
		return nil, err
	}
	if g.BurnedAmount, err = cur.U64("burned_amount"); err != nil {
		return nil, err
	}
	if g.MinMemoInterval, err = cur.I64("min_memo_interval"); err != nil {
		return nil, err
	}
	if g.LastMemoTime, err = cur.I64("last_memo_time"); err != nil {
		return nil, err
	}
	if g.Bump, err = cur.U8("bump"); err != nil {
		return nil, err
	}
	return &g, nil
}
