package parser

// Blog 是博客合约的单个博客账户
type Blog struct {
	BlogID       uint64
	Creator      string
	CreatedAt    int64
	LastUpdated  int64
	Name         string
	Description  string
	Image        string
	MemoCount    uint64
	BurnedAmount uint64
	MintedAmount uint64
	LastMemoTime int64
	Bump         uint8
}

func ParseBlog(data []byte) (*Blog, error) {
	cur := NewCursor(data)
	if err := cur.Skip("discriminator", 8); err != nil {
		return nil, err
	}

	var b Blog
	var err error
	if b.BlogID, err = cur.U64("blog_id"); err != nil {
		return nil, err
	}
	if b.Creator, err = cur.PubKey("creator"); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = cur.I64("created_at"); err != nil {
		return nil, err
	}
	if b.LastUpdated, err = cur.I64("last_updated"); err != nil {
		return nil, err
	}
	if b.Name, err = cur.String("name"); err != nil {
		return nil, err
	}
	if b.Description, err = cur.String("description"); err != nil {
		return nil, err
	}
	if b.Image, err = cur.String("image"); err != nil {
		return nil, err
	}
	if b.MemoCount, err = cur.U64("memo_count"); err != nil {
		return nil, err
	}
	if b.BurnedAmount, err = cur.U64("burned_amount"); err != nil {
		return nil, err
	}
	if b.MintedAmount, err = cur.U64("minted_amount"); err != nil {
		return nil, err
	}
	if b.LastMemoTime, err = cur.I64("last_memo_time"); err != nil {
		return nil, err
	}
	if b.Bump, err = cur.U8("bump"); err != nil {
		return nil, err
	}
	return &b, nil
}
