package parser

// Post 是论坛合约的帖子账户
type Post struct {
	PostID        uint64
	Creator       string
	CreatedAt     int64
	LastUpdated   int64
	Title         string
	Content       string
	Image         string
	ReplyCount    uint64
	BurnedAmount  uint64
	LastReplyTime int64
	Bump          uint8
}

func ParsePost(data []byte) (*Post, error) {
	cur := NewCursor(data)
	if err := cur.Skip("discriminator", 8); err != nil {
		return nil, err
	}

	var p Post
	var err error
	if p.PostID, err = cur.U64("post_id"); err != nil {
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
	if p.Title, err = cur.String("title"); err != nil {
		return nil, err
	}
	if p.Content, err = cur.String("content"); err != nil {
		return nil, err
	}
	if p.Image, err = cur.String("image"); err != nil {
		return nil, err
	}
	if p.ReplyCount, err = cur.U64("reply_count"); err != nil {
		return nil, err
	}
	if p.BurnedAmount, err = cur.U64("burned_amount"); err != nil {
		return nil, err
	}
	if p.LastReplyTime, err = cur.I64("last_reply_time"); err != nil {
		return nil, err
	}
	if p.Bump, err = cur.U8("bump"); err != nil {
		return nil, err
	}
	return &p, nil
}
