package parser

// ParseCounter 解析全局计数器账户，博客/论坛/项目合约共用同一布局：
// [disc 8] count u64
func ParseCounter(data []byte) (uint64, error) {
	cur := NewCursor(data)
	if err := cur.Skip("discriminator", 8); err != nil {
		return 0, err
	}
	return cur.U64("count")
}
