package engine

import (
	"context"

	"memo-engine-sol/internal/derive"
	"memo-engine-sol/internal/memo"
)

// MemoHistoryItem 是地址签名历史里的一条，Memo 为 nil 表示该笔没带附言
type MemoHistoryItem struct {
	Signature string
	Slot      uint64
	BlockTime *int64
	Failed    bool
	Memo      *memo.ParsedMemo
}

// MemoHistoryPage 是一页附言历史，HasMore 提示可用最后一条签名继续往前翻
type MemoHistoryPage struct {
	Items   []MemoHistoryItem
	HasMore bool
}

// GetMemoHistory 拉取任意地址的签名历史并就地分类附言。
// 多取一条探测是否还有下一页，失败交易保留并打标，不在这里过滤。
func (e *Engine) GetMemoHistory(ctx context.Context, address string, limit int, before string) (*MemoHistoryPage, error) {
	if _, err := derive.ParseAddress(address); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = e.historyLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	sigs, err := e.client.GetSignaturesForAddress(ctx, address, limit+1, before)
	if err != nil {
		return nil, err
	}

	page := &MemoHistoryPage{HasMore: len(sigs) > limit}
	if page.HasMore {
		sigs = sigs[:limit]
	}

	page.Items = make([]MemoHistoryItem, 0, len(sigs))
	for _, sig := range sigs {
		item := MemoHistoryItem{
			Signature: sig.Signature,
			Slot:      sig.Slot,
			BlockTime: sig.BlockTime,
			Failed:    sig.Failed(),
		}
		if sig.Memo != nil {
			item.Memo = memo.ParseBurnMemo(*sig.Memo)
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}
