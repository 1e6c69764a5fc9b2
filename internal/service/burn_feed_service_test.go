package service

import (
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memo-engine-sol/internal/engine"
	"memo-engine-sol/internal/memo"
	"memo-engine-sol/internal/rpc"
)

func testEngine(t *testing.T) *engine.Engine {
	client, err := rpc.NewClient("testnet", nil, "http://127.0.0.1:1", time.Second)
	require.NoError(t, err)
	eng, err := engine.New(engine.Options{Client: client})
	require.NoError(t, err)
	return eng
}

func TestNewBurnFeedService_Validation(t *testing.T) {
	eng := testEngine(t)

	_, err := NewBurnFeedService(BurnFeedOption{Producer: nil, Engine: eng, Topic: "burns"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires engine and kafka producer")

	_, err = NewBurnFeedService(BurnFeedOption{Engine: nil, Topic: "burns"})
	require.Error(t, err)

	// 创建 producer 句柄不需要可达的 broker
	producer, err := kafka.NewProducer(&kafka.ConfigMap{})
	require.NoError(t, err)
	defer producer.Close()

	_, err = NewBurnFeedService(BurnFeedOption{Engine: eng, Producer: producer, Topic: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic is empty")
}

func TestCutAtWatermark(t *testing.T) {
	items := []engine.MemoHistoryItem{
		{Signature: "sigC"}, // 最新
		{Signature: "sigB"},
		{Signature: "sigA"}, // 最旧
	}
	s := &BurnFeedService{batchLimit: 3}

	assert.Len(t, s.cutAtWatermark(items), 3, "没有水位时整页都算新")

	s.lastSig = "sigB"
	fresh := s.cutAtWatermark(items)
	require.Len(t, fresh, 1)
	assert.Equal(t, "sigC", fresh[0].Signature)

	s.lastSig = "sigC"
	assert.Empty(t, s.cutAtWatermark(items), "水位就是最新签名时没有新条目")

	// 水位被挤出窗口，整页视为新条目
	s.lastSig = "sigZ"
	assert.Len(t, s.cutAtWatermark(items), 3)
}

func TestToBurnEvent(t *testing.T) {
	blockTime := int64(1_700_000_000)

	_, ok := toBurnEvent(engine.MemoHistoryItem{Signature: "s1", Failed: true,
		Memo: &memo.ParsedMemo{Kind: memo.MemoKindText, BurnAmount: 1_000_000}})
	assert.False(t, ok, "失败交易不进事件流")

	_, ok = toBurnEvent(engine.MemoHistoryItem{Signature: "s2"})
	assert.False(t, ok, "无附言交易不进事件流")

	_, ok = toBurnEvent(engine.MemoHistoryItem{Signature: "s3",
		Memo: &memo.ParsedMemo{Kind: memo.MemoKindToken, Token: &memo.TokenNote{Signature: "x"}}})
	assert.False(t, ok, "代币附言没有燃烧量, 不进事件流")

	ev, ok := toBurnEvent(engine.MemoHistoryItem{
		Signature: "s4",
		Slot:      42,
		BlockTime: &blockTime,
		Memo:      &memo.ParsedMemo{Kind: memo.MemoKindText, BurnAmount: 5_000_000, Text: "note"},
	})
	require.True(t, ok)
	assert.Equal(t, "s4", ev.Signature)
	assert.Equal(t, uint64(42), ev.Slot)
	assert.Equal(t, blockTime, ev.BlockTime)
	assert.Equal(t, uint64(5_000_000), ev.Amount)
	assert.Equal(t, "memo", ev.Kind, "纯文本燃烧归类为 memo")
	assert.Empty(t, ev.Burner)

	ev, ok = toBurnEvent(engine.MemoHistoryItem{
		Signature: "s5",
		Memo: &memo.ParsedMemo{
			Kind:       memo.MemoKindRecord,
			BurnAmount: 420_000_000,
			Category:   "profile",
			Operation:  "create_profile",
			Record:     &memo.ProfileCreationData{UserPubkey: "用户地址"},
		},
	})
	require.True(t, ok)
	assert.Equal(t, "profile", ev.Kind)
	assert.Equal(t, "用户地址", ev.Burner)
}

func TestBurnerOf(t *testing.T) {
	cases := []struct {
		name   string
		record interface{}
		want   string
	}{
		{"profile_create", &memo.ProfileCreationData{UserPubkey: "u1"}, "u1"},
		{"profile_update", &memo.ProfileUpdateData{UserPubkey: "u2"}, "u2"},
		{"blog_burn", &memo.BlogBurnData{Burner: "u3"}, "u3"},
		{"blog_mint", &memo.BlogMintData{Minter: "u4"}, "u4"},
		{"post_create", &memo.PostCreationData{Creator: "u5"}, "u5"},
		{"post_burn", &memo.PostBurnData{User: "u6"}, "u6"},
		{"post_mint", &memo.PostMintData{User: "u7"}, "u7"},
		{"project_burn", &memo.ProjectBurnData{Burner: "u8"}, "u8"},
		{"blog_create_no_actor", &memo.BlogCreationData{Name: "b"}, ""},
		{"no_record", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, burnerOf(&memo.ParsedMemo{Record: tc.record}))
		})
	}
}
