package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"memo-engine-sol/internal/engine"
	"memo-engine-sol/internal/memo"
	"memo-engine-sol/internal/mq"
	"memo-engine-sol/pkg/logger"
)

const (
	defaultFeedInterval   = 15 * time.Second
	defaultFeedBatchLimit = 100
)

// BurnFeedService 周期性轮询燃烧程序的签名历史，把新确认的燃烧
// 编码成事件发布到 Kafka。水位记录上一轮的最新签名，重启后从
// 当前链头开始，不回放历史。
type BurnFeedService struct {
	eng        *engine.Engine
	producer   *kafka.Producer
	topic      string
	partitions int32
	address    string // 燃烧程序地址
	interval   time.Duration
	batchLimit int
	stopChan   chan struct{}
	ctx        context.Context
	cancel     func(err error)
	lastSig    string
}

// BurnFeedOption 聚合推送服务的依赖与参数
type BurnFeedOption struct {
	Engine     *engine.Engine
	Producer   *kafka.Producer
	Topic      string
	Partitions int32
	Address    string
	Interval   time.Duration
	BatchLimit int
}

func NewBurnFeedService(opt BurnFeedOption) (*BurnFeedService, error) {
	if opt.Engine == nil || opt.Producer == nil {
		return nil, errors.New("burn feed requires engine and kafka producer")
	}
	if opt.Topic == "" {
		return nil, errors.New("burn feed topic is empty")
	}
	interval := opt.Interval
	if interval <= 0 {
		interval = defaultFeedInterval
	}
	batchLimit := opt.BatchLimit
	if batchLimit <= 0 {
		batchLimit = defaultFeedBatchLimit
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	s := &BurnFeedService{
		eng:        opt.Engine,
		producer:   opt.Producer,
		topic:      opt.Topic,
		partitions: opt.Partitions,
		address:    opt.Address,
		interval:   interval,
		batchLimit: batchLimit,
		stopChan:   make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}

	// 初始化水位
	const retryCount = 3
	var lastErr error
	for i := 0; i <= retryCount; i++ {
		if err := s.prime(); err != nil {
			lastErr = err
			logger.Warnf("[BurnFeed] 第 %d 次水位初始化失败: %v", i+1, err)
			time.Sleep(2 * time.Second)
			continue
		}
		logger.Infof("[BurnFeed] 水位初始化完成: %q", s.lastSig)
		return s, nil
	}
	cancel(errors.New("burn feed init failed"))
	return nil, fmt.Errorf("burn feed init failed: %w", lastErr)
}

// prime 把水位指向链上当前最新的签名，此前的燃烧视为已消费
func (s *BurnFeedService) prime() error {
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	page, err := s.eng.GetMemoHistory(ctx, s.address, 1, "")
	if err != nil {
		return err
	}
	if len(page.Items) > 0 {
		s.lastSig = page.Items[0].Signature
	}
	return nil
}

func (s *BurnFeedService) Start() {
	s.scheduleNext()
	<-s.stopChan
}

func (s *BurnFeedService) scheduleNext() {
	time.AfterFunc(s.interval, func() {
		if err := s.publishNew(); err != nil {
			logger.Warnf("[BurnFeed] 周期性推送失败: %v", err)
		}
		// 如果没有被 Stop，就继续调度
		select {
		case <-s.ctx.Done():
			return
		default:
			s.scheduleNext()
		}
	})
}

func (s *BurnFeedService) Stop() {
	s.cancel(errors.New("BurnFeedService stop"))
	select {
	case <-s.stopChan:
		// 已关闭，无需重复关闭
	default:
		close(s.stopChan)
	}
}

func (s *BurnFeedService) publishNew() (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[BurnFeed] publish panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("publish panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Second)
	defer cancel()

	page, err := s.eng.GetMemoHistory(ctx, s.address, s.batchLimit, "")
	if err != nil {
		return err
	}

	fresh := s.cutAtWatermark(page.Items)
	if len(fresh) == 0 {
		return nil
	}

	// 从旧到新发布，消费端按自然顺序回放
	events := make([]mq.BurnEvent, 0, len(fresh))
	for i := len(fresh) - 1; i >= 0; i-- {
		if ev, ok := toBurnEvent(fresh[i]); ok {
			events = append(events, ev)
		}
	}
	s.lastSig = fresh[0].Signature

	if len(events) == 0 {
		return nil
	}
	jobs, err := mq.BuildBurnJobs(s.topic, s.partitions, events)
	if err != nil {
		return err
	}
	sent, failed := mq.SendKafkaJobs(ctx, s.producer, jobs, 10*time.Second)
	if len(failed) > 0 {
		logger.Warnf("[BurnFeed] %d/%d 条事件发送失败", len(failed), len(jobs))
	}
	logger.Infof("[BurnFeed] 新燃烧 %d 条, 已发布 %d 条, 水位 %s", len(events), len(sent), s.lastSig)
	return nil
}

// cutAtWatermark 返回水位之后的新条目。输入为新到旧，命中水位即截断；
// 整页都没命中说明单轮窗口被打满，多出的部分只能跳过。
func (s *BurnFeedService) cutAtWatermark(items []engine.MemoHistoryItem) []engine.MemoHistoryItem {
	if s.lastSig == "" {
		return items
	}
	for i := range items {
		if items[i].Signature == s.lastSig {
			return items[:i]
		}
	}
	if len(items) >= s.batchLimit {
		logger.Warnf("[BurnFeed] 水位 %s 超出单轮窗口, 部分事件可能被跳过", s.lastSig)
	}
	return items
}

// toBurnEvent 把带封包附言的成功交易转成事件，其余条目丢弃。
// 封包附言的 BurnAmount 恒为正，借此区分纯文本与代币附言。
func toBurnEvent(item engine.MemoHistoryItem) (mq.BurnEvent, bool) {
	if item.Failed || item.Memo == nil || item.Memo.BurnAmount == 0 {
		return mq.BurnEvent{}, false
	}
	ev := mq.BurnEvent{
		Signature: item.Signature,
		Slot:      item.Slot,
		Burner:    burnerOf(item.Memo),
		Amount:    item.Memo.BurnAmount,
		Kind:      item.Memo.Category,
	}
	if ev.Kind == "" {
		ev.Kind = "memo"
	}
	if item.BlockTime != nil {
		ev.BlockTime = *item.BlockTime
	}
	return ev, true
}

// burnerOf 从结构化记录里提取行为方地址，自由文本附言没有
func burnerOf(parsed *memo.ParsedMemo) string {
	switch rec := parsed.Record.(type) {
	case *memo.ProfileCreationData:
		return rec.UserPubkey
	case *memo.ProfileUpdateData:
		return rec.UserPubkey
	case *memo.BlogBurnData:
		return rec.Burner
	case *memo.BlogMintData:
		return rec.Minter
	case *memo.PostCreationData:
		return rec.Creator
	case *memo.PostBurnData:
		return rec.User
	case *memo.PostMintData:
		return rec.User
	case *memo.ProjectBurnData:
		return rec.Burner
	default:
		return ""
	}
}
