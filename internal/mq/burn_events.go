package mq

import (
	"fmt"

	"memo-engine-sol/internal/utils"
)

// EventTypeBurn 燃烧事件的编码类型号（消费端按 4 字节前缀分发）
const EventTypeBurn uint32 = 1

// BurnEvent 已确认的代币燃烧事件，发布到 burn topic
type BurnEvent struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
	BlockTime int64  `json:"block_time"`
	Burner    string `json:"burner"`
	Amount    uint64 `json:"amount"`
	Kind      string `json:"kind"` // profile / blog / post / project / memo ...
}

// BuildBurnJobs 把燃烧事件编码成 KafkaJob。
// 分区按 Burner 地址哈希取模，同一燃烧者的事件落在同一分区，消费端天然有序。
func BuildBurnJobs(topic string, partitions int32, events []BurnEvent) ([]*KafkaJob, error) {
	if topic == "" {
		return nil, fmt.Errorf("burn topic is empty")
	}
	if partitions <= 0 {
		partitions = 1
	}

	jobs := make([]*KafkaJob, 0, len(events))
	for i := range events {
		data, err := utils.EncodeEvent(EventTypeBurn, events[i])
		if err != nil {
			return nil, fmt.Errorf("encode burn event %s: %w", events[i].Signature, err)
		}
		jobs = append(jobs, &KafkaJob{
			Topic:     topic,
			Partition: int32(utils.PartitionForAddress(events[i].Burner, uint32(partitions))),
			Value:     data,
		})
	}
	return jobs, nil
}
