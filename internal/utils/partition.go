package utils

import (
	"github.com/mr-tron/base58"
)

// PartitionForAddress 将 base58 地址稳定映射到 [0, mod) 分区，
// 同一燃烧者的事件总是落在同一分区，保证消费侧按地址有序。
// 取解码后 4 个固定位拼 uint32，非加密哈希，仅求分布均匀。
func PartitionForAddress(address string, mod uint32) uint32 {
	if mod == 0 {
		return 0
	}
	raw, err := base58.Decode(address)
	if err != nil || len(raw) < 28 {
		return 0
	}
	hash := uint32(raw[7])<<24 | uint32(raw[15])<<16 | uint32(raw[19])<<8 | uint32(raw[27])
	return hash % mod
}
