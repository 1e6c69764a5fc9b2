package utils

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// EncodeEvent 将事件编码为带类型前缀的二进制数据：
// - 前 4 字节为事件类型（uint32，小端序）
// - 后续为 JSON 序列化数据
func EncodeEvent(eventType uint32, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("EncodeEvent: marshal %T: %w", v, err)
	}

	buf := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(buf[:4], eventType)
	return append(buf, body...), nil
}

// DecodeEvent 拆出事件类型前缀，返回类型与 JSON 体
func DecodeEvent(data []byte) (uint32, []byte, error) {
	if len(data) < 4 {
		return 0, nil, fmt.Errorf("DecodeEvent: short event: %d bytes", len(data))
	}
	return binary.LittleEndian.Uint32(data[:4]), data[4:], nil
}
