package parser

import (
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
)

// Truncated 表示账户数据在某字段处被截断
type Truncated struct {
	Field string
	Want  int
	Have  int
}

func (e *Truncated) Error() string {
	return fmt.Sprintf("account data truncated at %s: need %d bytes, have %d", e.Field, e.Want, e.Have)
}

// Cursor 从左到右消费原始账户字节。所有读取方法带上字段名，
// 越界时返回 *Truncated 指明具体字段，绝不 panic。
type Cursor struct {
	data []byte
	off  int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Remaining 返回未消费的字节数
func (c *Cursor) Remaining() int {
	return len(c.data) - c.off
}

// Offset 返回当前读取位置
func (c *Cursor) Offset() int {
	return c.off
}

func (c *Cursor) take(field string, n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, &Truncated{Field: field, Want: n, Have: c.Remaining()}
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

// Skip 跳过 n 字节（例如 anchor 账户判别前缀）
func (c *Cursor) Skip(field string, n int) error {
	_, err := c.take(field, n)
	return err
}

func (c *Cursor) U8(field string) (uint8, error) {
	b, err := c.take(field, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) Bool(field string) (bool, error) {
	v, err := c.U8(field)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (c *Cursor) U32(field string) (uint32, error) {
	b, err := c.take(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) U64(field string) (uint64, error) {
	b, err := c.take(field, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *Cursor) I64(field string) (int64, error) {
	v, err := c.U64(field)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

func (c *Cursor) Bytes(field string, n int) ([]byte, error) {
	b, err := c.take(field, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// PubKey 读 32 字节并转 base58
func (c *Cursor) PubKey(field string) (string, error) {
	b, err := c.take(field, 32)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

// String 读 borsh 字符串：u32 小端长度 + UTF-8 字节
func (c *Cursor) String(field string) (string, error) {
	n, err := c.U32(field)
	if err != nil {
		return "", err
	}
	b, err := c.take(field, int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// OptionString 读 borsh Option<String>：标志位 0 为 None
func (c *Cursor) OptionString(field string) (*string, error) {
	present, err := c.Bool(field)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	s, err := c.String(field)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// OptionU64 读 borsh Option<u64>
func (c *Cursor) OptionU64(field string) (*uint64, error) {
	present, err := c.Bool(field)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	v, err := c.U64(field)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
