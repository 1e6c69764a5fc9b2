package memo

import (
	"encoding/base64"

	"github.com/near/borsh-go"

	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/rpc"
)

// BurnMemo 是所有结构化 memo 的外层封包，borsh 序列化后再 base64。
// base64 文本即 memo 指令的数据，合约按同样格式校验 burn_amount 一致性。
type BurnMemo struct {
	Version    uint8
	BurnAmount uint64
	Payload    []byte
}

// EncodeEnvelope 将 payload 封包并编码为 memo 文本。
// 长度窗口作用在编码后的 base64 文本上：[69, 800]。
func EncodeEnvelope(burnAmount uint64, payload []byte) (string, error) {
	if len(payload) > consts.MaxPayloadLength {
		return "", rpc.InvalidParamf("payload too long: %d bytes (max: %d)", len(payload), consts.MaxPayloadLength)
	}

	envelope := BurnMemo{
		Version:    consts.BurnMemoVersion,
		BurnAmount: burnAmount,
		Payload:    payload,
	}
	raw, err := borsh.Serialize(envelope)
	if err != nil {
		return "", rpc.Otherf("serialize burn memo: %v", err)
	}

	text := base64.StdEncoding.EncodeToString(raw)
	if err := ValidateMemoLength(text, consts.MaxMemoLengthMint); err != nil {
		return "", err
	}
	return text, nil
}

// DecodeEnvelope 还原 memo 文本。
// 该路径处理链上第三方数据，所有异常都以错误返回，绝不 panic。
func DecodeEnvelope(memoText string) (*BurnMemo, error) {
	raw, err := base64.StdEncoding.DecodeString(memoText)
	if err != nil {
		return nil, rpc.InvalidParamf("memo is not valid base64: %v", err)
	}

	var envelope BurnMemo
	if err := borsh.Deserialize(&envelope, raw); err != nil {
		return nil, rpc.InvalidParamf("memo envelope truncated or malformed: %v", err)
	}
	if envelope.Version != consts.BurnMemoVersion {
		return nil, rpc.InvalidParamf("unsupported memo version: %d (expected: %d)", envelope.Version, consts.BurnMemoVersion)
	}
	return &envelope, nil
}

// ValidateMemoLength 校验 memo 文本长度落在 [MinMemoLength, max] 内
func ValidateMemoLength(memoText string, max int) error {
	n := len(memoText)
	if n < consts.MinMemoLength {
		return rpc.InvalidParamf("memo too short: %d bytes (minimum: %d)", n, consts.MinMemoLength)
	}
	if n > max {
		return rpc.InvalidParamf("memo too long: %d bytes (maximum: %d)", n, max)
	}
	return nil
}
