package memo

import (
	"encoding/json"
	"strings"

	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/rpc"
)

// TokenNote 是代币转账附言的明文 JSON 结构，不走 borsh 封包。
// 链上按 JSON 文本原样存储，长度窗口同样按文本计。
type TokenNote struct {
	Signature string `json:"signature"`
	Message   string `json:"message"`
}

// EncodeTokenNote 生成代币转账附言。JSON 文本不足最小长度时在 message
// 尾部补空格凑齐（空格在 JSON 里恰好一字节，补齐量可精确计算）。
func EncodeTokenNote(signature, message string) (string, error) {
	note := TokenNote{Signature: signature, Message: message}
	encoded, err := json.Marshal(&note)
	if err != nil {
		return "", rpc.Otherf("marshal token note: %v", err)
	}
	if deficit := consts.MinMemoLength - len(encoded); deficit > 0 {
		note.Message = message + strings.Repeat(" ", deficit)
		encoded, err = json.Marshal(&note)
		if err != nil {
			return "", rpc.Otherf("marshal token note: %v", err)
		}
	}
	text := string(encoded)
	if err := ValidateMemoLength(text, consts.MaxMemoLengthToken); err != nil {
		return "", err
	}
	return text, nil
}

// DecodeTokenNote 解析代币转账附言，去掉补齐用的尾部空格。
func DecodeTokenNote(text string) (*TokenNote, error) {
	var note TokenNote
	if err := json.Unmarshal([]byte(text), &note); err != nil {
		return nil, rpc.InvalidParamf("invalid token note json: %v", err)
	}
	note.Message = strings.TrimRight(note.Message, " ")
	return &note, nil
}
