package memo

import (
	"encoding/base64"

	"github.com/near/borsh-go"

	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/rpc"
)

const maxChatMessageLen = 512

// ChatMessageData 与 memo-chat 合约的 send_memo_to_group 校验格式一致。
// 注意：聊天 memo 不走燃烧封包，borsh 序列化后直接 base64 上链。
type ChatMessageData struct {
	Version    uint8
	Category   string
	Operation  string
	GroupID    uint64
	Sender     string
	Message    string
	Receiver   *string
	ReplyToSig *string
}

func NewChatMessageData(groupID uint64, sender, message string, receiver, replyToSig *string) *ChatMessageData {
	return &ChatMessageData{
		Version:    RecordVersion,
		Category:   CategoryChat,
		Operation:  OpSendMessage,
		GroupID:    groupID,
		Sender:     sender,
		Message:    message,
		Receiver:   receiver,
		ReplyToSig: replyToSig,
	}
}

func (d ChatMessageData) Validate() error {
	if d.Message == "" {
		return rpc.InvalidParamf("message cannot be empty")
	}
	if len(d.Message) > maxChatMessageLen {
		return rpc.InvalidParamf("message too long: %d characters (max: %d)", len(d.Message), maxChatMessageLen)
	}
	return nil
}

// Encode 序列化并转 base64，长度窗口与封包域共用 [69, 800]
func (d *ChatMessageData) Encode() (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	raw, err := borsh.Serialize(*d)
	if err != nil {
		return "", rpc.Otherf("serialize chat message: %v", err)
	}
	text := base64.StdEncoding.EncodeToString(raw)
	if err := ValidateMemoLength(text, consts.MaxMemoLengthMint); err != nil {
		return "", err
	}
	return text, nil
}

// ParseChatMessage 解析链上聊天 memo。不是聊天格式时返回错误，调用方按跳过处理。
func ParseChatMessage(memoText string) (*ChatMessageData, error) {
	raw, err := base64.StdEncoding.DecodeString(memoText)
	if err != nil {
		return nil, rpc.Otherf("decode chat memo: %v", err)
	}
	var msg ChatMessageData
	if err := borsh.Deserialize(&msg, raw); err != nil {
		return nil, rpc.Otherf("deserialize chat memo: %v", err)
	}
	if msg.Category != CategoryChat || msg.Operation != OpSendMessage {
		return nil, rpc.Otherf("not a chat message memo: %s/%s", msg.Category, msg.Operation)
	}
	return &msg, nil
}
