package memo

import (
	"strings"
	"unicode/utf8"

	"github.com/near/borsh-go"

	"memo-engine-sol/internal/parser"
)

// 附言分类。record 为已识别的结构化记录，text/opaque 为封包内的
// 自由文本或二进制，token 为代币转账的 JSON 附言。
const (
	MemoKindRecord = "record"
	MemoKindText   = "text"
	MemoKindToken  = "token"
	MemoKindOpaque = "opaque"
)

// ParsedMemo 是历史附言的分类结果
type ParsedMemo struct {
	Kind       string
	BurnAmount uint64 // 仅封包类有效
	Category   string
	Operation  string
	Record     interface{} // MemoKindRecord 时为对应 *Data 结构
	Text       string      // MemoKindText 时的明文
	Token      *TokenNote  // MemoKindToken 时的 JSON 附言
	Raw        []byte      // MemoKindOpaque 时的原始 payload
}

// StripMemoPrefix 去掉 getSignaturesForAddress 返回附言里的 "[N] " 字节数前缀
func StripMemoPrefix(s string) string {
	if !strings.HasPrefix(s, "[") {
		return s
	}
	end := strings.Index(s, "] ")
	if end < 1 {
		return s
	}
	for _, r := range s[1:end] {
		if r < '0' || r > '9' {
			return s
		}
	}
	return s[end+2:]
}

// ParseBurnMemo 尽力分类一条链上附言，永不失败：
// 无法识别的内容降级为 text 或 opaque。
func ParseBurnMemo(memoText string) *ParsedMemo {
	memoText = StripMemoPrefix(memoText)

	env, err := DecodeEnvelope(memoText)
	if err == nil {
		return classifyPayload(env)
	}

	if note, err := DecodeTokenNote(memoText); err == nil && note.Signature != "" {
		return &ParsedMemo{Kind: MemoKindToken, Token: note}
	}

	return &ParsedMemo{Kind: MemoKindText, Text: memoText}
}

func classifyPayload(env *BurnMemo) *ParsedMemo {
	out := &ParsedMemo{BurnAmount: env.BurnAmount}

	cur := parser.NewCursor(env.Payload)
	version, err := cur.U8("version")
	if err == nil && version == RecordVersion {
		category, cerr := cur.String("category")
		operation, oerr := cur.String("operation")
		if cerr == nil && oerr == nil {
			if rec := decodeRecord(category, operation, env.Payload); rec != nil {
				out.Kind = MemoKindRecord
				out.Category = category
				out.Operation = operation
				out.Record = rec
				return out
			}
		}
	}

	if utf8.Valid(env.Payload) {
		out.Kind = MemoKindText
		out.Text = string(env.Payload)
	} else {
		out.Kind = MemoKindOpaque
		out.Raw = env.Payload
	}
	return out
}

// decodeRecord 按 (category, operation) 反序列化完整记录，
// 未知组合或字节不匹配时返回 nil 交给上层降级。
func decodeRecord(category, operation string, payload []byte) interface{} {
	var rec interface{}
	switch category + "/" + operation {
	case CategoryProfile + "/" + OpCreateProfile:
		rec = &ProfileCreationData{}
	case CategoryProfile + "/" + OpUpdateProfile:
		rec = &ProfileUpdateData{}
	case CategoryBlog + "/" + OpCreateBlog:
		rec = &BlogCreationData{}
	case CategoryBlog + "/" + OpUpdateBlog:
		rec = &BlogUpdateData{}
	case CategoryBlog + "/" + OpBurnForBlog:
		rec = &BlogBurnData{}
	case CategoryBlog + "/" + OpMintForBlog:
		rec = &BlogMintData{}
	case CategoryForum + "/" + OpCreatePost:
		rec = &PostCreationData{}
	case CategoryForum + "/" + OpBurnForPost:
		rec = &PostBurnData{}
	case CategoryForum + "/" + OpMintForPost:
		rec = &PostMintData{}
	case CategoryProject + "/" + OpCreateProject:
		rec = &ProjectCreationData{}
	case CategoryProject + "/" + OpUpdateProject:
		rec = &ProjectUpdateData{}
	case CategoryProject + "/" + OpBurnForProject:
		rec = &ProjectBurnData{}
	default:
		return nil
	}
	if err := borsh.Deserialize(rec, payload); err != nil {
		return nil
	}
	return rec
}
