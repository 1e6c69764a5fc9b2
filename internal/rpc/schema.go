package rpc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// JSON-RPC 2.0 报文结构。所有响应按方法各自的 schema 解码，不做树状查找。

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcEnvelope struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcErrorBody   `json:"error"`
}

type rpcErrorBody struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

// withContext 包装 getXxx 系列响应里的 {context, value} 外壳
type withContext[T any] struct {
	Context rpcContext `json:"context"`
	Value   T          `json:"value"`
}

// accountData 解码 ["<base64>", "base64"] 形式的账户数据字段
type accountData []byte

func (d *accountData) UnmarshalJSON(b []byte) error {
	var tuple []string
	if err := json.Unmarshal(b, &tuple); err != nil {
		// 老节点可能直接返回 base58 字符串，不支持该形式
		return fmt.Errorf("account data: expected [data, encoding] tuple: %w", err)
	}
	if len(tuple) == 0 {
		*d = nil
		return nil
	}
	if len(tuple) >= 2 && tuple[1] != "base64" {
		return fmt.Errorf("account data: unsupported encoding %q", tuple[1])
	}
	raw, err := base64.StdEncoding.DecodeString(tuple[0])
	if err != nil {
		return fmt.Errorf("account data: bad base64: %w", err)
	}
	*d = raw
	return nil
}

// AccountInfo 是 getAccountInfo / getMultipleAccounts 的账户视图
type AccountInfo struct {
	Lamports   uint64      `json:"lamports"`
	Owner      string      `json:"owner"`
	Data       accountData `json:"data"`
	Executable bool        `json:"executable"`
	RentEpoch  uint64      `json:"rentEpoch"`
}

// KeyedAccount 是 getProgramAccounts 的条目
type KeyedAccount struct {
	Pubkey  string      `json:"pubkey"`
	Account AccountInfo `json:"account"`
}

// BlockhashResult 是 getLatestBlockhash 的结果
type BlockhashResult struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
	Slot                 uint64 `json:"-"`
}

// SignatureInfo 是 getSignaturesForAddress 的条目。
// Err 保留原始 JSON：非 null 表示链上执行失败，结构因错误类型而异。
type SignatureInfo struct {
	Signature          string          `json:"signature"`
	Slot               uint64          `json:"slot"`
	Err                json.RawMessage `json:"err"`
	Memo               *string         `json:"memo"`
	BlockTime          *int64          `json:"blockTime"`
	ConfirmationStatus string          `json:"confirmationStatus"`
}

// Failed 判断该笔交易链上执行是否失败
func (s *SignatureInfo) Failed() bool {
	return len(s.Err) > 0 && string(s.Err) != "null"
}

// SimulationResult 是 simulateTransaction 的结果。
// UnitsConsumed 为 nil 表示节点未返回消耗量（旧版本节点或模拟提前失败）。
type SimulationResult struct {
	Err           json.RawMessage `json:"err"`
	Logs          []string        `json:"logs"`
	UnitsConsumed *uint64         `json:"unitsConsumed"`
}

// Failed 判断模拟执行是否失败
func (r *SimulationResult) Failed() bool {
	return len(r.Err) > 0 && string(r.Err) != "null"
}

// VersionInfo 是 getVersion 的结果
type VersionInfo struct {
	SolanaCore string `json:"solana-core"`
	FeatureSet uint64 `json:"feature-set"`
}

// ParsedInstruction 是 jsonParsed 编码下的单条指令。
// 节点认识的程序（spl-memo、system 等）带 Program 名与解析结果 Parsed；
// 其余程序只有 ProgramID 和原始字段，Parsed 为空。
type ParsedInstruction struct {
	Program   string          `json:"program"`
	ProgramID string          `json:"programId"`
	Parsed    json.RawMessage `json:"parsed"`
}

// MemoText 提取 spl-memo 指令的文本。
// jsonParsed 下 memo 的 parsed 字段是一个裸 JSON 字符串。
func (ix *ParsedInstruction) MemoText() (string, bool) {
	if ix.Program != "spl-memo" || len(ix.Parsed) == 0 {
		return "", false
	}
	var text string
	if err := json.Unmarshal(ix.Parsed, &text); err != nil {
		return "", false
	}
	return text, true
}

// ParsedMessage 是 jsonParsed 编码下的交易消息体
type ParsedMessage struct {
	Instructions []ParsedInstruction `json:"instructions"`
}

// ParsedTransaction 是 jsonParsed 编码下的交易体
type ParsedTransaction struct {
	Signatures []string      `json:"signatures"`
	Message    ParsedMessage `json:"message"`
}

// TransactionMeta 是交易执行元数据，Err 语义同 SignatureInfo.Err
type TransactionMeta struct {
	Err json.RawMessage `json:"err"`
	Fee uint64          `json:"fee"`
}

// TransactionResult 是 getTransaction（jsonParsed 编码）的结果
type TransactionResult struct {
	Slot        uint64            `json:"slot"`
	BlockTime   *int64            `json:"blockTime"`
	Meta        *TransactionMeta  `json:"meta"`
	Transaction ParsedTransaction `json:"transaction"`
}

// Failed 判断该笔交易链上执行是否失败
func (t *TransactionResult) Failed() bool {
	return t.Meta != nil && len(t.Meta.Err) > 0 && string(t.Meta.Err) != "null"
}
