package rpc

import (
	"context"
)

// 各方法的 commitment 统一取 confirmed，与链上合约交互的最低可见性要求一致。
const commitmentConfirmed = "confirmed"

// 签名历史单次查询的节点硬上限
const maxSignatureLimit = 1000

// GetLatestBlockhash 获取最近区块哈希
func (c *Client) GetLatestBlockhash(ctx context.Context) (*BlockhashResult, error) {
	params := []any{map[string]any{"commitment": commitmentConfirmed}}
	value, err := callWithValue[BlockhashResult](ctx, c, "getLatestBlockhash", params)
	if err != nil {
		return nil, err
	}
	if value.Blockhash == "" {
		return nil, Otherf("getLatestBlockhash: empty blockhash in response")
	}
	return &value, nil
}

// GetBalance 查询地址余额（lamports）
func (c *Client) GetBalance(ctx context.Context, address string) (uint64, error) {
	params := []any{address, map[string]any{"commitment": commitmentConfirmed}}
	return callWithValue[uint64](ctx, c, "getBalance", params)
}

// GetVersion 查询节点版本
func (c *Client) GetVersion(ctx context.Context) (*VersionInfo, error) {
	var out VersionInfo
	if err := c.Call(ctx, "getVersion", []any{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAccountInfo 查询单个账户，账户不存在时返回 (nil, nil)。
func (c *Client) GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	params := []any{address, map[string]any{
		"encoding":   "base64",
		"commitment": commitmentConfirmed,
	}}
	return callWithValue[*AccountInfo](ctx, c, "getAccountInfo", params)
}

// GetMultipleAccounts 批量查询账户，结果与输入位置一一对应，缺失账户为 nil。
func (c *Client) GetMultipleAccounts(ctx context.Context, addresses []string) ([]*AccountInfo, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	params := []any{addresses, map[string]any{
		"encoding":   "base64",
		"commitment": commitmentConfirmed,
	}}
	return callWithValue[[]*AccountInfo](ctx, c, "getMultipleAccounts", params)
}

// GetSignaturesForAddress 查询地址的签名历史（新到旧）。
// limit 被收敛到 [1, 1000]；before 非空时从该签名之前开始翻页。
func (c *Client) GetSignaturesForAddress(ctx context.Context, address string, limit int, before string) ([]SignatureInfo, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxSignatureLimit {
		limit = maxSignatureLimit
	}
	opts := map[string]any{
		"limit":      limit,
		"commitment": commitmentConfirmed,
	}
	if before != "" {
		opts["before"] = before
	}
	var out []SignatureInfo
	if err := c.Call(ctx, "getSignaturesForAddress", []any{address, opts}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProgramAccounts 按 dataSize 过滤查询某程序名下的全部账户。
// dataSize <= 0 时不加过滤条件。
func (c *Client) GetProgramAccounts(ctx context.Context, program string, dataSize int) ([]KeyedAccount, error) {
	opts := map[string]any{
		"encoding":   "base64",
		"commitment": commitmentConfirmed,
	}
	if dataSize > 0 {
		opts["filters"] = []any{map[string]any{"dataSize": dataSize}}
	}
	var out []KeyedAccount
	if err := c.Call(ctx, "getProgramAccounts", []any{program, opts}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransaction 按签名查询已确认交易（jsonParsed 编码），交易不存在时返回 (nil, nil)。
// maxSupportedTransactionVersion=0 兼容 v0 版本交易，否则节点对新版交易直接报错。
func (c *Client) GetTransaction(ctx context.Context, signature string) (*TransactionResult, error) {
	params := []any{signature, map[string]any{
		"encoding":                       "jsonParsed",
		"commitment":                     commitmentConfirmed,
		"maxSupportedTransactionVersion": 0,
	}}
	var out *TransactionResult
	if err := c.Call(ctx, "getTransaction", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SimulateTransaction 模拟执行 base64 编码的交易。
// replaceRecentBlockhash + sigVerify=false 允许未签名交易直接模拟。
func (c *Client) SimulateTransaction(ctx context.Context, txBase64 string) (*SimulationResult, error) {
	params := []any{txBase64, map[string]any{
		"encoding":               "base64",
		"commitment":             commitmentConfirmed,
		"replaceRecentBlockhash": true,
		"sigVerify":              false,
	}}
	value, err := callWithValue[SimulationResult](ctx, c, "simulateTransaction", params)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// SendTransaction 广播已签名的 base64 交易，返回签名。
func (c *Client) SendTransaction(ctx context.Context, signedTxBase64 string) (string, error) {
	params := []any{signedTxBase64, map[string]any{
		"encoding":            "base64",
		"preflightCommitment": commitmentConfirmed,
		"skipPreflight":       false,
		"maxRetries":          3,
	}}
	var signature string
	if err := c.Call(ctx, "sendTransaction", params, &signature); err != nil {
		return "", err
	}
	if signature == "" {
		return "", Otherf("sendTransaction: empty signature in response")
	}
	return signature, nil
}
