package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLatestBlockhash(t *testing.T) {
	srv := newTestServer(t, func(method string, params json.RawMessage) (any, *rpcErrorBody) {
		require.Equal(t, "getLatestBlockhash", method)
		var p []map[string]any
		require.NoError(t, json.Unmarshal(params, &p))
		require.Len(t, p, 1)
		assert.Equal(t, "confirmed", p[0]["commitment"])

		return map[string]any{
			"context": map[string]any{"slot": 12345},
			"value": map[string]any{
				"blockhash":            "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLyZtVvoCfyQV",
				"lastValidBlockHeight": 98765,
			},
		}, nil
	})
	defer srv.Close()

	got, err := newClientFor(t, srv).GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLyZtVvoCfyQV", got.Blockhash)
	assert.Equal(t, uint64(98765), got.LastValidBlockHeight)
}

func TestGetAccountInfo_Missing(t *testing.T) {
	srv := newTestServer(t, func(method string, _ json.RawMessage) (any, *rpcErrorBody) {
		return map[string]any{
			"context": map[string]any{"slot": 1},
			"value":   nil,
		}, nil
	})
	defer srv.Close()

	got, err := newClientFor(t, srv).GetAccountInfo(context.Background(), "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU")
	require.NoError(t, err)
	assert.Nil(t, got, "不存在的账户应返回 nil 而非错误")
}

func TestGetAccountInfo_DecodesBase64Data(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0xFF}
	srv := newTestServer(t, func(method string, params json.RawMessage) (any, *rpcErrorBody) {
		var p []json.RawMessage
		require.NoError(t, json.Unmarshal(params, &p))
		var opts map[string]any
		require.NoError(t, json.Unmarshal(p[1], &opts))
		assert.Equal(t, "base64", opts["encoding"])

		return map[string]any{
			"context": map[string]any{"slot": 1},
			"value": map[string]any{
				"lamports":   uint64(2039280),
				"owner":      "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb",
				"data":       []any{base64.StdEncoding.EncodeToString(raw), "base64"},
				"executable": false,
				"rentEpoch":  uint64(361),
			},
		}, nil
	})
	defer srv.Close()

	got, err := newClientFor(t, srv).GetAccountInfo(context.Background(), "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, raw, []byte(got.Data))
	assert.Equal(t, uint64(2039280), got.Lamports)
}

func TestGetSignaturesForAddress_ClampsLimit(t *testing.T) {
	var seenLimit float64
	srv := newTestServer(t, func(method string, params json.RawMessage) (any, *rpcErrorBody) {
		var p []json.RawMessage
		require.NoError(t, json.Unmarshal(params, &p))
		var opts map[string]any
		require.NoError(t, json.Unmarshal(p[1], &opts))
		seenLimit = opts["limit"].(float64)
		_, hasBefore := opts["before"]
		assert.False(t, hasBefore, "未传 before 时不应出现该字段")
		return []any{}, nil
	})
	defer srv.Close()

	c := newClientFor(t, srv)

	_, err := c.GetSignaturesForAddress(context.Background(), "addr", 5000, "")
	require.NoError(t, err)
	assert.Equal(t, float64(1000), seenLimit, "超限 limit 应收敛到 1000")

	_, err = c.GetSignaturesForAddress(context.Background(), "addr", 0, "")
	require.NoError(t, err)
	assert.Equal(t, float64(1), seenLimit, "非正 limit 应收敛到 1")
}

func TestGetSignaturesForAddress_ParsesEntries(t *testing.T) {
	memo := "[20] dGVzdA=="
	srv := newTestServer(t, func(method string, params json.RawMessage) (any, *rpcErrorBody) {
		var p []json.RawMessage
		require.NoError(t, json.Unmarshal(params, &p))
		var opts map[string]any
		require.NoError(t, json.Unmarshal(p[1], &opts))
		assert.Equal(t, "sigBefore", opts["before"])

		return []any{
			map[string]any{
				"signature": "sig1",
				"slot":      100,
				"err":       nil,
				"memo":      memo,
				"blockTime": 1700000000,
			},
			map[string]any{
				"signature": "sig2",
				"slot":      99,
				"err":       map[string]any{"InstructionError": []any{0, "Custom"}},
				"memo":      nil,
				"blockTime": nil,
			},
		}, nil
	})
	defer srv.Close()

	got, err := newClientFor(t, srv).GetSignaturesForAddress(context.Background(), "addr", 10, "sigBefore")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.False(t, got[0].Failed())
	require.NotNil(t, got[0].Memo)
	assert.Equal(t, memo, *got[0].Memo)
	require.NotNil(t, got[0].BlockTime)
	assert.Equal(t, int64(1700000000), *got[0].BlockTime)

	assert.True(t, got[1].Failed(), "err 非 null 应判定为失败")
	assert.Nil(t, got[1].Memo)
}

func TestSimulateTransaction_UnitsConsumed(t *testing.T) {
	var sawOpts map[string]any
	srv := newTestServer(t, func(method string, params json.RawMessage) (any, *rpcErrorBody) {
		var p []json.RawMessage
		require.NoError(t, json.Unmarshal(params, &p))
		require.NoError(t, json.Unmarshal(p[1], &sawOpts))
		return map[string]any{
			"context": map[string]any{"slot": 7},
			"value": map[string]any{
				"err":           nil,
				"logs":          []string{"Program log: ok"},
				"unitsConsumed": 84213,
			},
		}, nil
	})
	defer srv.Close()

	got, err := newClientFor(t, srv).SimulateTransaction(context.Background(), "dHg=")
	require.NoError(t, err)
	require.NotNil(t, got.UnitsConsumed)
	assert.Equal(t, uint64(84213), *got.UnitsConsumed)
	assert.False(t, got.Failed())

	// 模拟参数必须允许未签名交易
	assert.Equal(t, true, sawOpts["replaceRecentBlockhash"])
	assert.Equal(t, false, sawOpts["sigVerify"])
	assert.Equal(t, "confirmed", sawOpts["commitment"])
}

func TestSimulateTransaction_NoUnits(t *testing.T) {
	srv := newTestServer(t, func(string, json.RawMessage) (any, *rpcErrorBody) {
		return map[string]any{
			"context": map[string]any{"slot": 7},
			"value": map[string]any{
				"err":  nil,
				"logs": []string{},
			},
		}, nil
	})
	defer srv.Close()

	got, err := newClientFor(t, srv).SimulateTransaction(context.Background(), "dHg=")
	require.NoError(t, err)
	assert.Nil(t, got.UnitsConsumed, "节点未返回时应保持 nil")
}

func TestSendTransaction(t *testing.T) {
	srv := newTestServer(t, func(method string, params json.RawMessage) (any, *rpcErrorBody) {
		require.Equal(t, "sendTransaction", method)
		var p []json.RawMessage
		require.NoError(t, json.Unmarshal(params, &p))
		var opts map[string]any
		require.NoError(t, json.Unmarshal(p[1], &opts))
		assert.Equal(t, false, opts["skipPreflight"])
		assert.Equal(t, "confirmed", opts["preflightCommitment"])
		assert.Equal(t, float64(3), opts["maxRetries"])
		return "5VERYrealSignature", nil
	})
	defer srv.Close()

	sig, err := newClientFor(t, srv).SendTransaction(context.Background(), "dHg=")
	require.NoError(t, err)
	assert.Equal(t, "5VERYrealSignature", sig)
}

func TestGetTransaction_ParsedMemo(t *testing.T) {
	srv := newTestServer(t, func(method string, params json.RawMessage) (any, *rpcErrorBody) {
		require.Equal(t, "getTransaction", method)
		var p []json.RawMessage
		require.NoError(t, json.Unmarshal(params, &p))
		var opts map[string]any
		require.NoError(t, json.Unmarshal(p[1], &opts))
		assert.Equal(t, "jsonParsed", opts["encoding"])
		assert.Equal(t, float64(0), opts["maxSupportedTransactionVersion"])

		return map[string]any{
			"slot":      22001,
			"blockTime": 1700001234,
			"meta":      map[string]any{"err": nil, "fee": 5000},
			"transaction": map[string]any{
				"signatures": []string{"sigChat1"},
				"message": map[string]any{
					"instructions": []any{
						map[string]any{"programId": "ComputeBudget111111111111111111111111111111"},
						map[string]any{
							"program":   "spl-memo",
							"programId": "MemoSq4gqABAXKb96qnH8TysNcWxMyWxNVimRaJNdXuY",
							"parsed":    "aGVsbG8gd29ybGQ=",
						},
					},
				},
			},
		}, nil
	})
	defer srv.Close()

	got, err := newClientFor(t, srv).GetTransaction(context.Background(), "sigChat1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Failed())
	require.NotNil(t, got.BlockTime)
	assert.Equal(t, int64(1700001234), *got.BlockTime)

	ixs := got.Transaction.Message.Instructions
	require.Len(t, ixs, 2)
	_, ok := ixs[0].MemoText()
	assert.False(t, ok, "非 memo 指令不应解出文本")
	text, ok := ixs[1].MemoText()
	require.True(t, ok)
	assert.Equal(t, "aGVsbG8gd29ybGQ=", text)
}

func TestGetTransaction_NotFound(t *testing.T) {
	srv := newTestServer(t, func(string, json.RawMessage) (any, *rpcErrorBody) {
		return nil, nil
	})
	defer srv.Close()

	got, err := newClientFor(t, srv).GetTransaction(context.Background(), "missingSig")
	require.NoError(t, err)
	assert.Nil(t, got, "不存在的交易应返回 nil 而非错误")
}

func TestGetProgramAccounts_DataSizeFilter(t *testing.T) {
	srv := newTestServer(t, func(method string, params json.RawMessage) (any, *rpcErrorBody) {
		var p []json.RawMessage
		require.NoError(t, json.Unmarshal(params, &p))
		var opts map[string]any
		require.NoError(t, json.Unmarshal(p[1], &opts))
		filters := opts["filters"].([]any)
		require.Len(t, filters, 1)
		assert.Equal(t, float64(65), filters[0].(map[string]any)["dataSize"])

		return []any{
			map[string]any{
				"pubkey": "StatsAccount111",
				"account": map[string]any{
					"lamports": 1,
					"owner":    "prog",
					"data":     []any{base64.StdEncoding.EncodeToString(make([]byte, 65)), "base64"},
				},
			},
		}, nil
	})
	defer srv.Close()

	got, err := newClientFor(t, srv).GetProgramAccounts(context.Background(), "prog", 65)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "StatsAccount111", got[0].Pubkey)
	assert.Len(t, []byte(got[0].Account.Data), 65)
}
