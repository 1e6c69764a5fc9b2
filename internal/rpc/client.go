package rpc

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"memo-engine-sol/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// Endpoint 表示一个带权 RPC 节点。Weight <= 0 时按 1 处理。
type Endpoint struct {
	URL    string
	Weight int
}

// Client 是 JSON-RPC 2.0 HTTP 客户端。
// 每次调用独立随机选取节点（带权或均匀），不做会话粘滞，也不做透明重试；
// 批量操作的失败隔离由上层完成。
type Client struct {
	network     string
	endpoints   []Endpoint
	totalWeight int
	uniform     bool
	httpc       *http.Client
}

// NewClient 构造客户端。customEndpoint 非空（去除首尾空白后）时覆盖整个节点列表。
func NewClient(network string, endpoints []Endpoint, customEndpoint string, timeout time.Duration) (*Client, error) {
	if custom := strings.TrimSpace(customEndpoint); custom != "" {
		endpoints = []Endpoint{{URL: custom, Weight: 1}}
	}

	normalized := make([]Endpoint, 0, len(endpoints))
	for _, ep := range endpoints {
		url := strings.TrimSpace(ep.URL)
		if url == "" {
			continue
		}
		w := ep.Weight
		if w <= 0 {
			w = 1
		}
		normalized = append(normalized, Endpoint{URL: url, Weight: w})
	}
	if len(normalized) == 0 {
		return nil, InvalidParamf("no rpc endpoints configured for network %q", network)
	}

	total := 0
	uniform := true
	for _, ep := range normalized {
		total += ep.Weight
		if ep.Weight != normalized[0].Weight {
			uniform = false
		}
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		network:     network,
		endpoints:   normalized,
		totalWeight: total,
		uniform:     uniform,
		httpc:       &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Network() string {
	return c.network
}

// Endpoints 返回节点列表副本（测试与日志用）
func (c *Client) Endpoints() []Endpoint {
	out := make([]Endpoint, len(c.endpoints))
	copy(out, c.endpoints)
	return out
}

// pickEndpoint 按权重随机选取节点；所有权重相等时退化为均匀随机。
func (c *Client) pickEndpoint() string {
	if len(c.endpoints) == 1 {
		return c.endpoints[0].URL
	}
	if c.uniform {
		return c.endpoints[rand.Intn(len(c.endpoints))].URL
	}
	r := rand.Intn(c.totalWeight)
	for _, ep := range c.endpoints {
		r -= ep.Weight
		if r < 0 {
			return ep.URL
		}
	}
	return c.endpoints[len(c.endpoints)-1].URL
}

// nextRequestID 生成正的 int64 安全请求 ID。
// 优先用加密随机数；读取失败时退化为 时间戳*10000+随机尾数，保证仍然非零。
func nextRequestID() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err == nil {
		id := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
		if id != 0 {
			return id
		}
	}
	ts := uint64(time.Now().Unix()) % 10_000_000_000
	return ts*10_000 + uint64(rand.Intn(10_000))
}

// Call 发送一次 JSON-RPC 请求并把 result 解码到 out（out 可为 nil）。
// 错误分类：构包失败 → Other；网络/HTTP 层失败 → ConnectionFailed；
// 节点返回 error 对象 → ProtocolError；result 解码失败 → Other。
func (c *Client) Call(ctx context.Context, method string, params any, out any) error {
	req := rpcRequest{
		Jsonrpc: "2.0",
		ID:      nextRequestID(),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Otherf("marshal %s request: %v", method, err)
	}

	endpoint := c.pickEndpoint()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Otherf("build %s request: %v", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		logger.Warnf("[RpcClient] %s 请求失败: endpoint=%s err=%v", method, endpoint, err)
		return ConnectionFailedf("%s: %v", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return ConnectionFailedf("%s: read response: %v", method, err)
	}

	var envelope rpcEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode >= 400 {
			return ConnectionFailedf("%s: http status %d from %s", method, resp.StatusCode, endpoint)
		}
		return Otherf("%s: parse response: %v", method, err)
	}

	if envelope.Error != nil {
		return Protocolf(envelope.Error.Code, envelope.Error.Message, "")
	}

	if out != nil {
		if len(envelope.Result) == 0 {
			return Otherf("%s: empty result", method)
		}
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return Otherf("%s: parse result: %v", method, err)
		}
	}

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		logger.Warnf("[RpcClient] %s 耗时偏高: %v endpoint=%s", method, elapsed, endpoint)
	}
	return nil
}

// callWithValue 处理 {context, value} 外壳并返回 value
func callWithValue[T any](ctx context.Context, c *Client, method string, params any) (T, error) {
	var wrapped withContext[T]
	if err := c.Call(ctx, method, params, &wrapped); err != nil {
		var zero T
		return zero, err
	}
	return wrapped.Value, nil
}
