package derive

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/mr-tron/base58"

	"memo-engine-sol/internal/rpc"
)

// ParseAddress 校验并解析 base58 地址。
// common.PublicKeyFromString 对非法输入静默返回零值，入口参数一律走这里。
func ParseAddress(s string) (common.PublicKey, error) {
	if s == "" {
		return common.PublicKey{}, rpc.InvalidAddressf("empty address")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return common.PublicKey{}, rpc.InvalidAddressf("invalid base58 address %q: %v", s, err)
	}
	if len(raw) != 32 {
		return common.PublicKey{}, rpc.InvalidAddressf("invalid address %q: decoded to %d bytes (expected 32)", s, len(raw))
	}
	return common.PublicKeyFromBytes(raw), nil
}
