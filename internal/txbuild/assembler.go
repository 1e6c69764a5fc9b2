package txbuild

import (
	"encoding/base64"

	"github.com/blocto/solana-go-sdk/common"
	cmptbdg "github.com/blocto/solana-go-sdk/program/compute_budget"
	memoprog "github.com/blocto/solana-go-sdk/program/memo"
	"github.com/blocto/solana-go-sdk/types"

	"memo-engine-sol/internal/rpc"
)

// Instructions 按固定顺序组装指令序列：附言恒在 0 位，业务指令随后，
// CU 限额指令置尾，设置了单价时再跟一条价格指令。
// 模拟与最终交易共用本函数，两轮指令形状完全一致，只差限额数值。
func Instructions(feePayer common.PublicKey, memoText string, program []types.Instruction, unitLimit uint32, priceMicroLamports uint64) []types.Instruction {
	ixs := make([]types.Instruction, 0, len(program)+3)
	if memoText != "" {
		ixs = append(ixs, memoprog.BuildMemo(memoprog.BuildMemoParam{
			SignerPubkeys: []common.PublicKey{feePayer},
			Memo:          []byte(memoText),
		}))
	}
	ixs = append(ixs, program...)
	if unitLimit > 0 {
		ixs = append(ixs, cmptbdg.SetComputeUnitLimit(cmptbdg.SetComputeUnitLimitParam{
			Units: unitLimit,
		}))
		if priceMicroLamports > 0 {
			ixs = append(ixs, cmptbdg.SetComputeUnitPrice(cmptbdg.SetComputeUnitPriceParam{
				MicroLamports: priceMicroLamports,
			}))
		}
	}
	return ixs
}

// Unsigned 是一笔零签名占位的完整交易。
// MessageRaw 给外部签名器用，Base64 可直接送 simulateTransaction。
type Unsigned struct {
	MessageRaw  []byte
	Base64      string
	NumRequired int
}

// BuildUnsigned 编译消息并按所需签名数填零占位。
// simulateTransaction 配合 sigVerify=false 接受这种形式。
func BuildUnsigned(feePayer common.PublicKey, recentBlockhash string, ixs []types.Instruction) (*Unsigned, error) {
	msg := types.NewMessage(types.NewMessageParam{
		FeePayer:        feePayer,
		Instructions:    ixs,
		RecentBlockhash: recentBlockhash,
	})
	raw, err := msg.Serialize()
	if err != nil {
		return nil, rpc.Otherf("serialize message: %v", err)
	}
	numRequired := int(msg.Header.NumRequireSignatures)

	buf := make([]byte, 0, 1+64*numRequired+len(raw))
	buf = appendCompactU16(buf, numRequired)
	buf = append(buf, make([]byte, 64*numRequired)...)
	buf = append(buf, raw...)

	return &Unsigned{
		MessageRaw:  raw,
		Base64:      base64.StdEncoding.EncodeToString(buf),
		NumRequired: numRequired,
	}, nil
}

// WithSignatures 把外部产生的签名拼回交易，返回可直接广播的 base64
func (u *Unsigned) WithSignatures(sigs [][]byte) (string, error) {
	if len(sigs) != u.NumRequired {
		return "", rpc.InvalidParamf("signature count mismatch: got %d, need %d", len(sigs), u.NumRequired)
	}
	buf := make([]byte, 0, 1+64*len(sigs)+len(u.MessageRaw))
	buf = appendCompactU16(buf, len(sigs))
	for i, sig := range sigs {
		if len(sig) != 64 {
			return "", rpc.InvalidParamf("signature %d has %d bytes (expected 64)", i, len(sig))
		}
		buf = append(buf, sig...)
	}
	buf = append(buf, u.MessageRaw...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// appendCompactU16 是交易线格式里的变长整数（shortvec）
func appendCompactU16(b []byte, v int) []byte {
	for {
		if v < 0x80 {
			return append(b, byte(v))
		}
		b = append(b, byte(v&0x7f|0x80))
		v >>= 7
	}
}
