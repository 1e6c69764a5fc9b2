package engine

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/blocto/solana-go-sdk/types"

	"memo-engine-sol/internal/rpc"
	"memo-engine-sol/internal/txbuild"
	"memo-engine-sol/pkg/logger"
)

// Signer 抽象签名方。引擎只经手未签名交易，私钥始终留在实现侧
// （本地密钥、硬件钱包、远端签名服务均可）。
type Signer interface {
	PublicKey() string
	// SignTransaction 接收零签名占位的 base64 交易，返回可广播的 base64 交易
	SignTransaction(unsignedTxBase64 string) (string, error)
}

// SignAndSend 请签名方对已组装交易签名并广播，返回交易签名
func (e *Engine) SignAndSend(ctx context.Context, signer Signer, prepared *txbuild.Prepared) (string, error) {
	if prepared == nil || prepared.Unsigned == nil {
		return "", rpc.InvalidParamf("nothing to send: empty prepared transaction")
	}

	signed, err := signer.SignTransaction(prepared.Unsigned.Base64)
	if err != nil {
		var re *rpc.Error
		if errors.As(err, &re) {
			return "", err
		}
		return "", rpc.Otherf("sign %s: %v", prepared.Name, err)
	}

	sig, err := e.client.SendTransaction(ctx, signed)
	if err != nil {
		return "", err
	}
	logger.Infof("[Engine] %s sent: %s", prepared.Name, sig)
	return sig, nil
}

// LocalSigner 用内存私钥签名，适合服务端托管与测试场景。
// 只支持单签名交易（费付方即唯一签名者）。
type LocalSigner struct {
	account types.Account
}

func NewLocalSigner(secretKey []byte) (*LocalSigner, error) {
	acc, err := types.AccountFromBytes(secretKey)
	if err != nil {
		return nil, rpc.InvalidParamf("invalid secret key: %v", err)
	}
	return &LocalSigner{account: acc}, nil
}

func NewLocalSignerFromBase58(secretKey string) (*LocalSigner, error) {
	acc, err := types.AccountFromBase58(secretKey)
	if err != nil {
		return nil, rpc.InvalidParamf("invalid base58 secret key: %v", err)
	}
	return &LocalSigner{account: acc}, nil
}

func (s *LocalSigner) PublicKey() string {
	return s.account.PublicKey.ToBase58()
}

// SignTransaction 解开零签名占位交易，对消息体签名后原位重组
func (s *LocalSigner) SignTransaction(unsignedTxBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(unsignedTxBase64)
	if err != nil {
		return "", rpc.InvalidParamf("unsigned transaction is not valid base64: %v", err)
	}

	numSigs, headerLen, err := readCompactU16(raw)
	if err != nil {
		return "", err
	}
	if numSigs != 1 {
		return "", rpc.InvalidParamf("local signer handles single-signature transactions, this one needs %d", numSigs)
	}
	body := headerLen + 64*numSigs
	if len(raw) <= body {
		return "", rpc.InvalidParamf("unsigned transaction truncated: %d bytes", len(raw))
	}

	message := raw[body:]
	sig := s.account.Sign(message)

	out := make([]byte, 0, len(raw))
	out = append(out, raw[:headerLen]...)
	out = append(out, sig...)
	out = append(out, message...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// readCompactU16 解析交易头部的 shortvec 变长整数，返回值与占用字节数
func readCompactU16(b []byte) (int, int, error) {
	value, shift := 0, 0
	for i := 0; i < len(b); i++ {
		n := int(b[i])
		value |= (n & 0x7f) << shift
		if n < 0x80 {
			return value, i + 1, nil
		}
		shift += 7
		if shift > 14 {
			break
		}
	}
	return 0, 0, rpc.InvalidParamf("malformed transaction signature header")
}
