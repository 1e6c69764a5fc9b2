package rpc

import (
	"errors"
	"fmt"
	"strings"
)

// Kind 是错误分类，调用方按分类决定重试/上报策略，不解析错误文本。
type Kind uint8

const (
	KindOther Kind = iota
	KindConnectionFailed
	KindInvalidAddress
	KindInvalidParameter
	KindTransactionFailed
	KindProtocolError
)

func (k Kind) String() string {
	switch k {
	case KindConnectionFailed:
		return "ConnectionFailed"
	case KindInvalidAddress:
		return "InvalidAddress"
	case KindInvalidParameter:
		return "InvalidParameter"
	case KindTransactionFailed:
		return "TransactionFailed"
	case KindProtocolError:
		return "ProtocolError"
	default:
		return "Other"
	}
}

// Error 是引擎对外的统一错误类型。
// Code 仅在 KindProtocolError 下有效（JSON-RPC 错误码）；
// Detail 是从模拟日志中提取的补充说明，可为空。
type Error struct {
	Kind    Kind
	Code    int64
	Message string
	Detail  string
}

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindConnectionFailed:
		b.WriteString("connection failed: ")
	case KindInvalidAddress:
		b.WriteString("invalid address: ")
	case KindInvalidParameter:
		b.WriteString("invalid parameter: ")
	case KindTransactionFailed:
		b.WriteString("transaction failed: ")
	case KindProtocolError:
		fmt.Fprintf(&b, "rpc error %d: ", e.Code)
	}
	b.WriteString(e.Message)
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}

func ConnectionFailedf(format string, args ...any) *Error {
	return &Error{Kind: KindConnectionFailed, Message: fmt.Sprintf(format, args...)}
}

func InvalidAddressf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidAddress, Message: fmt.Sprintf(format, args...)}
}

func InvalidParamf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidParameter, Message: fmt.Sprintf(format, args...)}
}

func TransactionFailedf(format string, args ...any) *Error {
	return &Error{Kind: KindTransactionFailed, Message: fmt.Sprintf(format, args...)}
}

// Protocolf 构造链上/节点侧错误，detail 可为空
func Protocolf(code int64, message, detail string) *Error {
	return &Error{Kind: KindProtocolError, Code: code, Message: message, Detail: detail}
}

func Otherf(format string, args ...any) *Error {
	return &Error{Kind: KindOther, Message: fmt.Sprintf(format, args...)}
}

// KindOf 返回 err 的分类；非 *Error 一律视为 Other。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// logErrMessageMarker 是合约运行时在失败日志中输出的标记，
// 其后跟随人类可读的失败原因。
const logErrMessageMarker = "Error Message:"

// ExtractLogDetail 在模拟日志中查找已知标记并返回其后的自由文本。
// 找不到时返回空串，永远不报错（日志格式不受本侧控制）。
func ExtractLogDetail(logs []string) string {
	for _, line := range logs {
		if idx := strings.Index(line, logErrMessageMarker); idx >= 0 {
			return strings.TrimSpace(line[idx+len(logErrMessageMarker):])
		}
	}
	return ""
}
