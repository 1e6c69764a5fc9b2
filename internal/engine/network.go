package engine

import (
	"context"

	"memo-engine-sol/internal/derive"
	"memo-engine-sol/internal/rpc"
)

// GetBalance 查询地址的 lamports 余额
func (e *Engine) GetBalance(ctx context.Context, address string) (uint64, error) {
	if _, err := derive.ParseAddress(address); err != nil {
		return 0, err
	}
	return e.client.GetBalance(ctx, address)
}

// GetVersion 查询所连节点的版本信息
func (e *Engine) GetVersion(ctx context.Context) (*rpc.VersionInfo, error) {
	return e.client.GetVersion(ctx)
}

// CurrentNetwork 返回引擎所在网络名
func (e *Engine) CurrentNetwork() string {
	return e.client.Network()
}
