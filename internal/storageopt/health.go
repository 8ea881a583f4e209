package storageopt

import (
	"context"
	"time"
)

// DefaultHealthTimeout 默认健康检查超时时间。
const DefaultHealthTimeout = 5 * time.Second

// HealthContext 创建带健康检查超时的 context。
// timeout <= 0 时返回原 context 和空 cancel。
//
//	ctx, cancel := storageopt.HealthContext(ctx, timeout)
//	defer cancel()
func HealthContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// OperationContext 在调用方未设置 deadline 且 timeout > 0 时附加超时。
func OperationContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
