package xmongo

import (
	"context"
	"time"

	"github.com/omeyang/shopcache/internal/storageopt"
	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/observability/xmetrics"
)

// SlowQueryInfo 慢查询信息。
type SlowQueryInfo struct {
	Database   string
	Collection string
	Operation  string

	// Filter 原始查询条件，写日志时注意脱敏。
	Filter any

	Duration time.Duration
}

// SlowQueryHook 慢查询钩子，在请求路径上同步执行。
type SlowQueryHook = storageopt.SlowQueryHook[SlowQueryInfo]

// Options 包装器选项。
type Options = storageopt.BaseOptions[SlowQueryInfo]

// Option 配置 Options。
type Option = storageopt.OptionFunc[SlowQueryInfo]

// DefaultQueryTimeout 查询兜底超时。
const DefaultQueryTimeout = 10 * time.Second

func defaultOptions() Options {
	o := storageopt.DefaultBaseOptions[SlowQueryInfo]()
	o.QueryTimeout = DefaultQueryTimeout
	return o
}

// WithHealthTimeout 设置健康检查超时。
func WithHealthTimeout(d time.Duration) Option {
	return storageopt.WithHealthTimeout[SlowQueryInfo](d)
}

// WithQueryTimeout 设置查询兜底超时，0 表示不设置。
func WithQueryTimeout(d time.Duration) Option {
	return storageopt.WithQueryTimeout[SlowQueryInfo](d)
}

// WithSlowQueryThreshold 设置慢查询阈值，0 禁用。
func WithSlowQueryThreshold(d time.Duration) Option {
	return storageopt.WithSlowQueryThreshold[SlowQueryInfo](d)
}

// WithSlowQueryHook 设置慢查询钩子。
func WithSlowQueryHook(hook SlowQueryHook) Option {
	return storageopt.WithSlowQueryHook(hook)
}

// WithObserver 设置观测接口。
func WithObserver(observer xmetrics.Observer) Option {
	return storageopt.WithObserver[SlowQueryInfo](observer)
}

// WithLogger 设置日志，未设置钩子时慢查询以 Warn 记录。
func WithLogger(logger xlog.Logger) Option {
	return storageopt.WithLogger[SlowQueryInfo](logger)
}

// logSlowQuery 是未设置钩子时的默认慢查询处理。
func logSlowQuery(logger xlog.Logger) SlowQueryHook {
	return func(ctx context.Context, info SlowQueryInfo) {
		logger.Warn(ctx, "slow query",
			xlog.Component(componentName),
			xlog.Operation(info.Operation),
			xlog.Duration(info.Duration),
		)
	}
}
