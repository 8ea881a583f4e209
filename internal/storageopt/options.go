package storageopt

import (
	"time"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/observability/xmetrics"
)

// BaseOptions 文档库包装器的通用选项。T 是慢查询信息类型。
type BaseOptions[T any] struct {
	// HealthTimeout 健康检查超时，默认 5 秒。
	HealthTimeout time.Duration

	// QueryTimeout 调用方未设置 deadline 时的查询超时兜底，0 表示不设置。
	QueryTimeout time.Duration

	// SlowQueryThreshold 慢查询阈值，0 禁用。
	SlowQueryThreshold time.Duration

	// SlowQueryHook 慢查询同步钩子。
	SlowQueryHook SlowQueryHook[T]

	// Observer 统一观测接口。
	Observer xmetrics.Observer

	// Logger 日志，默认 xlog.Default()。
	Logger xlog.Logger
}

// OptionFunc 配置 BaseOptions。
type OptionFunc[T any] func(*BaseOptions[T])

// DefaultBaseOptions 返回默认选项。
func DefaultBaseOptions[T any]() BaseOptions[T] {
	return BaseOptions[T]{
		HealthTimeout: DefaultHealthTimeout,
		Observer:      xmetrics.NoopObserver{},
	}
}

// Apply 依次应用 opts，并补齐被置空的字段。
func (o *BaseOptions[T]) Apply(opts ...OptionFunc[T]) {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.Observer == nil {
		o.Observer = xmetrics.NoopObserver{}
	}
	if o.Logger == nil {
		o.Logger = xlog.Default()
	}
}

// WithHealthTimeout 设置健康检查超时，<= 0 忽略。
func WithHealthTimeout[T any](timeout time.Duration) OptionFunc[T] {
	return func(o *BaseOptions[T]) {
		if timeout > 0 {
			o.HealthTimeout = timeout
		}
	}
}

// WithQueryTimeout 设置查询超时兜底。
func WithQueryTimeout[T any](timeout time.Duration) OptionFunc[T] {
	return func(o *BaseOptions[T]) {
		if timeout >= 0 {
			o.QueryTimeout = timeout
		}
	}
}

// WithSlowQueryThreshold 设置慢查询阈值。
func WithSlowQueryThreshold[T any](threshold time.Duration) OptionFunc[T] {
	return func(o *BaseOptions[T]) {
		if threshold >= 0 {
			o.SlowQueryThreshold = threshold
		}
	}
}

// WithSlowQueryHook 设置慢查询钩子。
func WithSlowQueryHook[T any](hook SlowQueryHook[T]) OptionFunc[T] {
	return func(o *BaseOptions[T]) {
		o.SlowQueryHook = hook
	}
}

// WithObserver 设置观测接口。
func WithObserver[T any](observer xmetrics.Observer) OptionFunc[T] {
	return func(o *BaseOptions[T]) {
		o.Observer = observer
	}
}

// WithLogger 设置日志。
func WithLogger[T any](logger xlog.Logger) OptionFunc[T] {
	return func(o *BaseOptions[T]) {
		o.Logger = logger
	}
}
