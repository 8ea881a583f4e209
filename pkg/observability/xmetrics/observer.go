package xmetrics

import (
	"context"
	"strconv"
)

// Kind 跨度类型。
type Kind int

const (
	KindInternal Kind = iota
	KindServer
	KindClient
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "Internal"
	case KindServer:
		return "Server"
	case KindClient:
		return "Client"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Status 结果状态。
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Attr 观测属性。
type Attr struct {
	Key   string
	Value any
}

// String 创建字符串属性。
func String(key, value string) Attr { return Attr{Key: key, Value: value} }

// Int 创建整数属性。
func Int(key string, value int) Attr { return Attr{Key: key, Value: value} }

// Bool 创建布尔属性。
func Bool(key string, value bool) Attr { return Attr{Key: key, Value: value} }

// SpanOptions 跨度的创建参数。
type SpanOptions struct {
	Component string
	Operation string
	Kind      Kind
	Attrs     []Attr
}

// Result 跨度结束时的结果。Status 为空时根据 Err 推导。
type Result struct {
	Status Status
	Err    error
	Attrs  []Attr
}

// Span 一次观测跨度。
type Span interface {
	End(result Result)
}

// Observer 统一观测接口。
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// NoopObserver 空实现。
type NoopObserver struct{}

func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 空跨度。
type NoopSpan struct{}

func (NoopSpan) End(Result) {}

// Start 使用 observer 开始观测。
// 总是返回非 nil 的 ctx 和 Span：nil observer、nil ctx 以及自定义实现返回的 nil 都会兜底。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	retCtx, span := observer.Start(ctx, opts)
	if retCtx == nil {
		retCtx = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return retCtx, span
}
