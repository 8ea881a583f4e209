package xlog

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// ErrNilHandler 当 NewEnrichHandler 的 base handler 为 nil 时返回
var ErrNilHandler = errors.New("xlog: base handler is nil")

type requestIDKey struct{}

// WithRequestID 将请求 ID 写入 context，EnrichHandler 会自动注入日志。
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID 读取 context 中的请求 ID。
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// EnrichHandler 在 Handle 时从 context 注入 request_id、trace_id、span_id。
// context 缺少这些信息时原样输出。
type EnrichHandler struct {
	base slog.Handler
}

// NewEnrichHandler 创建 EnrichHandler
func NewEnrichHandler(base slog.Handler) (*EnrichHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{base: base}, nil
}

func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle 按 slog 契约先 Clone record 再追加属性。
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf [3]slog.Attr
	attrs := buf[:0]
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, slog.String(KeyRequestID, id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String(KeyTraceID, sc.TraceID().String()),
			slog.String(KeySpanID, sc.SpanID().String()))
	}
	if len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.base.Handle(ctx, r)
}

func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{base: h.base.WithAttrs(attrs)}
}

func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{base: h.base.WithGroup(name)}
}
