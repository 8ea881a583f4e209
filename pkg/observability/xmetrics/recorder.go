package xmetrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const metricCacheEvents = "shopcache.cache.events"

// Recorder 按 (cache, event, reason) 统计缓存事件。
type Recorder struct {
	events metric.Int64Counter
}

// NewRecorder 创建事件计数器。
func NewRecorder(opts ...Option) (*Recorder, error) {
	cfg := newOTelConfig(opts)
	counter, err := cfg.meterProvider.Meter(cfg.instrumentationName).Int64Counter(
		metricCacheEvents,
		metric.WithDescription("cache lifecycle events"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateInstrument, metricCacheEvents, err)
	}
	return &Recorder{events: counter}, nil
}

// Record 记录一次事件。reason 可为空。nil Recorder 安全。
func (r *Recorder) Record(ctx context.Context, cache, event, reason string) {
	if r == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := []attribute.KeyValue{
		attribute.String("cache", orUnknown(cache)),
		attribute.String("event", orUnknown(event)),
	}
	if reason != "" {
		attrs = append(attrs, attribute.String("reason", reason))
	}
	r.events.Add(ctx, 1, metric.WithAttributes(attrs...))
}
