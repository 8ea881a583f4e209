package xcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/omeyang/shopcache/pkg/observability/xmetrics"
	"github.com/omeyang/shopcache/pkg/util/xflight"
)

// GetOrSet 读取 key，未命中时调用 compute 计算并写入。
//
// 同一实例上同一 key 的并发调用只执行一次 compute，其余调用方等待并共享结果。
// compute 返回错误时不写入缓存，错误原样返回给本轮全部等待者，之后的调用会重新计算。
// compute 在独立于调用方取消的 ctx 上运行，受 WithLoadTimeout 约束；
// 调用方 ctx 结束只影响自身的等待。超时后才返回的 compute 结果不会写入缓存。
//
// c 为 nil、已关闭或 key 为空时直接调用 compute，不做缓存。
func GetOrSet[V any](ctx context.Context, c *Cache, key string, compute func(ctx context.Context) (V, error), opts ...EntryOption) (V, error) {
	var zero V
	if compute == nil {
		return zero, ErrNilCompute
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c == nil || c.closed.Load() || key == "" {
		return compute(ctx)
	}

	var cached V
	if c.Get(key, &cached) {
		return cached, nil
	}

	v, _, err := c.flight.Do(ctx, key, func(fctx context.Context) (any, error) {
		var again V
		if c.peekDecode(key, &again) {
			return again, nil
		}
		val, err := observeCompute(fctx, c, key, compute)
		if err != nil {
			return nil, err
		}
		// 超时或关闭后本轮已被放弃，其间可能已有更新的值或失效操作，不再回写
		if fctx.Err() != nil {
			return val, nil
		}
		c.Set(key, val, opts...)
		return val, nil
	})
	if errors.Is(err, xflight.ErrClosed) {
		return compute(ctx)
	}
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(V)
	if !ok {
		c.fail("get_or_set", key, fmt.Errorf("%w: got %T, want %T", ErrTypeMismatch, v, zero))
		return compute(ctx)
	}
	return typed, nil
}

func observeCompute[V any](ctx context.Context, c *Cache, key string, compute func(context.Context) (V, error)) (v V, err error) {
	ctx, span := xmetrics.Start(ctx, c.opts.observer, xmetrics.SpanOptions{
		Component: "xcache",
		Operation: "compute",
		Attrs: []xmetrics.Attr{
			xmetrics.String("cache", c.cfg.Name),
			xmetrics.String("key", key),
		},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()
	return compute(ctx)
}

// GetAs 读取 key 并解码为 V。
func GetAs[V any](c *Cache, key string) (V, bool) {
	var v V
	if c == nil {
		return v, false
	}
	ok := c.Get(key, &v)
	return v, ok
}
