package xflight

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Func 是被合并执行的函数。ctx 脱离调用方的取消链，但带 Group 的独立超时。
type Func func(ctx context.Context) (any, error)

// Group 按 key 合并并发调用。零值不可用，使用 [New] 创建。
type Group struct {
	sf      singleflight.Group
	timeout time.Duration
	closed  atomic.Bool

	// base 随 Close 取消，所有 fn 的 ctx 挂在它上面
	base     context.Context
	shutdown context.CancelFunc

	mu       sync.Mutex
	inflight map[string]int
}

// New 创建 Group。
func New(opts ...Option) *Group {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	base, shutdown := context.WithCancel(context.Background())
	return &Group{
		timeout:  o.timeout,
		base:     base,
		shutdown: shutdown,
		inflight: make(map[string]int),
	}
}

// Do 执行 fn，同一 key 的并发调用只执行一次。
//
// shared 表示结果同时交给了多个调用方。
// ctx 只控制当前调用方的等待：ctx 结束时返回 ctx.Err()，fn 继续为其他等待者运行。
func (g *Group) Do(ctx context.Context, key string, fn Func) (v any, shared bool, err error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	if fn == nil {
		return nil, false, ErrNilFunc
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if g.closed.Load() {
		return nil, false, ErrClosed
	}

	ch := g.sf.DoChan(key, func() (any, error) {
		return g.run(ctx, key, fn)
	})

	select {
	case r := <-ch:
		if r.Err != nil && g.closed.Load() {
			return nil, r.Shared, ErrClosed
		}
		return r.Val, r.Shared, r.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-g.base.Done():
		return nil, false, ErrClosed
	}
}

// run 由本轮的首个调用方触发，在独立 ctx 上执行 fn。
// 超时或关闭时不再等 fn 返回，直接结束本轮调用。
func (g *Group) run(parent context.Context, key string, fn Func) (any, error) {
	g.track(key, 1)
	defer g.track(key, -1)

	ctx, cancel := g.detach(parent)
	defer cancel()

	type result struct {
		val any
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		var r result
		defer func() {
			if p := recover(); p != nil {
				r = result{err: &PanicError{Key: key, Value: p, Stack: debug.Stack()}}
			}
			resCh <- r
		}()
		r.val, r.err = fn(ctx)
	}()

	select {
	case r := <-resCh:
		return r.val, r.err
	case <-ctx.Done():
		// 先释放槽位，之后的调用方不再加入这一轮
		g.sf.Forget(key)
		if g.closed.Load() {
			return nil, ErrClosed
		}
		return nil, ctx.Err()
	}
}

// detach 脱离调用方的取消链，保留 Value，附加独立超时，并随 Close 取消。
func (g *Group) detach(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(g.base, cancel)
	if g.timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, g.timeout)
		return ctx, func() {
			stop()
			cancelTimeout()
			cancel()
		}
	}
	return ctx, func() {
		stop()
		cancel()
	}
}

// track 按 key 计数。Forget 之后同一 key 可能短暂存在新旧两轮调用。
func (g *Group) track(key string, delta int) {
	g.mu.Lock()
	if n := g.inflight[key] + delta; n > 0 {
		g.inflight[key] = n
	} else {
		delete(g.inflight, key)
	}
	g.mu.Unlock()
}

// Len 返回进行中的调用数量（瞬时快照）。
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.inflight {
		n += c
	}
	return n
}

// Keys 返回进行中调用的 key 列表，仅用于调试。
func (g *Group) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]string, 0, len(g.inflight))
	for k := range g.inflight {
		keys = append(keys, k)
	}
	return keys
}

// Close 拒绝新调用并唤醒所有等待者。重复调用返回 [ErrClosed]。
// 进行中 fn 的 ctx 随之取消。
func (g *Group) Close() error {
	if !g.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	g.shutdown()
	return nil
}
