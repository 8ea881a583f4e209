package xcache

import (
	"context"
	"errors"
	"time"

	"github.com/omeyang/shopcache/pkg/lifecycle/xrun"
	"github.com/omeyang/shopcache/pkg/observability/xlog"
)

func (c *Cache) startSweeper() {
	if c.cfg.SweepInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.sweepStop = cancel
	c.sweepDone = make(chan struct{})

	run := xrun.Ticker(c.cfg.SweepInterval, false, func(ctx context.Context) error {
		c.sweep(ctx)
		return nil
	})
	go func() {
		defer close(c.sweepDone)
		if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn(context.Background(), "cache sweeper stopped", xlog.Err(err))
		}
	}()
}

func (c *Cache) stopSweeper() {
	if c.sweepStop == nil {
		return
	}
	c.sweepStop()
	timer := time.NewTimer(closeWait)
	defer timer.Stop()
	select {
	case <-c.sweepDone:
	case <-timer.C:
		c.logger.Warn(context.Background(), "cache sweeper did not stop in time", xlog.Duration(closeWait))
	}
}

// Sweep 立即移除全部已过期条目，返回移除数量。已关闭时返回 0。
func (c *Cache) Sweep() int {
	return c.sweep(context.Background())
}

// sweep 每次加锁只移除一条，读写不会被整轮清扫阻塞。
func (c *Cache) sweep(ctx context.Context) int {
	n := 0
	for ctx.Err() == nil && !c.closed.Load() {
		now := c.opts.now()
		c.mu.Lock()
		e := c.st.popExpired(now)
		c.mu.Unlock()
		if e == nil {
			break
		}
		n++
		c.stats.expirations.Add(1)
		c.emit(Event{Type: EventEvict, Key: e.key, Reason: ReasonExpired, Size: e.payload.Size})
	}
	if n > 0 {
		c.logger.Debug(ctx, "cache sweep finished", xlog.Count(int64(n)))
	}
	return n
}
