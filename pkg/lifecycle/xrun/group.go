package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"
)

// Group 基于 errgroup 管理一组服务。Go 可并发调用，Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group 和派生 context。nil ctx 视为 context.Background()。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// Go 启动 fn。fn 返回非 nil 错误时取消其余服务。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，并记录服务的启动与退出。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		attrs := []slog.Attr{slog.String("group", g.opts.name), slog.String("service", name)}
		g.opts.logger.Debug(g.ctx, "service starting", attrs...)
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.Warn(g.ctx, "service exited with error", append(attrs, slog.Any("error", err))...)
		} else {
			g.opts.logger.Debug(g.ctx, "service stopped", attrs...)
		}
		return err
	})
}

// Wait 等待所有服务结束。
//
// 主动 Cancel 或信号导致的 context.Canceled 不视为错误；
// 显式的取消原因（如 *SignalError）总会返回，即使所有服务都返回 nil。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if g.causeCtx.Err() != nil {
		if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		return nil
	}
	// context.Canceled 来自服务内部
	return err
}

// Cancel 以 cause 为原因取消所有服务。cause 不应包装 context.Canceled。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// Service 可被 RunServices 管理的服务。Run 阻塞到 ctx 取消或出错。
type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc 把函数适配为 Service。
type ServiceFunc func(ctx context.Context) error

func (f ServiceFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Run 监听信号并运行 services。
func Run(ctx context.Context, services ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, nil, services...)
}

// RunWithOptions 与 Run 相同，支持选项。
func RunWithOptions(ctx context.Context, opts []Option, services ...func(ctx context.Context) error) error {
	return runGroup(ctx, opts, func(g *Group) {
		for _, svc := range services {
			g.Go(svc)
		}
	})
}

// RunServices 监听信号并运行 Service。
func RunServices(ctx context.Context, services ...Service) error {
	return RunServicesWithOptions(ctx, nil, services...)
}

// RunServicesWithOptions 与 RunServices 相同，支持选项。
func RunServicesWithOptions(ctx context.Context, opts []Option, services ...Service) error {
	return runGroup(ctx, opts, func(g *Group) {
		for _, svc := range services {
			if svc == nil {
				g.Go(func(context.Context) error { return ErrNilService })
				continue
			}
			g.Go(svc.Run)
		}
	})
}

func runGroup(ctx context.Context, opts []Option, setup func(g *Group)) error {
	g, _ := NewGroup(ctx, opts...)

	if !g.opts.noSignalHandler {
		signals := g.opts.signals
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		g.Go(func(ctx context.Context) error {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, signals...)
			defer signal.Stop(sigCh)

			var sig os.Signal
			select {
			case sig = <-testSigChan(ctx):
			case sig = <-sigCh:
			case <-ctx.Done():
				return ctx.Err()
			}
			g.opts.logger.Info(ctx, "received signal",
				slog.String("group", g.opts.name),
				slog.String("signal", sig.String()),
			)
			g.cancel(&SignalError{Signal: sig})
			return nil
		})
	}

	setup(g)
	return g.Wait()
}

// 测试通过 context 注入信号，避免向进程发送真实信号；生产环境返回 nil 通道。
type testSigChanKey struct{}

func testSigChan(ctx context.Context) <-chan os.Signal {
	c, _ := ctx.Value(testSigChanKey{}).(<-chan os.Signal)
	return c
}

func withTestSigChan(ctx context.Context, c <-chan os.Signal) context.Context {
	return context.WithValue(ctx, testSigChanKey{}, c)
}
