package xrun

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Ticker 返回周期执行 fn 的服务函数。
//
// interval 必须为正数，否则服务函数返回 [ErrInvalidInterval]。
// immediate 为 true 时启动后先执行一次。fn 返回错误时服务结束。
func Ticker(interval time.Duration, immediate bool, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilFunc
		}
		if immediate {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx); err != nil {
				return err
			}
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := fn(ctx); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// HTTPServerInterface *http.Server 天然满足此接口。
type HTTPServerInterface interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServer 把 server 包装为支持优雅关闭的服务函数。
// shutdownTimeout <= 0 表示 Shutdown 无限等待在途请求。
func HTTPServer(server HTTPServerInterface, shutdownTimeout time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if server == nil {
			return ErrNilServer
		}
		shutdownErrCh := make(chan error, 1)
		listenDone := make(chan struct{})

		go func() {
			select {
			case <-ctx.Done():
				shutdownCtx := context.Background()
				if shutdownTimeout > 0 {
					var cancel context.CancelFunc
					shutdownCtx, cancel = context.WithTimeout(shutdownCtx, shutdownTimeout)
					defer cancel()
				}
				shutdownErrCh <- server.Shutdown(shutdownCtx)
			case <-listenDone:
			}
		}()

		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			select {
			case shutdownErr := <-shutdownErrCh:
				return shutdownErr
			case <-ctx.Done():
				return <-shutdownErrCh
			default:
				// 外部直接关闭了 server
				close(listenDone)
				return nil
			}
		}
		close(listenDone)
		return err
	}
}
