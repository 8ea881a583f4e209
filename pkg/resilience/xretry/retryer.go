package xretry

import (
	"context"
	"math"
	"time"

	retry "github.com/avast/retry-go/v5"
)

const defaultAttempts = 3

// Config 重试配置，零值字段使用默认值。
type Config struct {
	// Attempts 总尝试次数（含首次），默认 3。
	Attempts int `koanf:"attempts" json:"attempts"`
	// InitialDelay 首次重试前的等待，默认 100ms。
	InitialDelay time.Duration `koanf:"initial_delay" json:"initial_delay"`
	// MaxDelay 单次等待上限，默认 5s。
	MaxDelay time.Duration `koanf:"max_delay" json:"max_delay"`
}

// Retryer 重试执行器，并发安全。
type Retryer struct {
	attempts uint
	backoff  BackoffPolicy
	retryIf  func(error) bool
	onRetry  func(attempt int, err error)
}

// Option 执行器选项。
type Option func(*Retryer)

// WithAttempts 设置总尝试次数，n < 1 忽略。
func WithAttempts(n int) Option {
	return func(r *Retryer) {
		if n >= 1 {
			r.attempts = uint(n)
		}
	}
}

// WithBackoff 设置退避策略。
func WithBackoff(p BackoffPolicy) Option {
	return func(r *Retryer) {
		if p != nil {
			r.backoff = p
		}
	}
}

// WithRetryIf 追加重试条件，在 IsRetryable 之后判定。
func WithRetryIf(fn func(error) bool) Option {
	return func(r *Retryer) {
		if fn != nil {
			r.retryIf = fn
		}
	}
}

// WithOnRetry 每次决定重试前调用，attempt 为已失败次数（从 1 开始）。
func WithOnRetry(fn func(attempt int, err error)) Option {
	return func(r *Retryer) {
		r.onRetry = fn
	}
}

// New 创建执行器，默认 3 次尝试与指数退避。
func New(opts ...Option) *Retryer {
	r := &Retryer{
		attempts: defaultAttempts,
		backoff:  NewExponentialBackoff(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// FromConfig 按配置创建执行器。
func FromConfig(cfg Config, opts ...Option) *Retryer {
	base := []Option{
		WithAttempts(cfg.Attempts),
		WithBackoff(NewExponentialBackoff(WithInitialDelay(cfg.InitialDelay), WithMaxDelay(cfg.MaxDelay))),
	}
	return New(append(base, opts...)...)
}

// Attempts 返回总尝试次数。
func (r *Retryer) Attempts() int {
	return int(min(r.attempts, uint(math.MaxInt)))
}

// Do 执行 fn，失败且可重试时按退避等待后重试。ctx 结束时停止并返回最后一次错误。
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil {
		return ErrNilRetryer
	}
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	return retry.New(r.options(ctx)...).Do(func() error {
		return fn(ctx)
	})
}

// DoWithResult Do 的返回值版本。
func DoWithResult[T any](ctx context.Context, r *Retryer, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	switch {
	case r == nil:
		return zero, ErrNilRetryer
	case ctx == nil:
		return zero, ErrNilContext
	case fn == nil:
		return zero, ErrNilFunc
	}
	return retry.NewWithData[T](r.options(ctx)...).Do(func() (T, error) {
		return fn(ctx)
	})
}

func (r *Retryer) options(ctx context.Context) []retry.Option {
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if !retry.IsRecoverable(err) || !IsRetryable(err) {
				return false
			}
			return r.retryIf == nil || r.retryIf(err)
		}),
		retry.DelayType(func(n uint, _ error, _ retry.DelayContext) time.Duration {
			return r.backoff.NextDelay(int(min(n, uint(math.MaxInt))))
		}),
	}
	if r.onRetry != nil {
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			r.onRetry(int(min(n, uint(math.MaxInt-1)))+1, err)
		}))
	}
	return opts
}
