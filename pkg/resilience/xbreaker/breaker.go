package xbreaker

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	defaultFailures    = 5
	defaultTimeout     = 30 * time.Second
	defaultMaxRequests = 1
)

// Config 熔断配置，零值字段使用默认值。
type Config struct {
	// ConsecutiveFailures 连续失败多少次后打开，默认 5。
	ConsecutiveFailures uint32 `koanf:"consecutive_failures" json:"consecutive_failures"`
	// Timeout Open 状态持续多久后进入 HalfOpen，默认 30s。
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
	// Interval Closed 状态下清零计数的周期，0 表示不清零。
	Interval time.Duration `koanf:"interval" json:"interval"`
	// MaxRequests HalfOpen 状态允许的探测请求数，默认 1。
	MaxRequests uint32 `koanf:"max_requests" json:"max_requests"`
}

// Breaker 熔断器，并发安全。
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[any]
}

type options struct {
	trip          TripPolicy
	isSuccessful  func(error) bool
	onStateChange func(name string, from, to State)
}

// Option 熔断器选项。
type Option func(*options)

// WithTripPolicy 覆盖配置中的连续失败策略。
func WithTripPolicy(p TripPolicy) Option {
	return func(o *options) {
		if p != nil {
			o.trip = p
		}
	}
}

// WithSuccessPolicy 决定哪些错误不计为失败，例如“文档不存在”。
func WithSuccessPolicy(fn func(err error) bool) Option {
	return func(o *options) {
		o.isSuccessful = fn
	}
}

// WithOnStateChange 状态变化回调。
func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(o *options) {
		o.onStateChange = fn
	}
}

// New 创建名为 name 的熔断器。
func New(name string, cfg Config, opts ...Option) *Breaker {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = defaultFailures
	}
	o := options{trip: ConsecutiveFailures(failures)}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: o.trip.ReadyToTrip,
	}
	if st.MaxRequests == 0 {
		st.MaxRequests = defaultMaxRequests
	}
	if st.Timeout <= 0 {
		st.Timeout = defaultTimeout
	}
	if o.isSuccessful != nil {
		st.IsSuccessful = o.isSuccessful
	}
	if o.onStateChange != nil {
		st.OnStateChange = o.onStateChange
	}
	return &Breaker{name: name, cb: gobreaker.NewCircuitBreaker[any](st)}
}

// Do 在熔断保护下执行 fn。ctx 已结束时直接返回 ctx.Err()，不计入统计。
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return ErrNilFunc
	}
	_, err := Execute(ctx, b, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Execute Do 的返回值版本。
func Execute[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	switch {
	case b == nil:
		return zero, ErrNilBreaker
	case ctx == nil:
		return zero, ErrNilContext
	case fn == nil:
		return zero, ErrNilFunc
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	res, err := b.cb.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, wrap(err, b.name)
	}
	v, _ := res.(T)
	return v, nil
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State { return b.cb.State() }

func (b *Breaker) Counts() Counts { return b.cb.Counts() }
