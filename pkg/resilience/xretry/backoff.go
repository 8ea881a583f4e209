package xretry

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffPolicy 计算第 attempt 次失败（从 1 开始）后的等待时间。
type BackoffPolicy interface {
	NextDelay(attempt int) time.Duration
}

// BackoffFunc 函数形式的 BackoffPolicy。
type BackoffFunc func(attempt int) time.Duration

func (f BackoffFunc) NextDelay(attempt int) time.Duration { return f(attempt) }

// FixedBackoff 固定延迟。
type FixedBackoff time.Duration

func (b FixedBackoff) NextDelay(int) time.Duration { return max(time.Duration(b), 0) }

// NoBackoff 不等待，用于测试。
var NoBackoff BackoffPolicy = FixedBackoff(0)

// ExponentialBackoff 指数退避：initial * multiplier^(attempt-1)，带 ±jitter 抖动，不超过 maxDelay。
type ExponentialBackoff struct {
	initial    time.Duration
	maxDelay   time.Duration
	multiplier float64
	jitter     float64
}

// ExponentialOption 指数退避选项。
type ExponentialOption func(*ExponentialBackoff)

// WithInitialDelay d <= 0 忽略。
func WithInitialDelay(d time.Duration) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if d > 0 {
			b.initial = d
		}
	}
}

// WithMaxDelay d <= 0 忽略。
func WithMaxDelay(d time.Duration) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if d > 0 {
			b.maxDelay = d
		}
	}
}

// WithMultiplier m < 1 忽略。
func WithMultiplier(m float64) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if m >= 1 {
			b.multiplier = m
		}
	}
}

// WithJitter 抖动比例，截断到 [0, 1]。
func WithJitter(j float64) ExponentialOption {
	return func(b *ExponentialBackoff) {
		b.jitter = min(max(j, 0), 1)
	}
}

// NewExponentialBackoff 默认 100ms 起步，倍数 2，上限 5s，抖动 10%。
func NewExponentialBackoff(opts ...ExponentialOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initial:    100 * time.Millisecond,
		maxDelay:   5 * time.Second,
		multiplier: 2,
		jitter:     0.1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.maxDelay = max(b.maxDelay, b.initial)
	return b
}

func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	attempt = max(attempt, 1)
	delay := float64(b.initial) * math.Pow(b.multiplier, float64(attempt-1))
	if b.jitter > 0 {
		delay *= 1 + (rand.Float64()*2-1)*b.jitter
	}
	// Pow 溢出后可能得到 Inf 或 NaN
	if math.IsNaN(delay) || delay < 0 || delay >= float64(b.maxDelay) {
		return b.maxDelay
	}
	return time.Duration(delay)
}
