package storageopt

import (
	"context"
	"time"
)

// SlowQueryHook 慢查询钩子，在请求路径上同步执行，应保持微秒级。
type SlowQueryHook[T any] func(ctx context.Context, info T)

// SlowQueryDetector 检测耗时超过阈值的操作并调用钩子。
// 零值或 threshold <= 0 时不触发。
type SlowQueryDetector[T any] struct {
	threshold time.Duration
	hook      SlowQueryHook[T]
}

// NewSlowQueryDetector 创建慢查询检测器。hook 可为 nil，此时只做判定。
func NewSlowQueryDetector[T any](threshold time.Duration, hook SlowQueryHook[T]) *SlowQueryDetector[T] {
	return &SlowQueryDetector[T]{threshold: threshold, hook: hook}
}

// Threshold 返回阈值。
func (d *SlowQueryDetector[T]) Threshold() time.Duration {
	if d == nil {
		return 0
	}
	return d.threshold
}

// Check 判定 duration 是否为慢查询，是则调用钩子。
// 钩子 panic 会被吞掉，不影响查询结果。
func (d *SlowQueryDetector[T]) Check(ctx context.Context, info T, duration time.Duration) bool {
	if d == nil || d.threshold <= 0 || duration < d.threshold {
		return false
	}
	if d.hook != nil {
		func() {
			defer func() { _ = recover() }()
			d.hook(ctx, info)
		}()
	}
	return true
}
