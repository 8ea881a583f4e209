package xbreaker

import (
	"errors"
	"fmt"
)

var (
	ErrNilBreaker = errors.New("xbreaker: breaker cannot be nil")
	ErrNilContext = errors.New("xbreaker: context cannot be nil")
	ErrNilFunc    = errors.New("xbreaker: function cannot be nil")
)

// BreakerError 熔断器拒绝执行时返回的错误。
type BreakerError struct {
	Err   error
	Name  string
	State State
}

func (e *BreakerError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("breaker %s: %v", e.Name, e.Err)
	}
	return e.Err.Error()
}

func (e *BreakerError) Unwrap() error { return e.Err }

// Retryable 熔断拒绝不应重试。
func (e *BreakerError) Retryable() bool { return false }

// wrap 只包装 gobreaker 直接返回的哨兵错误，fn 自身返回的错误（包括内层熔断器的错误）原样透出。
func wrap(err error, name string) error {
	switch err {
	case nil:
		return nil
	case ErrOpenState:
		return &BreakerError{Err: err, Name: name, State: StateOpen}
	case ErrTooManyRequests:
		return &BreakerError{Err: err, Name: name, State: StateHalfOpen}
	default:
		return err
	}
}

// IsOpen 报告 err 是否为熔断打开拒绝。
func IsOpen(err error) bool { return errors.Is(err, ErrOpenState) }

// IsTooManyRequests 报告 err 是否为半开状态下的超额拒绝。
func IsTooManyRequests(err error) bool { return errors.Is(err, ErrTooManyRequests) }

// IsBreakerError 报告 err 是否为任一熔断拒绝。
func IsBreakerError(err error) bool { return IsOpen(err) || IsTooManyRequests(err) }
