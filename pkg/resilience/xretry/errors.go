package xretry

import (
	"context"
	"errors"
)

var (
	ErrNilRetryer = errors.New("xretry: retryer cannot be nil")
	ErrNilContext = errors.New("xretry: context cannot be nil")
	ErrNilFunc    = errors.New("xretry: function cannot be nil")
)

// RetryableError 自带重试判定的错误。
type RetryableError interface {
	error
	Retryable() bool
}

type permanentError struct{ err error }

func (e *permanentError) Error() string   { return e.err.Error() }
func (e *permanentError) Unwrap() error   { return e.err }
func (e *permanentError) Retryable() bool { return false }

// Permanent 把 err 标记为不可重试。nil 返回 nil。
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsRetryable 报告 err 是否应重试。nil 返回 false。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return true
}
