package xflight

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed 表示 Group 已关闭。
	ErrClosed = errors.New("xflight: closed")

	// ErrPanic 表示 fn 发生了 panic。
	ErrPanic = errors.New("xflight: function panicked")

	// ErrNilContext 表示传入了 nil context。
	ErrNilContext = errors.New("xflight: nil context")

	// ErrNilFunc 表示传入了 nil 函数。
	ErrNilFunc = errors.New("xflight: nil function")
)

// PanicError 携带 fn panic 时的值和调用栈。
type PanicError struct {
	Key   string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("xflight: function panicked for key %q: %v", e.Key, e.Value)
}

// Unwrap 使 errors.Is(err, ErrPanic) 成立。
func (e *PanicError) Unwrap() error {
	return ErrPanic
}
