package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrSignal 表示因收到系统信号而终止。
	ErrSignal = errors.New("received signal")

	// ErrInvalidInterval 表示 Ticker 的间隔不是正数。
	ErrInvalidInterval = errors.New("xrun: interval must be positive")

	// ErrNilFunc 表示传入了 nil 服务函数。
	ErrNilFunc = errors.New("xrun: nil function")

	// ErrNilService 表示传入了 nil Service。
	ErrNilService = errors.New("xrun: nil service")

	// ErrNilServer 表示 HTTPServer 的 server 为 nil。
	ErrNilServer = errors.New("xrun: nil server")
)

// SignalError 携带触发退出的信号。
//
//	var sigErr *xrun.SignalError
//	if errors.As(err, &sigErr) {
//	    fmt.Println(sigErr.Signal)
//	}
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	if e.Signal == nil {
		return "received signal <nil>"
	}
	return fmt.Sprintf("received signal %s", e.Signal)
}

// Unwrap 使 errors.Is(err, ErrSignal) 成立。
func (e *SignalError) Unwrap() error {
	return ErrSignal
}
