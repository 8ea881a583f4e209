package xrun

import (
	"os"
	"syscall"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
)

// Option 配置 Group。
type Option func(*groupOptions)

type groupOptions struct {
	logger          xlog.Logger
	name            string
	signals         []os.Signal
	noSignalHandler bool
}

func defaultOptions() *groupOptions {
	return &groupOptions{
		logger: xlog.Default(),
		name:   "xrun",
	}
}

// WithLogger 设置生命周期日志的 logger，nil 忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置 Group 名称，出现在日志的 group 字段。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 覆盖监听的信号列表，空列表使用 [DefaultSignals]。
func WithSignals(signals []os.Signal) Option {
	copied := append([]os.Signal(nil), signals...)
	return func(o *groupOptions) {
		o.signals = copied
	}
}

// WithoutSignalHandler 禁用自动信号处理。
func WithoutSignalHandler() Option {
	return func(o *groupOptions) {
		o.noSignalHandler = true
	}
}

// DefaultSignals 返回 SIGHUP、SIGINT、SIGTERM、SIGQUIT。每次返回新切片。
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
}
