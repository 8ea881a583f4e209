package xflight

import "time"

// DefaultTimeout fn 的默认独立超时。
const DefaultTimeout = 30 * time.Second

// Option 定义 Group 可选配置。
type Option func(*options)

type options struct {
	timeout time.Duration
}

func defaultOptions() options {
	return options{timeout: DefaultTimeout}
}

// WithTimeout 设置 fn 的独立超时。
//   - d > 0: 使用指定超时
//   - d == 0: 禁用超时（fn 必须自行保证会返回）
//   - d < 0: 使用 [DefaultTimeout]
func WithTimeout(d time.Duration) Option {
	if d < 0 {
		d = DefaultTimeout
	}
	return func(o *options) {
		o.timeout = d
	}
}
