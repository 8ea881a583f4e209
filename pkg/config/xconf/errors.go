package xconf

import "errors"

var (
	ErrEmptyPath         = errors.New("xconf: empty config path")
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")
	ErrLoadFailed        = errors.New("xconf: failed to load config")
	ErrParseFailed       = errors.New("xconf: failed to parse config")
	ErrUnmarshalFailed   = errors.New("xconf: failed to unmarshal config")

	// ErrNotFromFile 表示对从字节数据创建的配置调用了 Reload 或 Watch。
	ErrNotFromFile = errors.New("xconf: config was not loaded from a file")

	// ErrUnsupportedConfig 表示 Watch 收到了非本包创建的 Config 实现。
	ErrUnsupportedConfig = errors.New("xconf: unsupported config implementation")
)
