package xcache

import (
	"errors"

	"github.com/omeyang/shopcache/pkg/util/xflight"
)

var (
	// ErrSerialization 表示值无法序列化。
	ErrSerialization = errors.New("xcache: serialization failed")

	// ErrCompression 表示压缩或解压失败。
	ErrCompression = errors.New("xcache: compression failed")

	// ErrDeserialization 表示存储的负载不是合法 JSON。
	ErrDeserialization = errors.New("xcache: deserialization failed")

	// ErrDestination 表示解码目标为 nil、不是指针或与存储的值类型不兼容。
	ErrDestination = errors.New("xcache: incompatible decode destination")

	// ErrCapacity 表示单条编码后大小超过 MaxBytes/10，被拒绝写入。
	ErrCapacity = errors.New("xcache: entry exceeds per-entry capacity")

	// ErrClosed 表示缓存或注册表已关闭。
	ErrClosed = errors.New("xcache: closed")

	// ErrInvalidConfig 表示配置无效。
	ErrInvalidConfig = errors.New("xcache: invalid configuration")

	// ErrEmptyKey 表示 key 为空字符串。
	ErrEmptyKey = errors.New("xcache: empty key")

	// ErrNilCompute 表示 GetOrSet 的 compute 为 nil。
	ErrNilCompute = errors.New("xcache: nil compute function")

	// ErrTypeMismatch 表示合并调用的结果类型与调用方期望的类型不一致。
	// GetOrSet 遇到此情况会退化为直接调用 compute，错误只出现在 error 事件中。
	ErrTypeMismatch = errors.New("xcache: result type mismatch")

	// ErrComputePanic 表示 compute 发生了 panic。
	ErrComputePanic = xflight.ErrPanic

	// ErrDuplicateCache 表示注册表中已存在同名缓存。
	ErrDuplicateCache = errors.New("xcache: duplicate cache name")

	// ErrUnknownCache 表示注册表中不存在该缓存。
	ErrUnknownCache = errors.New("xcache: unknown cache")
)

// OpError 携带缓存操作的上下文，出现在 error 事件中。
type OpError struct {
	Op    string
	Cache string
	Key   string
	Err   error
}

func (e *OpError) Error() string {
	msg := "xcache: " + e.Op
	if e.Cache != "" {
		msg += " cache=" + e.Cache
	}
	if e.Key != "" {
		msg += " key=" + e.Key
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OpError) Unwrap() error {
	return e.Err
}
