package xlog

import (
	"log/slog"
	"time"
)

// 标准字段名
const (
	KeyError      = "error"
	KeyDuration   = "duration"
	KeyCount      = "count"
	KeyRequestID  = "request_id"
	KeyTraceID    = "trace_id"
	KeySpanID     = "span_id"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatusCode = "status_code"
	KeyComponent  = "component"
	KeyOperation  = "operation"
	KeyCache      = "cache"
	KeyKey        = "key"
	KeyReason     = "reason"
)

// Err 创建错误属性。err 为 nil 时返回空属性（会被 slog 忽略）。
//
//	if err != nil {
//	    logger.Error(ctx, "load failed", xlog.Err(err))
//	}
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 创建操作名属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Count 创建计数属性
func Count(n int64) slog.Attr {
	return slog.Int64(KeyCount, n)
}

// Cache 创建缓存实例名属性
func Cache(name string) slog.Attr {
	return slog.String(KeyCache, name)
}

// Key 创建缓存键属性
func Key(k string) slog.Attr {
	return slog.String(KeyKey, k)
}

// Reason 创建原因属性（如淘汰原因）
func Reason(r string) slog.Attr {
	return slog.String(KeyReason, r)
}

// StatusCode 创建 HTTP 状态码属性
func StatusCode(code int) slog.Attr {
	return slog.Int(KeyStatusCode, code)
}

// Method 创建 HTTP 方法属性
func Method(m string) slog.Attr {
	return slog.String(KeyMethod, m)
}

// Path 创建请求路径属性
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}
