package xlog

import (
	"context"
	"log/slog"
)

// Logger 日志接口。
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 返回带额外属性的派生 Logger，派生 logger 共享父级的级别。
	With(attrs ...slog.Attr) Logger

	// WithGroup 返回带分组的派生 Logger。
	WithGroup(name string) Logger
}

// Leveler 级别控制接口。
//
// 与 Logger 分离，通过类型断言检查具体实现是否支持动态级别。
type Leveler interface {
	SetLevel(level Level)
	GetLevel() Level
	Enabled(ctx context.Context, level Level) bool
}

// LoggerWithLevel 组合接口，Build 返回此类型。
type LoggerWithLevel interface {
	Logger
	Leveler
}

// Discard 返回丢弃所有输出的 Logger，用于测试和未配置日志的组件。
func Discard() LoggerWithLevel {
	lv := new(slog.LevelVar)
	return &xlogger{
		handler:  slog.DiscardHandler,
		levelVar: lv,
	}
}
