package xlog

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

var (
	_ Logger          = (*xlogger)(nil)
	_ LoggerWithLevel = (*xlogger)(nil)
)

// xlogger Logger 接口的实现
type xlogger struct {
	handler    slog.Handler
	levelVar   *slog.LevelVar
	onError    func(error)
	errorCount *atomic.Uint64 // 派生 logger 共享
	addSource  bool
}

// logWithSkip 记录日志，extraSkip 为额外跳过的栈帧（全局函数多一层）。
//
//go:noinline
func (l *xlogger) logWithSkip(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr, extraSkip int) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	var pc uintptr
	if l.addSource {
		var pcs [1]uintptr
		// Callers → logWithSkip → log/globalLog → Debug/Info/... → 业务代码
		runtime.Callers(3+extraSkip, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), level, msg, pc)
	r.AddAttrs(attrs...)
	if err := l.handler.Handle(ctx, r); err != nil {
		l.handleError(err)
	}
}

//go:noinline
func (l *xlogger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	l.logWithSkip(ctx, level, msg, attrs, 1)
}

// handleError 处理 Handler.Handle 失败。回调 panic 被吞掉并计数，不扩散到调用方。
func (l *xlogger) handleError(err error) {
	if l.errorCount != nil {
		l.errorCount.Add(1)
	}
	if l.onError == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && l.errorCount != nil {
			l.errorCount.Add(1)
		}
	}()
	l.onError(err)
}

func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

func (l *xlogger) derive(h slog.Handler) *xlogger {
	return &xlogger{
		handler:    h,
		levelVar:   l.levelVar,
		onError:    l.onError,
		errorCount: l.errorCount,
		addSource:  l.addSource,
	}
}

func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return l.derive(l.handler.WithAttrs(attrs))
}

func (l *xlogger) WithGroup(name string) Logger {
	if name == "" {
		return l
	}
	return l.derive(l.handler.WithGroup(name))
}

func (l *xlogger) SetLevel(level Level) {
	l.levelVar.Set(slog.Level(level))
}

func (l *xlogger) GetLevel() Level {
	return Level(l.levelVar.Level())
}

func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.handler.Enabled(ctx, slog.Level(level))
}

// ErrorCount 返回 logger 内部写入失败的次数。
func ErrorCount(l Logger) uint64 {
	if xl, ok := l.(*xlogger); ok && xl.errorCount != nil {
		return xl.errorCount.Load()
	}
	return 0
}
