package xlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ErrInvalidConfig 表示日志配置无效。
var ErrInvalidConfig = errors.New("xlog: invalid config")

// RotationOption 配置文件轮转。
type RotationOption func(*lumberjack.Logger)

// WithMaxSizeMB 单个日志文件的最大 MB 数，默认 100。
func WithMaxSizeMB(n int) RotationOption {
	return func(l *lumberjack.Logger) { l.MaxSize = n }
}

// WithMaxBackups 保留的旧文件个数，默认 7。
func WithMaxBackups(n int) RotationOption {
	return func(l *lumberjack.Logger) { l.MaxBackups = n }
}

// WithMaxAgeDays 旧文件保留天数，默认 30。
func WithMaxAgeDays(n int) RotationOption {
	return func(l *lumberjack.Logger) { l.MaxAge = n }
}

// WithCompress 是否 gzip 压缩旧文件，默认开启。
func WithCompress(enable bool) RotationOption {
	return func(l *lumberjack.Logger) { l.Compress = enable }
}

// Builder 日志配置构建器
type Builder struct {
	output       io.Writer
	levelVar     *slog.LevelVar
	format       string
	addSource    bool
	enableEnrich bool
	attrs        []slog.Attr
	rotator      io.Closer
	onError      func(error)
	err          error
}

// New 创建配置构建器，默认 stderr、Info、text、启用 context 注入。
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	return &Builder{
		output:       os.Stderr,
		levelVar:     levelVar,
		format:       "text",
		enableEnrich: true,
	}
}

// SetOutput 设置日志输出目标
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w == nil {
		b.err = fmt.Errorf("%w: nil output", ErrInvalidConfig)
		return b
	}
	b.output = w
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别
func (b *Builder) SetLevelString(s string) *Builder {
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json。空值使用 text。
func (b *Builder) SetFormat(format string) *Builder {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = normalized
	default:
		b.err = fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, format)
	}
	return b
}

// SetAddSource 是否在日志中添加源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetEnrich 是否从 context 注入 request_id / trace_id / span_id
func (b *Builder) SetEnrich(enable bool) *Builder {
	b.enableEnrich = enable
	return b
}

// SetAttrs 设置每条日志都带的固定属性（如 service、version）。
func (b *Builder) SetAttrs(attrs ...slog.Attr) *Builder {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// SetRotation 输出到 filename 并按大小轮转。
// 默认单文件 100MB、保留 7 个、30 天、压缩旧文件。
func (b *Builder) SetRotation(filename string, opts ...RotationOption) *Builder {
	if strings.TrimSpace(filename) == "" {
		b.err = fmt.Errorf("%w: empty rotation filename", ErrInvalidConfig)
		return b
	}
	l := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
		Compress:   true,
		LocalTime:  true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.MaxSize <= 0 || l.MaxBackups < 0 || l.MaxAge < 0 {
		b.err = fmt.Errorf("%w: invalid rotation limits", ErrInvalidConfig)
		return b
	}
	b.rotator = l
	b.output = l
	return b
}

// SetOnError 设置 Handler.Handle 失败时的回调。
// 回调在热路径同步执行，应保持轻量。
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

// Build 构建 Logger。
//
// 返回的 cleanup 关闭轮转文件，可重复调用。
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}
	var handler slog.Handler
	if b.format == "json" {
		handler = slog.NewJSONHandler(b.output, opts)
	} else {
		handler = slog.NewTextHandler(b.output, opts)
	}
	if b.enableEnrich {
		handler = &EnrichHandler{base: handler}
	}
	if len(b.attrs) > 0 {
		handler = handler.WithAttrs(b.attrs)
	}

	logger := &xlogger{
		handler:    handler,
		levelVar:   b.levelVar,
		onError:    b.onError,
		errorCount: new(atomic.Uint64),
		addSource:  b.addSource,
	}

	var once sync.Once
	rotator := b.rotator
	cleanup := func() error {
		var err error
		once.Do(func() {
			if rotator != nil {
				err = rotator.Close()
			}
		})
		return err
	}
	return logger, cleanup, nil
}
