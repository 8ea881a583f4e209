package xlog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level 日志级别，底层即 slog.Level。
type Level slog.Level

const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// levelNames 配置中可写的级别名。空串视为 info，便于省略 log.level。
var levelNames = []struct {
	name  string
	level Level
}{
	{"debug", LevelDebug},
	{"info", LevelInfo},
	{"", LevelInfo},
	{"warn", LevelWarn},
	{"warning", LevelWarn},
	{"error", LevelError},
}

// ParseLevel 按 levelNames 解析级别，大小写不敏感，忽略首尾空白。
// 未知名字返回 LevelInfo 和包装了 [ErrInvalidConfig] 的错误。
func ParseLevel(s string) (Level, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, n := range levelNames {
		if n.name == want {
			return n.level, nil
		}
	}
	return LevelInfo, fmt.Errorf("%w: unknown level %q (want one of %s)",
		ErrInvalidConfig, s, strings.Join(LevelNames(), ", "))
}

// LevelNames 返回可接受的非空级别名。
func LevelNames() []string {
	out := make([]string, 0, len(levelNames))
	for _, n := range levelNames {
		if n.name != "" {
			out = append(out, n.name)
		}
	}
	return out
}

// String 输出 slog 的大写名称，如 "WARN" 或 "INFO+2"。
func (l Level) String() string {
	return slog.Level(l).String()
}
