package xconf

import "github.com/knadh/koanf/v2"

// Format 配置格式。
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 配置接口。
type Config interface {
	// Client 返回当前快照的 koanf 实例。
	Client() *koanf.Koanf

	// Unmarshal 将 path 下的配置反序列化到 target，path 为空时反序列化整个配置。
	Unmarshal(path string, target any) error

	// Reload 重新读取配置文件。并发调用被串行化；失败时保留旧配置。
	// 从字节数据创建的 Config 返回 [ErrNotFromFile]。
	Reload() error

	// Path 返回配置文件路径，从字节数据创建时为空。
	Path() string

	Format() Format
}

// MustUnmarshal 与 Config.Unmarshal 相同，失败时 panic。只用于启动阶段。
func MustUnmarshal(cfg Config, path string, target any) {
	if err := cfg.Unmarshal(path, target); err != nil {
		panic(err)
	}
}
