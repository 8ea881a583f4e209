package app

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/shopcache/pkg/config/xconf"
	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/resilience/xbreaker"
	"github.com/omeyang/shopcache/pkg/resilience/xretry"
	"github.com/omeyang/shopcache/pkg/storage/xcache"
	"github.com/omeyang/shopcache/pkg/storage/xmongo"
)

// ErrInvalidConfig 表示进程配置无效。
var ErrInvalidConfig = errors.New("app: invalid config")

const (
	// DefaultAdminAddr 运维接口默认监听地址。
	DefaultAdminAddr = ":8080"

	// DefaultReportSchedule 统计报告默认周期。
	DefaultReportSchedule = "@every 1m"

	// DefaultShutdownTimeout HTTP 优雅关闭默认超时。
	DefaultShutdownTimeout = 10 * time.Second
)

// Config 进程配置。
type Config struct {
	Log    LogConfig    `koanf:"log" json:"log"`
	Loader LoaderConfig `koanf:"loader" json:"loader"`
	Admin  AdminConfig  `koanf:"admin" json:"admin"`
	Report ReportConfig `koanf:"report" json:"report"`

	// Caches 按实例名覆盖预置缓存，或新增实例。名称取 map 的键。
	Caches map[string]xcache.Config `koanf:"caches" json:"caches"`

	Mongo   xmongo.Config   `koanf:"mongo" json:"mongo"`
	Breaker xbreaker.Config `koanf:"breaker" json:"breaker"`
	Retry   xretry.Config   `koanf:"retry" json:"retry"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level  string `koanf:"level" json:"level"`
	Format string `koanf:"format" json:"format"`
	// File 非空时写入文件并按大小轮转。
	File   string `koanf:"file" json:"file"`
}

// LoaderConfig GetOrSet 计算配置。
type LoaderConfig struct {
	// Timeout compute 独立超时，0 禁用。
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// AdminConfig 运维接口配置。
type AdminConfig struct {
	Addr            string        `koanf:"addr" json:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
	// LogSampleRate 成功请求访问日志的采样比率，按 request_id 一致采样。
	LogSampleRate   float64       `koanf:"log_sample_rate" json:"log_sample_rate"`
}

// ReportConfig 统计报告配置。
type ReportConfig struct {
	// Schedule cron 表达式或 @every 描述符，"off" 禁用。
	Schedule string `koanf:"schedule" json:"schedule"`
}

// Enabled 报告是否启用。
func (c ReportConfig) Enabled() bool {
	return !strings.EqualFold(strings.TrimSpace(c.Schedule), "off")
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Loader: LoaderConfig{Timeout: 30 * time.Second},
		Admin:  AdminConfig{Addr: DefaultAdminAddr, ShutdownTimeout: DefaultShutdownTimeout, LogSampleRate: 1},
		Report: ReportConfig{Schedule: DefaultReportSchedule},
	}
}

// Load 读取配置文件，在默认配置之上反序列化并校验。
// 返回的 xconf.Config 可用于热加载。
func Load(path string) (*Config, xconf.Config, error) {
	src, err := xconf.New(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := FromSource(src)
	if err != nil {
		return nil, nil, err
	}
	return cfg, src, nil
}

// FromSource 从已加载的配置源构造 Config。
func FromSource(src xconf.Config) (*Config, error) {
	cfg := DefaultConfig()
	if err := src.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置。文档库配置在真正连接时校验。
func (c *Config) Validate() error {
	if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Loader.Timeout < 0 {
		return fmt.Errorf("%w: loader.timeout must not be negative", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Admin.Addr) == "" {
		return fmt.Errorf("%w: admin.addr is required", ErrInvalidConfig)
	}
	if c.Admin.LogSampleRate < 0 || c.Admin.LogSampleRate > 1 {
		return fmt.Errorf("%w: admin.log_sample_rate must be in [0, 1]", ErrInvalidConfig)
	}
	if c.Report.Enabled() {
		if _, err := parseSchedule(c.Report.Schedule); err != nil {
			return fmt.Errorf("%w: report.schedule: %w", ErrInvalidConfig, err)
		}
	}
	for _, cc := range c.CacheConfigs() {
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("%w: caches.%s: %w", ErrInvalidConfig, cc.Name, err)
		}
	}
	return nil
}

// CacheConfigs 合并预置实例与配置中的实例。同名配置整体替换预置项，
// 预置实例保持原顺序，新增实例按名称排序追加。
func (c *Config) CacheConfigs() []xcache.Config {
	defaults := xcache.DefaultConfigs()
	out := make([]xcache.Config, 0, len(defaults)+len(c.Caches))
	seen := make(map[string]bool, len(defaults))
	for _, d := range defaults {
		seen[d.Name] = true
		if cc, ok := c.Caches[d.Name]; ok {
			cc.Name = d.Name
			out = append(out, cc)
			continue
		}
		out = append(out, d)
	}
	for _, name := range slices.Sorted(maps.Keys(c.Caches)) {
		if seen[name] {
			continue
		}
		cc := c.Caches[name]
		cc.Name = name
		out = append(out, cc)
	}
	return out
}

func parseSchedule(spec string) (cron.Schedule, error) {
	return scheduleParser.Parse(spec)
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
