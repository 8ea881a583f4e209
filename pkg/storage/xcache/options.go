package xcache

import (
	"fmt"
	"time"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/observability/xmetrics"
	"github.com/omeyang/shopcache/pkg/util/xflight"
)

const (
	// DefaultTTL 未配置 TTL 时的默认条目生存期。
	DefaultTTL = 5 * time.Minute

	// DefaultMaxEntries 未配置时的默认条目数上限。
	DefaultMaxEntries = 1000

	// DefaultMaxBytes 未配置时的默认字节预算（32MiB）。
	DefaultMaxBytes = 32 << 20

	// DefaultSweepInterval 默认清扫间隔。
	DefaultSweepInterval = 2 * time.Minute

	// EntryFraction 单条上限为 MaxBytes/EntryFraction。
	EntryFraction = 10

	maxEntriesLimit = 1 << 24
	closeWait       = 5 * time.Second
)

// Config 单个缓存实例的配置。零值字段使用默认值。
type Config struct {
	// Name 实例名，用于注册表、日志和指标。必填。
	Name string `koanf:"name" json:"name"`

	// TTL 默认条目生存期。0 使用 DefaultTTL，负值无效。
	TTL time.Duration `koanf:"ttl" json:"ttl"`

	// MaxEntries 条目数上限。0 使用 DefaultMaxEntries。
	MaxEntries int `koanf:"max_entries" json:"max_entries"`

	// MaxBytes 字节预算，按存储后的大小计算。0 使用 DefaultMaxBytes。
	MaxBytes int64 `koanf:"max_bytes" json:"max_bytes"`

	// Compress 是否对大于压缩阈值的值启用压缩。
	Compress bool `koanf:"compress" json:"compress"`

	// SweepInterval 后台清扫间隔。0 使用 DefaultSweepInterval，负值禁用清扫。
	SweepInterval time.Duration `koanf:"sweep_interval" json:"sweep_interval"`
}

// withDefaults 返回填充默认值后的副本。
func (c Config) withDefaults() Config {
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

// Validate 校验配置（先填充默认值）。
func (c Config) Validate() error {
	c = c.withDefaults()
	switch {
	case c.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	case c.TTL < 0:
		return fmt.Errorf("%w: ttl must not be negative, got %s", ErrInvalidConfig, c.TTL)
	case c.MaxEntries < 0 || c.MaxEntries > maxEntriesLimit:
		return fmt.Errorf("%w: max_entries must be in [1, %d], got %d", ErrInvalidConfig, maxEntriesLimit, c.MaxEntries)
	case c.MaxBytes < EntryFraction:
		return fmt.Errorf("%w: max_bytes must be at least %d, got %d", ErrInvalidConfig, EntryFraction, c.MaxBytes)
	}
	return nil
}

// EntryLimit 单条允许的最大存储字节数。
func (c Config) EntryLimit() int64 {
	return c.withDefaults().MaxBytes / EntryFraction
}

// Option 配置缓存实例的可选项，也可传给 NewRegistry 作用于全部实例。
type Option func(*options)

type options struct {
	logger      xlog.Logger
	now         func() time.Time
	loadTimeout time.Duration
	observer    xmetrics.Observer
	recorder    *xmetrics.Recorder
	codecOpts   []CodecOption
}

func defaultOptions() options {
	return options{
		logger:      xlog.Default(),
		now:         time.Now,
		loadTimeout: xflight.DefaultTimeout,
	}
}

// WithLogger 设置 logger。内部错误以 Warn 记录，淘汰以 Debug 记录。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock 替换时间源，用于测试 TTL。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLoadTimeout 设置 GetOrSet 中 compute 的独立超时。
// 0 禁用超时，负值使用默认 30s。超时后槽位释放，等待者收到 context.DeadlineExceeded。
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) {
		o.loadTimeout = d
	}
}

// WithObserver 为每次 compute 创建观测跨度。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithRecorder 把全部缓存事件计入 Recorder。
func WithRecorder(r *xmetrics.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithCodecOptions 配置实例使用的编解码器。
func WithCodecOptions(opts ...CodecOption) Option {
	return func(o *options) {
		o.codecOpts = append(o.codecOpts, opts...)
	}
}

// EntryOption 单次写入的可选项。
type EntryOption func(*entryOptions)

type entryOptions struct {
	ttl      time.Duration
	compress bool
}

// TTL 覆盖本次写入的生存期，d <= 0 时使用实例默认值。
func TTL(d time.Duration) EntryOption {
	return func(o *entryOptions) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// Compress 覆盖本次写入是否允许压缩。
func Compress(enable bool) EntryOption {
	return func(o *entryOptions) {
		o.compress = enable
	}
}
