package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

type koanfConfig struct {
	k        atomic.Pointer[koanf.Koanf]
	reloadMu sync.Mutex
	path     string
	format   Format
	opts     *Options
}

// New 从文件创建配置，按扩展名（.yaml/.yml/.json）识别格式。空文件得到空配置。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	c := &koanfConfig{path: path, format: format, opts: applyOptions(opts)}
	k, err := c.readFile()
	if err != nil {
		return nil, err
	}
	c.k.Store(k)
	return c, nil
}

// NewFromBytes 从字节数据创建配置，需显式指定格式。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if !isValidFormat(format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	c := &koanfConfig{format: format, opts: applyOptions(opts)}
	k, err := c.parse(data)
	if err != nil {
		return nil, err
	}
	c.k.Store(k)
	return c, nil
}

// Load 从文件加载并整体反序列化到 target。
func Load(path string, target any, opts ...Option) (Config, error) {
	cfg, err := New(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Unmarshal("", target); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (c *koanfConfig) Client() *koanf.Koanf {
	return c.k.Load()
}

func (c *koanfConfig) Unmarshal(path string, target any) error {
	if err := c.k.Load().UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: c.opts.Tag}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

func (c *koanfConfig) Reload() error {
	if c.path == "" {
		return ErrNotFromFile
	}
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	k, err := c.readFile()
	if err != nil {
		return err
	}
	c.k.Store(k)
	return nil
}

func (c *koanfConfig) Path() string { return c.path }

func (c *koanfConfig) Format() Format { return c.format }

func (c *koanfConfig) readFile() (*koanf.Koanf, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return c.parse(data)
}

func (c *koanfConfig) parse(data []byte) (*koanf.Koanf, error) {
	k := koanf.New(c.opts.Delim)
	if len(data) == 0 {
		return k, nil
	}
	var parser koanf.Parser
	switch c.format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, ErrUnsupportedFormat
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return k, nil
}

// DetectFormat 按扩展名识别配置格式。
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func isValidFormat(format Format) bool {
	return format == FormatYAML || format == FormatJSON
}
