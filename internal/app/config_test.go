package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/shopcache/pkg/config/xconf"
	"github.com/omeyang/shopcache/pkg/storage/xcache"
)

const sampleYAML = `
log:
  level: debug
  format: json
loader:
  timeout: 5s
admin:
  addr: "127.0.0.1:9090"
  log_sample_rate: 0.25
report:
  schedule: "*/5 * * * *"
caches:
  products:
    ttl: 1m
    max_entries: 10
    max_bytes: 4096
  sessions:
    ttl: 30s
mongo:
  uri: mongodb://localhost:27017
  database: shop
  timeout: 2s
breaker:
  consecutive_failures: 3
  timeout: 10s
retry:
  attempts: 4
  initial_delay: 50ms
`

func fromYAML(t *testing.T, data string) (*Config, error) {
	t.Helper()
	src, err := xconf.NewFromBytes([]byte(data), xconf.FormatYAML)
	require.NoError(t, err)
	return FromSource(src)
}

func TestFromSource(t *testing.T) {
	cfg, err := fromYAML(t, sampleYAML)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5*time.Second, cfg.Loader.Timeout)
	assert.Equal(t, "127.0.0.1:9090", cfg.Admin.Addr)
	assert.InDelta(t, 0.25, cfg.Admin.LogSampleRate, 0)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Admin.ShutdownTimeout, "unset fields keep defaults")
	assert.Equal(t, "*/5 * * * *", cfg.Report.Schedule)
	assert.Equal(t, "shop", cfg.Mongo.Database)
	assert.Equal(t, 2*time.Second, cfg.Mongo.Timeout)
	assert.Equal(t, uint32(3), cfg.Breaker.ConsecutiveFailures)
	assert.Equal(t, 10*time.Second, cfg.Breaker.Timeout)
	assert.Equal(t, 4, cfg.Retry.Attempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Retry.InitialDelay)
}

func TestFromSource_Empty(t *testing.T) {
	cfg, err := fromYAML(t, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestCacheConfigs(t *testing.T) {
	cfg, err := fromYAML(t, sampleYAML)
	require.NoError(t, err)

	cfgs := cfg.CacheConfigs()
	names := make([]string, 0, len(cfgs))
	for _, c := range cfgs {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"products", "categories", "addresses", "carts", "orders", "sessions"}, names)

	assert.Equal(t, xcache.Config{Name: "products", TTL: time.Minute, MaxEntries: 10, MaxBytes: 4096}, cfgs[0])
	assert.Equal(t, xcache.DefaultConfigs()[1], cfgs[1])
	assert.Equal(t, 30*time.Second, cfgs[5].TTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"negative loader timeout", "loader:\n  timeout: -1s\n"},
		{"empty admin addr", "admin:\n  addr: \"\"\n"},
		{"bad sample rate", "admin:\n  log_sample_rate: 1.5\n"},
		{"bad schedule", "report:\n  schedule: \"every tuesday\"\n"},
		{"bad cache", "caches:\n  products:\n    ttl: -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromYAML(t, tt.yaml)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestReportConfig_Enabled(t *testing.T) {
	assert.True(t, ReportConfig{Schedule: "@every 1m"}.Enabled())
	assert.False(t, ReportConfig{Schedule: "OFF"}.Enabled())

	cfg, err := fromYAML(t, "report:\n  schedule: \"off\"\n")
	require.NoError(t, err)
	assert.False(t, cfg.Report.Enabled())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, src, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Path())
	assert.Equal(t, "debug", cfg.Log.Level)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, xconf.ErrLoadFailed)
}
