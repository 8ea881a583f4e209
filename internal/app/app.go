package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/shopcache/internal/admin"
	"github.com/omeyang/shopcache/internal/catalog"
	"github.com/omeyang/shopcache/pkg/config/xconf"
	"github.com/omeyang/shopcache/pkg/lifecycle/xrun"
	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/observability/xmetrics"
	"github.com/omeyang/shopcache/pkg/observability/xsampling"
	"github.com/omeyang/shopcache/pkg/resilience/xbreaker"
	"github.com/omeyang/shopcache/pkg/storage/xcache"
	"github.com/omeyang/shopcache/pkg/storage/xmongo"
)

const instrumentationName = "github.com/omeyang/shopcache"

// Option 配置 Build。
type Option func(*buildOptions)

type buildOptions struct {
	logger         xlog.LoggerWithLevel
	mongo          xmongo.Mongo
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

// WithLogger 使用已有的 logger，忽略 log 配置段。
func WithLogger(l xlog.LoggerWithLevel) Option {
	return func(o *buildOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMongo 使用已有的文档库连接，不按 mongo 配置段连接。
// App.Close 仍会关闭它。
func WithMongo(m xmongo.Mongo) Option {
	return func(o *buildOptions) {
		o.mongo = m
	}
}

// WithMeterProvider 设置缓存事件和计算观测使用的 MeterProvider，默认全局。
func WithMeterProvider(p metric.MeterProvider) Option {
	return func(o *buildOptions) {
		o.meterProvider = p
	}
}

// WithTracerProvider 设置计算观测使用的 TracerProvider，默认全局。
func WithTracerProvider(p trace.TracerProvider) Option {
	return func(o *buildOptions) {
		o.tracerProvider = p
	}
}

// App 组装完成的进程。
type App struct {
	cfg        *Config
	logger     xlog.LoggerWithLevel
	logCleanup func() error

	registry *xcache.Registry
	mongo    xmongo.Mongo
	catalog  *catalog.Service
	metrics  *prometheus.Registry
	handler  http.Handler
	reporter *Reporter
}

// Build 按配置组装进程。失败时释放已创建的资源。
func Build(ctx context.Context, cfg *Config, opts ...Option) (a *App, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &buildOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	a = &App{cfg: cfg, logger: o.logger, logCleanup: func() error { return nil }}
	defer func() {
		if err != nil {
			err = errors.Join(err, a.Close(context.WithoutCancel(ctx)))
			a = nil
		}
	}()

	if a.logger == nil {
		if a.logger, a.logCleanup, err = newLogger(cfg.Log); err != nil {
			return a, err
		}
	}

	otelOpts := []xmetrics.Option{xmetrics.WithInstrumentationName(instrumentationName)}
	if o.meterProvider != nil {
		otelOpts = append(otelOpts, xmetrics.WithMeterProvider(o.meterProvider))
	}
	if o.tracerProvider != nil {
		otelOpts = append(otelOpts, xmetrics.WithTracerProvider(o.tracerProvider))
	}
	observer, err := xmetrics.NewOTelObserver(otelOpts...)
	if err != nil {
		return a, err
	}
	recorder, err := xmetrics.NewRecorder(otelOpts...)
	if err != nil {
		return a, err
	}

	a.registry, err = xcache.NewRegistry(cfg.CacheConfigs(),
		xcache.WithLogger(a.logger),
		xcache.WithLoadTimeout(cfg.Loader.Timeout),
		xcache.WithObserver(observer),
		xcache.WithRecorder(recorder),
	)
	if err != nil {
		return a, err
	}

	a.mongo = o.mongo
	if a.mongo == nil {
		if a.mongo, err = xmongo.Connect(ctx, cfg.Mongo, xmongo.WithLogger(a.logger)); err != nil {
			return a, err
		}
	}

	src, err := catalog.NewMongoSource(a.mongo,
		catalog.WithBreaker(catalog.NewSourceBreaker(cfg.Breaker, xbreaker.WithOnStateChange(a.logBreakerState))),
		catalog.WithRetryer(catalog.NewSourceRetryer(cfg.Retry, a.logger)),
		catalog.WithSourceLogger(a.logger),
	)
	if err != nil {
		return a, err
	}
	if a.catalog, err = catalog.NewService(a.registry, src, catalog.WithLogger(a.logger)); err != nil {
		return a, err
	}

	a.metrics = prometheus.NewRegistry()
	a.metrics.MustRegister(
		admin.NewStatsCollector(a.registry),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sampler, err := xsampling.NewKeyBasedSampler(cfg.Admin.LogSampleRate, xlog.RequestID)
	if err != nil {
		return a, err
	}
	a.handler = admin.New(admin.Deps{
		Registry:   a.registry,
		Health:     a.mongo.Health,
		Gatherer:   a.metrics,
		Logger:     a.logger,
		LogSampler: sampler,
	})

	if cfg.Report.Enabled() {
		if a.reporter, err = NewReporter(a.registry, a.logger, cfg.Report.Schedule); err != nil {
			return a, err
		}
	}

	a.logger.Info(ctx, "shopcache assembled",
		xlog.Count(int64(len(a.registry.Names()))),
		slog.String("database", a.mongo.Database()),
		slog.String("admin_addr", cfg.Admin.Addr),
	)
	return a, nil
}

func newLogger(cfg LogConfig) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format).
		SetAttrs(slog.String("service", "shopcache"))
	if cfg.File != "" {
		b = b.SetRotation(cfg.File)
	}
	return b.Build()
}

func (a *App) logBreakerState(name string, from, to xbreaker.State) {
	a.logger.Warn(context.Background(), "breaker state changed",
		xlog.Component(name), slog.String("from", from.String()), slog.String("to", to.String()))
}

// Config 返回生效的配置。
func (a *App) Config() *Config { return a.cfg }

// Logger 返回进程 logger。
func (a *App) Logger() xlog.LoggerWithLevel { return a.logger }

// Registry 返回缓存注册表。
func (a *App) Registry() *xcache.Registry { return a.registry }

// Catalog 返回目录服务。
func (a *App) Catalog() *catalog.Service { return a.catalog }

// Handler 返回运维接口。
func (a *App) Handler() http.Handler { return a.handler }

// Services 返回需要长期运行的服务：运维 HTTP、统计报告，以及 src 非 nil 时的配置热加载。
func (a *App) Services(src xconf.Config) ([]xrun.Service, error) {
	server := &http.Server{
		Addr:              a.cfg.Admin.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	svcs := []xrun.Service{xrun.ServiceFunc(xrun.HTTPServer(server, a.cfg.Admin.ShutdownTimeout))}
	if a.reporter != nil {
		svcs = append(svcs, a.reporter)
	}
	if src != nil {
		w, err := a.WatchConfig(src)
		if err != nil {
			return nil, err
		}
		svcs = append(svcs, w)
	}
	return svcs, nil
}

// Close 关闭注册表、文档库连接和日志文件，可重复调用。
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.registry != nil {
		errs = append(errs, a.registry.Close(ctx))
	}
	if a.mongo != nil {
		errs = append(errs, a.mongo.Close(ctx))
		a.mongo = nil
	}
	if a.logCleanup != nil {
		errs = append(errs, a.logCleanup())
	}
	return errors.Join(errs...)
}
