package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/observability/xsampling"
	"github.com/omeyang/shopcache/pkg/storage/xcache"
)

// HealthChecker 依赖健康检查，返回非 nil 时 /healthz 报 503。
type HealthChecker func(ctx context.Context) error

// Deps 运维接口的依赖。
type Deps struct {
	Registry *xcache.Registry
	Health   HealthChecker       // nil 表示始终健康
	Gatherer prometheus.Gatherer // nil 时 /metrics 返回 404
	Logger   xlog.Logger         // nil 使用 xlog.Default()

	// LogSampler 决定是否记录成功请求的访问日志，nil 全部记录。
	// 状态码 >= 400 的请求总是记录。
	LogSampler xsampling.Sampler
}

// New 创建挂好路由和中间件的 http.Handler。
func New(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = xlog.Default()
	}
	if deps.LogSampler == nil {
		deps.LogSampler = xsampling.Always()
	}
	s := &server{deps: deps, logger: deps.Logger.With(xlog.Component("admin"))}

	r := chi.NewRouter()
	r.Use(s.recovery)
	r.Use(s.requestID)
	r.Use(s.logging)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/caches", func(r chi.Router) {
		r.Get("/", s.handleListCaches)
		r.Get("/{name}", s.handleGetCache)
		r.Delete("/{name}", s.handleClearCache)
		r.Post("/{name}/invalidate", s.handleInvalidate)
	})
	r.Get("/keys", s.handleKeys)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

type server struct {
	deps   Deps
	logger xlog.Logger
}
