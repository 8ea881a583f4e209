package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/storage/xcache"
)

// Reporter 按 cron 周期把注册表统计写入日志。
type Reporter struct {
	reg    *xcache.Registry
	logger xlog.Logger
	cron   *cron.Cron
}

// NewReporter 创建报告器，schedule 支持五段 cron 表达式和 @every 等描述符。
func NewReporter(reg *xcache.Registry, logger xlog.Logger, schedule string) (*Reporter, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: nil registry", ErrInvalidConfig)
	}
	if logger == nil {
		logger = xlog.Default()
	}
	r := &Reporter{reg: reg, logger: logger.With(xlog.Component("reporter"))}

	cl := cronLogger{logger: r.logger}
	r.cron = cron.New(
		cron.WithParser(scheduleParser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := r.cron.AddFunc(schedule, func() { r.Report(context.Background()) }); err != nil {
		return nil, fmt.Errorf("%w: report.schedule: %w", ErrInvalidConfig, err)
	}
	return r, nil
}

// Report 立即输出一次统计。
func (r *Reporter) Report(ctx context.Context) {
	for _, s := range r.reg.Stats() {
		r.logger.Info(ctx, "cache stats",
			xlog.Cache(s.Name),
			slog.Int("entries", s.Entries),
			slog.Int64("bytes", s.Bytes),
			slog.Float64("utilization", s.Utilization),
			slog.Float64("hit_ratio", s.HitRatio()),
			slog.Uint64("hits", s.Hits),
			slog.Uint64("misses", s.Misses),
			slog.Uint64("evictions", s.Evictions),
			slog.Uint64("expirations", s.Expirations),
			slog.Uint64("errors", s.Errors),
		)
	}
}

// Run 启动调度直到 ctx 结束，返回前等待执行中的报告完成。
func (r *Reporter) Run(ctx context.Context) error {
	r.cron.Start()
	<-ctx.Done()
	<-r.cron.Stop().Done()
	return ctx.Err()
}

// cronLogger 把 cron 内部日志转到 xlog。
type cronLogger struct {
	logger xlog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(context.Background(), "cron: "+msg, kvAttrs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(context.Background(), "cron: "+msg, append(kvAttrs(keysAndValues), xlog.Err(err))...)
}

func kvAttrs(kv []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = append(attrs, slog.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return attrs
}
