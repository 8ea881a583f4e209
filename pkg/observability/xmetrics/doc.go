// Package xmetrics 提供 metrics 与 tracing 的最小接口和 OpenTelemetry 实现。
//
// 业务代码只依赖 [Observer]/[Span]；[NewOTelObserver] 基于全局或注入的
// TracerProvider/MeterProvider 创建实现。[Recorder] 统计缓存事件。
//
//	obs, _ := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xcache",
//		Operation: "compute",
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// # 指标
//
//   - shopcache.operation.total     (component, operation, status)
//   - shopcache.operation.duration  (component, operation, status)，单位秒
//   - shopcache.cache.events        (cache, event, reason)
package xmetrics
