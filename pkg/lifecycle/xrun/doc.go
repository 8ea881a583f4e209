// Package xrun 管理进程内多个服务的并发运行与协调关闭。
//
// 基于 errgroup：任一服务返回错误、收到系统信号或父 context 取消时，
// 其余服务都会收到取消。信号退出以 [*SignalError] 返回，可用
// errors.Is(err, [ErrSignal]) 判断。
//
//	err := xrun.RunServicesWithOptions(ctx, []xrun.Option{xrun.WithName("shopcache")},
//		xrun.ServiceFunc(xrun.HTTPServer(srv, 10*time.Second)),
//		xrun.ServiceFunc(reporter.Run),
//	)
//
// [Ticker] 把周期任务包装为服务函数，缓存的过期清扫即基于它。
package xrun
