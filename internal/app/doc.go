// Package app 组装 shopcache 进程：配置 → 日志 → 缓存注册表 → 文档库数据源
// → 目录服务 → 运维接口，并提供周期统计报告和配置热加载。
//
// 典型用法：
//
//	cfg, src, err := app.Load("shopcache.yaml")
//	a, err := app.Build(ctx, cfg)
//	defer a.Close(context.Background())
//	svcs, err := a.Services(src)
//	err = xrun.RunServicesWithOptions(ctx, opts, svcs...)
package app
