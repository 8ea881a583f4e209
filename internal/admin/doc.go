// Package admin 提供缓存实例的运维 HTTP 接口。
//
// 路由：
//
//	GET    /healthz                     存活与依赖检查
//	GET    /caches                      全部实例统计
//	GET    /caches/{name}               单个实例统计
//	DELETE /caches/{name}               清空实例
//	POST   /caches/{name}/invalidate    按 glob 或 prefix 批量失效
//	GET    /keys?cache=&glob=&limit=    列出键
//	GET    /metrics                     Prometheus 指标
//
// 全局中间件依次为 recovery、requestID、logging。成功请求的访问日志按
// Deps.LogSampler 采样，状态码 >= 400 的请求总是记录。
package admin
