// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展
//   - xmetrics: 统一观测接口和缓存事件计数（OpenTelemetry）
//   - xsampling: 日志采样策略
package observability
