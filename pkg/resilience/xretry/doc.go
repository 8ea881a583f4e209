// Package xretry 基于 avast/retry-go/v5 的重试执行器，用于文档数据库等下游的瞬时失败。
//
// 错误分类：
//   - 实现 [RetryableError] 的错误按 Retryable() 判定（熔断器拒绝返回 false）
//   - [Permanent] 包装的错误不重试
//   - context.Canceled / context.DeadlineExceeded 不重试
//   - 其余错误默认可重试
package xretry
