// Package xbreaker 基于 sony/gobreaker/v2 的熔断器，保护文档数据库等下游调用。
//
// 熔断器拒绝的请求返回 [*BreakerError]，其 Retryable() 为 false，
// 与 xretry 组合时不会对拒绝进行退避重试。推荐的组合顺序是重试包住熔断：
//
//	err := retryer.Do(ctx, func(ctx context.Context) error {
//		return breaker.Do(ctx, func(ctx context.Context) error { return query(ctx) })
//	})
package xbreaker
