// Package xsampling 提供日志采样策略。
//
// Sampler.ShouldSample(ctx) 决定一条记录是否输出：
//
//   - Always() / Never()：全采样 / 不采样
//   - NewRateSampler(rate)：按固定比率随机采样
//   - NewKeyBasedSampler(rate, keyFunc)：按 key 一致性采样，同一 key 的决策恒定
//
// KeyBasedSampler 使用 xxhash，同一 key（如 request_id）在所有进程中得到相同决策，
// 因此一次请求经过的各个组件要么都记录，要么都不记录。
package xsampling
