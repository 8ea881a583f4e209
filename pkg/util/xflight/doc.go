// Package xflight 在 golang.org/x/sync/singleflight 之上提供按 key 合并的进程内并发调用。
//
// 同一 key 的并发 [Group.Do] 只执行一次 fn，所有调用方共享结果。
//
// # 特性
//
//   - 调用方通过 DoChan 在自己的 ctx 上等待：调用方取消只影响自己，不影响 fn 和其他等待者
//   - fn 运行在脱离调用方取消链的 ctx 上，但带独立超时（默认 30s）。
//     超时后槽位立即 Forget，等待者收到 [context.DeadlineExceeded]。
//     fn 可能仍在后台运行，应在返回前检查 ctx.Err() 决定是否提交副作用
//   - fn 的 panic 被恢复为 [*PanicError]，可用 errors.Is(err, [ErrPanic]) 判断
//   - Close 拒绝新调用并唤醒全部等待者，使其返回 [ErrClosed]
package xflight
