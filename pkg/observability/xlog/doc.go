// Package xlog 提供基于 log/slog 的结构化日志。
//
// # 设计
//
//   - 所有方法强制传入 context.Context，EnrichHandler 从中提取 request_id 和 OTel trace_id/span_id
//   - 方法签名只接受 slog.Attr，避免隐式 key-value 转换
//   - 级别可在运行时调整（SetLevel），派生 logger 共享同一个 LevelVar
//   - Build 返回 cleanup 函数，负责关闭轮转文件
//
// # 快速开始
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/shopcache/app.log", xlog.WithMaxSizeMB(100)).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
//	logger.Info(ctx, "cache ready", xlog.Cache("products"), xlog.Count(0))
//
// # 全局 Logger
//
// [Default] 懒初始化一个输出到 stderr 的 Info 级别 logger，面向 CLI 等简单场景；
// 服务端推荐显式注入 Logger。
package xlog
