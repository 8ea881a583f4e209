// Package xconf 基于 koanf 的配置加载器，负责 YAML/JSON 文件和字节数据的
// 加载、反序列化、并发安全的重载以及文件监视。
//
// 不负责字段校验和默认值注入，这些由各组件自己的 Config.Validate 完成。
//
// # 快照语义
//
// Reload 解析成功后原子替换内部 koanf 实例，解析失败时保留旧配置。
// Client() 返回的指针在 Reload 后仍可用，但指向旧快照，建议每次使用时重新获取。
//
// # 监视
//
// [Watcher] 监视配置文件所在目录（兼容编辑器的原子替换写入），防抖后调用 Reload
// 并通知回调。Run(ctx) 阻塞直到 ctx 结束，可直接作为 xrun 服务运行。
package xconf
