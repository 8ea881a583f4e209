// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xflight: 按 key 合并并发计算，等待者共享同一结果
//   - xjson: 规范化 JSON 编码（键有序）
//   - xkey: 缓存键规范化
package util
