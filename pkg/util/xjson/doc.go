// Package xjson 提供 JSON 序列化工具函数。
//
// # 功能概览
//
//   - [Canonical]: 规范化序列化。map 键按字典序输出，不转义 HTML 字符，
//     同一逻辑值总是得到相同字节，适合作为缓存负载和缓存键的组成部分。
//   - [PrettyE]: 将任意值序列化为格式化的 JSON 字符串，返回 (string, error)。
//   - [Pretty]: 便捷版本，用于日志和调试输出。失败时返回
//     "<marshal error: ...>" 标记字符串（非合法 JSON）。
//
// # 注意事项
//
// 规范化依赖 [encoding/json] 对 map 键排序的既有行为；结构体字段按声明顺序输出。
// NaN、Inf、chan、func 等不可表示的值返回 [ErrMarshal] 包装的错误。
package xjson
