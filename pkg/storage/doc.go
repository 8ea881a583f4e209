// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xcache: 进程内缓存实例、编解码、并发计算合并、注册表
//   - xmongo: MongoDB 只读包装，带分页、慢查询检测和统计
package storage
