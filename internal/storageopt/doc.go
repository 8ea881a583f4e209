// Package storageopt 提供文档库访问层共享的选项和工具函数。
//
// 本包是 internal 包，仅供 pkg/storage/xmongo 使用：
//   - 健康检查超时
//   - 分页参数校验与总页数计算
//   - 慢查询检测（同步钩子）
//   - 原子统计计数器
package storageopt
