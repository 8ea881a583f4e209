// Package xmongo 提供 MongoDB 文档库的只读包装器。
//
// xmongo 不包装驱动的全部 API，只提供缓存回源需要的部分：
//   - Connect / New：按配置建立连接或包装已有客户端
//   - Health：带超时的 Ping
//   - FindOne：单文档查询，未命中返回 ErrNotFound
//   - FindPage：分页查询（storageopt 校验页码，PageSize 上限 storageopt.MaxPageSize）
//   - Stats：查询、错误、慢查询计数
//
// 每次查询经过 xmetrics.Observer 观测，并按阈值触发慢查询钩子。
// 调用方未设置 deadline 时附加 QueryTimeout 兜底超时。
//
// Close 可重复调用，首次断连，之后返回 ErrClosed。
// 除 Client 和 Stats 外的方法在 Close 后均返回 ErrClosed。
//
// IsTransient 判断网络错误和超时，供 xretry 决定是否重试。
package xmongo
