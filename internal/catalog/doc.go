// Package catalog 是店面读路径的缓存侧服务。
//
// Service 把商品、分类、地址、购物车、订单的读取委托给注册表中对应的缓存实例：
// 先用 xkey 构造规范键，再经 xcache.GetOrSet 回源 Source。
// 同一键的并发未命中只回源一次，回源失败不写缓存。
//
// 写路径在提交后调用 ProductChanged、CategoryChanged、AddressesChanged 等通知方法，
// 由 Service 删除受影响的键或按模式批量失效。缓存失效永不返回错误。
//
// MongoSource 是基于 xmongo 的 Source 实现，每次查询经熔断器保护，
// 瞬时错误按 xretry 退避重试，熔断拒绝不重试。
package catalog
