// Package xcache 提供进程内的字节预算 LRU 缓存，面向店铺前台的读多写少数据。
//
// # 特性
//
//   - 严格 LRU：按最近访问排序，超出条目数或字节预算时逐个淘汰最久未访问的条目
//   - 字节预算按存储后的大小（压缩后）计算；单条超过 MaxBytes/10 的值直接拒绝
//   - 每条目 TTL：读时惰性检查，后台清扫按过期时间堆逐条移除
//   - 大于 10KiB 的值可选 zstd 压缩（见 [Codec]）
//   - [GetOrSet] 对同一 key 的并发未命中只执行一次 compute（基于 xflight）
//   - [Cache.InvalidatePattern] 按正则、glob 或前缀批量失效
//   - [Bus] 发布 hit/miss/set/delete/evict/clear/invalidate_pattern/error 事件
//
// # 失败语义
//
// 缓存是尽力而为的优化层：Get/Set/Delete 等操作从不返回缓存层错误，
// 编解码失败、容量拒绝等只通过 error 事件上报并转为安全返回值。
// 唯一向调用方传递的错误是 compute 自身的错误（原样返回）以及参数错误 [ErrNilCompute]。
//
// # 快速开始
//
//	reg, err := xcache.NewRegistry(xcache.DefaultConfigs(), xcache.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer reg.Close(context.Background())
//
//	products := reg.MustCache("products")
//	key := xkey.Build("products", map[string]any{"id": id})
//	p, err := xcache.GetOrSet(ctx, products, key, func(ctx context.Context) (Product, error) {
//		return db.FindProduct(ctx, id)
//	})
package xcache
