package catalog

import (
	"context"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/storage/xcache"
	"github.com/omeyang/shopcache/pkg/util/xkey"
)

// 以下通知方法由写路径在提交后调用，返回被移除的条目数。

// ProductChanged 商品更新或删除：失效该商品和所有商品列表。
func (s *Service) ProductChanged(ctx context.Context, id string) int {
	n := 0
	if s.products.Delete(ProductKey(id)) {
		n++
	}
	n += s.products.InvalidatePattern(xcache.Prefix(xkey.Prefix(prefixProductList)))
	s.logInvalidation(ctx, CacheProducts, "product_changed", n)
	return n
}

// ProductsChanged 批量导入等整体变更：清空商品实例。
func (s *Service) ProductsChanged(ctx context.Context) int {
	n := len(s.products.Keys())
	s.products.Clear()
	s.logInvalidation(ctx, CacheProducts, "products_changed", n)
	return n
}

// CategoryChanged 分类变更：失效分类列表和按该分类筛选的商品列表。
func (s *Service) CategoryChanged(ctx context.Context, id string) int {
	n := 0
	if s.categories.Delete(CategoriesKey()) {
		n++
	}
	n += s.invalidateGlob(ctx, s.products, pairGlob(prefixProductList, "category", id))
	s.logInvalidation(ctx, CacheCategories, "category_changed", n)
	return n
}

// AddressesChanged 用户地址增删改。
func (s *Service) AddressesChanged(ctx context.Context, userID string) int {
	n := 0
	if s.addresses.Delete(AddressesKey(userID)) {
		n++
	}
	s.logInvalidation(ctx, CacheAddresses, "addresses_changed", n)
	return n
}

// CartChanged 购物车变更。
func (s *Service) CartChanged(ctx context.Context, userID string) int {
	n := 0
	if s.carts.Delete(CartKey(userID)) {
		n++
	}
	s.logInvalidation(ctx, CacheCarts, "cart_changed", n)
	return n
}

// OrderChanged 下单或订单状态变化：失效该用户的全部订单列表页和订单详情。
// 下单同时清空购物车。
func (s *Service) OrderChanged(ctx context.Context, userID string) int {
	n := s.invalidateGlob(ctx, s.orders, pairGlob(prefixOrders, "user", userID))
	n += s.CartChanged(ctx, userID)
	s.logInvalidation(ctx, CacheOrders, "order_changed", n)
	return n
}

// invalidateGlob 编译失败时清空整个实例，宁可多失效。
func (s *Service) invalidateGlob(ctx context.Context, c *xcache.Cache, pattern string) int {
	m, err := xcache.Glob(pattern)
	if err != nil {
		s.logger.Warn(ctx, "invalid invalidation pattern, clearing cache", xlog.Err(err), xlog.Key(pattern))
		n := len(c.Keys())
		c.Clear()
		return n
	}
	return c.InvalidatePattern(m)
}

func (s *Service) logInvalidation(ctx context.Context, cache, reason string, n int) {
	s.logger.Debug(ctx, "cache invalidated", xlog.Cache(cache), xlog.Reason(reason), xlog.Count(int64(n)))
}
