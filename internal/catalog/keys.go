package catalog

import (
	"strings"

	"github.com/omeyang/shopcache/pkg/util/xkey"
)

// 缓存实例名，与 xcache.DefaultConfigs 一致。
const (
	CacheProducts   = "products"
	CacheCategories = "categories"
	CacheAddresses  = "addresses"
	CacheCarts      = "carts"
	CacheOrders     = "orders"
)

// 键前缀。商品列表单独使用子前缀，便于整体失效。
const (
	prefixProduct     = "products"
	prefixProductList = "products:list"
	prefixCategories  = "categories"
	prefixAddresses   = "addresses"
	prefixCart        = "carts"
	prefixOrders      = "orders"
)

// ProductKey 单个商品的缓存键。
func ProductKey(id string) string {
	return xkey.Build(prefixProduct, map[string]any{"id": id})
}

// ProductListKey 商品列表的缓存键，q 应先经过 Normalize。
func ProductListKey(q ProductQuery) string {
	return xkey.Build(prefixProductList, q.params())
}

// CategoriesKey 分类列表的缓存键。
func CategoriesKey() string {
	return xkey.Build(prefixCategories, nil)
}

// AddressesKey 用户地址列表的缓存键。
func AddressesKey(userID string) string {
	return xkey.Build(prefixAddresses, map[string]any{"user": userID})
}

// CartKey 用户购物车的缓存键。
func CartKey(userID string) string {
	return xkey.Build(prefixCart, map[string]any{"user": userID})
}

// OrdersKey 用户订单列表某一页的缓存键。
func OrdersKey(userID string, page, size int64) string {
	return xkey.Build(prefixOrders, map[string]any{"user": userID, "page": page, "size": size})
}

// OrderKey 单个订单的缓存键。键中带用户，用户维度的失效可以覆盖到它。
func OrderKey(userID, orderID string) string {
	return xkey.Build(prefixOrders, map[string]any{"user": userID, "id": orderID})
}

// pairGlob 返回匹配 prefix 下含参数 name=value 的全部键的 glob。
// 键的参数按名排序以 & 连接，目标参数可能位于开头、中间或末尾，也可能是唯一参数。
func pairGlob(prefix, name string, value any) string {
	pair := strings.TrimPrefix(xkey.Build(prefix, map[string]any{name: value}), xkey.Prefix(prefix))
	p := xkey.Prefix(prefix)
	return "{" + strings.Join([]string{
		p + pair,
		p + pair + "&*",
		p + "*&" + pair,
		p + "*&" + pair + "&*",
	}, ",") + "}"
}
