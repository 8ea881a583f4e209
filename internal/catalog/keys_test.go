package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/shopcache/pkg/storage/xcache"
	"github.com/omeyang/shopcache/pkg/util/xkey"
)

func xkeyOnly(prefix, name string, value any) string {
	return xkey.Build(prefix, map[string]any{name: value})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "products:id=p1", ProductKey("p1"))
	assert.Equal(t, "categories:default", CategoriesKey())
	assert.Equal(t, "addresses:user=u1", AddressesKey("u1"))
	assert.Equal(t, "carts:user=u1", CartKey("u1"))
	assert.Equal(t, "orders:page=2&size=20&user=u1", OrdersKey("u1", 2, 20))
	assert.Equal(t, "orders:id=o1&user=u1", OrderKey("u1", "o1"))
	assert.Equal(t, "products:list:category=shoes&page=1&size=20",
		ProductListKey(ProductQuery{CategoryID: "shoes", Page: 1, PageSize: 20}))
}

func TestProductListKey_Normalized(t *testing.T) {
	a, err := ProductQuery{Search: "  Red Shoe "}.Normalize()
	require.NoError(t, err)
	b, err := ProductQuery{Search: "red shoe", Page: 1, PageSize: DefaultPageSize}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, ProductListKey(a), ProductListKey(b))
}

func TestPairGlob(t *testing.T) {
	m, err := xcache.Glob(pairGlob(prefixOrders, "user", "u 1"))
	require.NoError(t, err)

	tests := []struct {
		key  string
		want bool
	}{
		{OrdersKey("u 1", 1, 20), true},
		{OrderKey("u 1", "o1"), true},
		{xkeyOnly(prefixOrders, "user", "u 1"), true},
		{OrdersKey("u 10", 1, 20), false},
		{OrdersKey("xu 1", 1, 20), false},
		{CartKey("u 1"), false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.key))
		})
	}
}

func TestQueryNormalize(t *testing.T) {
	tests := []struct {
		name string
		q    ProductQuery
		ok   bool
	}{
		{"defaults", ProductQuery{}, true},
		{"price range", ProductQuery{MinPrice: 1, MaxPrice: 10}, true},
		{"min only", ProductQuery{MinPrice: 5}, true},
		{"inverted range", ProductQuery{MinPrice: 10, MaxPrice: 1}, false},
		{"negative price", ProductQuery{MinPrice: -1}, false},
		{"bad sort", ProductQuery{Sort: "x"}, false},
		{"page size too large", ProductQuery{PageSize: MaxPageSize + 1}, false},
		{"negative page", ProductQuery{Page: -2}, false},
		{"search too long", ProductQuery{Search: string(make([]byte, maxSearchLen+1))}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.q.Normalize()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidArgument)
			}
		})
	}
}
