package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestProductChanged(t *testing.T) {
	ctx := context.Background()
	svc, _, reg := newTestService(t)
	products := reg.MustCache(CacheProducts)

	require.True(t, products.Set(ProductKey("p1"), Product{ID: "p1"}))
	require.True(t, products.Set(ProductKey("p2"), Product{ID: "p2"}))
	require.True(t, products.Set(ProductListKey(ProductQuery{Page: 1, PageSize: 20}), ProductPage{}))
	require.True(t, products.Set(ProductListKey(ProductQuery{CategoryID: "c1", Page: 1, PageSize: 20}), ProductPage{}))

	assert.Equal(t, 3, svc.ProductChanged(ctx, "p1"))
	assert.Equal(t, []string{ProductKey("p2")}, products.Keys())

	assert.Equal(t, 1, svc.ProductsChanged(ctx))
	assert.Empty(t, products.Keys())
}

func TestCategoryChanged(t *testing.T) {
	ctx := context.Background()
	svc, _, reg := newTestService(t)
	products := reg.MustCache(CacheProducts)
	categories := reg.MustCache(CacheCategories)

	inShoes := ProductListKey(ProductQuery{CategoryID: "shoes", Page: 2, PageSize: 20, Sort: SortPriceAsc})
	onlyShoes := ProductListKey(ProductQuery{CategoryID: "shoes", Page: 1, PageSize: 20})
	inHats := ProductListKey(ProductQuery{CategoryID: "hats", Page: 1, PageSize: 20})
	subShoes := ProductListKey(ProductQuery{CategoryID: "shoes-kids", Page: 1, PageSize: 20})
	unfiltered := ProductListKey(ProductQuery{Page: 1, PageSize: 20})
	for _, k := range []string{inShoes, onlyShoes, inHats, subShoes, unfiltered, ProductKey("p1")} {
		require.True(t, products.Set(k, ProductPage{}))
	}
	require.True(t, categories.Set(CategoriesKey(), []Category{{ID: "shoes"}}))

	assert.Equal(t, 3, svc.CategoryChanged(ctx, "shoes"))
	assert.ElementsMatch(t, []string{inHats, subShoes, unfiltered, ProductKey("p1")}, products.Keys())
	assert.Empty(t, categories.Keys())
}

func TestUserScopedInvalidation(t *testing.T) {
	ctx := context.Background()
	svc, _, reg := newTestService(t)
	orders := reg.MustCache(CacheOrders)
	carts := reg.MustCache(CacheCarts)
	addresses := reg.MustCache(CacheAddresses)

	for _, k := range []string{OrdersKey("u1", 1, 20), OrdersKey("u1", 2, 20), OrderKey("u1", "o1"), OrdersKey("u10", 1, 20), OrderKey("u2", "o2")} {
		require.True(t, orders.Set(k, OrderPage{}))
	}
	require.True(t, carts.Set(CartKey("u1"), Cart{UserID: "u1"}))
	require.True(t, carts.Set(CartKey("u2"), Cart{UserID: "u2"}))
	require.True(t, addresses.Set(AddressesKey("u1"), []Address{}))

	assert.Equal(t, 4, svc.OrderChanged(ctx, "u1"))
	assert.ElementsMatch(t, []string{OrdersKey("u10", 1, 20), OrderKey("u2", "o2")}, orders.Keys())
	assert.Equal(t, []string{CartKey("u2")}, carts.Keys())

	assert.Equal(t, 1, svc.AddressesChanged(ctx, "u1"))
	assert.Equal(t, 0, svc.AddressesChanged(ctx, "u1"))
	assert.Equal(t, 0, svc.CartChanged(ctx, "nobody"))
}

func TestInvalidationThenRead(t *testing.T) {
	ctx := context.Background()
	svc, src, _ := newTestService(t)

	gomock.InOrder(
		src.EXPECT().Product(gomock.Any(), "p1").Return(Product{ID: "p1", Price: 10}, nil),
		src.EXPECT().Product(gomock.Any(), "p1").Return(Product{ID: "p1", Price: 12}, nil),
	)

	p, err := svc.Product(ctx, "p1")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, p.Price, 1e-9)

	svc.ProductChanged(ctx, "p1")

	p, err = svc.Product(ctx, "p1")
	require.NoError(t, err)
	assert.InDelta(t, 12.0, p.Price, 1e-9)
}
