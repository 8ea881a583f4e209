package catalog

import "context"

//go:generate mockgen -source=source.go -destination=mock_source_test.go -package=catalog

// Source 店面数据的权威来源。未找到时返回包装 ErrNotFound 的错误。
type Source interface {
	Product(ctx context.Context, id string) (Product, error)
	Products(ctx context.Context, q ProductQuery) (ProductPage, error)
	Categories(ctx context.Context) ([]Category, error)
	Addresses(ctx context.Context, userID string) ([]Address, error)
	// Cart 用户尚无购物车时返回空购物车。
	Cart(ctx context.Context, userID string) (Cart, error)
	Orders(ctx context.Context, userID string, page, pageSize int64) (OrderPage, error)
	Order(ctx context.Context, orderID string) (Order, error)
}
