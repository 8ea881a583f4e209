package catalog

import (
	"context"
	"fmt"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/storage/xcache"
)

// Service 缓存侧读服务。
type Service struct {
	src    Source
	logger xlog.Logger

	products   *xcache.Cache
	categories *xcache.Cache
	addresses  *xcache.Cache
	carts      *xcache.Cache
	orders     *xcache.Cache
}

// Option 配置 Service。
type Option func(*Service)

// WithLogger 设置日志。
func WithLogger(l xlog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService 创建服务。reg 中缺少的实例对应资源直接读 src，不做缓存。
func NewService(reg *xcache.Registry, src Source, opts ...Option) (*Service, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if src == nil {
		return nil, ErrNilSource
	}
	s := &Service{src: src, logger: xlog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.With(xlog.Component("catalog"))

	lookup := func(name string) *xcache.Cache {
		c, ok := reg.Cache(name)
		if !ok {
			s.logger.Warn(context.Background(), "cache not registered, reads bypass cache", xlog.Cache(name))
		}
		return c
	}
	s.products = lookup(CacheProducts)
	s.categories = lookup(CacheCategories)
	s.addresses = lookup(CacheAddresses)
	s.carts = lookup(CacheCarts)
	s.orders = lookup(CacheOrders)
	return s, nil
}

// Product 按 ID 读取商品。
func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	if id == "" {
		return Product{}, fmt.Errorf("%w: empty product id", ErrInvalidArgument)
	}
	return xcache.GetOrSet(ctx, s.products, ProductKey(id), func(ctx context.Context) (Product, error) {
		return s.src.Product(ctx, id)
	})
}

// Products 读取商品列表。
func (s *Service) Products(ctx context.Context, q ProductQuery) (ProductPage, error) {
	q, err := q.Normalize()
	if err != nil {
		return ProductPage{}, err
	}
	return xcache.GetOrSet(ctx, s.products, ProductListKey(q), func(ctx context.Context) (ProductPage, error) {
		return s.src.Products(ctx, q)
	})
}

// Categories 读取全部分类。
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return xcache.GetOrSet(ctx, s.categories, CategoriesKey(), s.src.Categories)
}

// Addresses 读取用户地址列表。
func (s *Service) Addresses(ctx context.Context, userID string) ([]Address, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	return xcache.GetOrSet(ctx, s.addresses, AddressesKey(userID), func(ctx context.Context) ([]Address, error) {
		return s.src.Addresses(ctx, userID)
	})
}

// Cart 读取用户购物车。
func (s *Service) Cart(ctx context.Context, userID string) (Cart, error) {
	if userID == "" {
		return Cart{}, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	return xcache.GetOrSet(ctx, s.carts, CartKey(userID), func(ctx context.Context) (Cart, error) {
		return s.src.Cart(ctx, userID)
	})
}

// Orders 读取用户订单列表的一页。
func (s *Service) Orders(ctx context.Context, userID string, page, pageSize int64) (OrderPage, error) {
	if userID == "" {
		return OrderPage{}, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	page, pageSize, err := normalizePage(page, pageSize)
	if err != nil {
		return OrderPage{}, err
	}
	return xcache.GetOrSet(ctx, s.orders, OrdersKey(userID, page, pageSize), func(ctx context.Context) (OrderPage, error) {
		return s.src.Orders(ctx, userID, page, pageSize)
	})
}

// Order 读取用户的一个订单。订单不属于 userID 时返回 ErrNotFound。
func (s *Service) Order(ctx context.Context, userID, orderID string) (Order, error) {
	if userID == "" || orderID == "" {
		return Order{}, fmt.Errorf("%w: empty user or order id", ErrInvalidArgument)
	}
	o, err := xcache.GetOrSet(ctx, s.orders, OrderKey(userID, orderID), func(ctx context.Context) (Order, error) {
		o, err := s.src.Order(ctx, orderID)
		if err != nil {
			return Order{}, err
		}
		if o.UserID != userID {
			return Order{}, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return o, nil
	})
	if err != nil {
		return Order{}, err
	}
	return o, nil
}
