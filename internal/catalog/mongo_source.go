package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/resilience/xbreaker"
	"github.com/omeyang/shopcache/pkg/resilience/xretry"
	"github.com/omeyang/shopcache/pkg/storage/xmongo"
)

// 集合名。
const (
	CollectionProducts   = "products"
	CollectionCategories = "categories"
	CollectionAddresses  = "addresses"
	CollectionCarts      = "carts"
	CollectionOrders     = "orders"
)

// listLimit 非分页列表（分类、地址）的读取上限。
const listLimit = 500

// MongoSource 基于 MongoDB 的 Source。
type MongoSource struct {
	db      xmongo.Mongo
	breaker *xbreaker.Breaker
	retry   *xretry.Retryer
	logger  xlog.Logger
}

// MongoOption 配置 MongoSource。
type MongoOption func(*MongoSource)

// WithBreaker 替换默认熔断器。
func WithBreaker(b *xbreaker.Breaker) MongoOption {
	return func(s *MongoSource) {
		if b != nil {
			s.breaker = b
		}
	}
}

// WithRetryer 替换默认重试器。
func WithRetryer(r *xretry.Retryer) MongoOption {
	return func(s *MongoSource) {
		if r != nil {
			s.retry = r
		}
	}
}

// WithSourceLogger 设置日志。
func WithSourceLogger(l xlog.Logger) MongoOption {
	return func(s *MongoSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewMongoSource 创建 MongoSource。
func NewMongoSource(db xmongo.Mongo, opts ...MongoOption) (*MongoSource, error) {
	if db == nil {
		return nil, ErrNilSource
	}
	s := &MongoSource{logger: xlog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.breaker == nil {
		s.breaker = NewSourceBreaker(xbreaker.Config{})
	}
	if s.retry == nil {
		s.retry = NewSourceRetryer(xretry.Config{}, s.logger)
	}
	return s, nil
}

// NewSourceBreaker 创建文档库熔断器，文档不存在不计为失败。
func NewSourceBreaker(cfg xbreaker.Config, opts ...xbreaker.Option) *xbreaker.Breaker {
	base := []xbreaker.Option{
		xbreaker.WithSuccessPolicy(func(err error) bool {
			return err == nil || errors.Is(err, xmongo.ErrNotFound)
		}),
	}
	return xbreaker.New("mongo", cfg, append(base, opts...)...)
}

// NewSourceRetryer 创建文档库重试器，只重试 xmongo.IsTransient 判定的错误。
func NewSourceRetryer(cfg xretry.Config, logger xlog.Logger, opts ...xretry.Option) *xretry.Retryer {
	if logger == nil {
		logger = xlog.Default()
	}
	base := []xretry.Option{
		xretry.WithRetryIf(xmongo.IsTransient),
		xretry.WithOnRetry(func(attempt int, err error) {
			logger.Warn(context.Background(), "retrying document query",
				xlog.Component("catalog"), xlog.Count(int64(attempt)), xlog.Err(err))
		}),
	}
	return xretry.FromConfig(cfg, append(base, opts...)...)
}

func (s *MongoSource) Product(ctx context.Context, id string) (Product, error) {
	return query(ctx, s, func(ctx context.Context) (Product, error) {
		var p Product
		err := s.db.FindOne(ctx, CollectionProducts, bson.D{{Key: "_id", Value: id}}, &p)
		return p, err
	})
}

func (s *MongoSource) Products(ctx context.Context, q ProductQuery) (ProductPage, error) {
	return query(ctx, s, func(ctx context.Context) (ProductPage, error) {
		var items []Product
		res, err := s.db.FindPage(ctx, CollectionProducts, productFilter(q), xmongo.PageOptions{
			Page:     q.Page,
			PageSize: q.PageSize,
			Sort:     productSort(q.Sort),
		}, &items)
		if err != nil {
			return ProductPage{}, err
		}
		return ProductPage{
			Items:      nonNil(items),
			Total:      res.Total,
			Page:       res.Page,
			PageSize:   res.PageSize,
			TotalPages: res.TotalPages,
		}, nil
	})
}

func (s *MongoSource) Categories(ctx context.Context) ([]Category, error) {
	return query(ctx, s, func(ctx context.Context) ([]Category, error) {
		var items []Category
		_, err := s.db.FindPage(ctx, CollectionCategories, nil, xmongo.PageOptions{
			Page:     1,
			PageSize: listLimit,
			Sort:     bson.D{{Key: "parent_id", Value: 1}, {Key: "position", Value: 1}},
		}, &items)
		return nonNil(items), err
	})
}

func (s *MongoSource) Addresses(ctx context.Context, userID string) ([]Address, error) {
	return query(ctx, s, func(ctx context.Context) ([]Address, error) {
		var items []Address
		_, err := s.db.FindPage(ctx, CollectionAddresses, bson.D{{Key: "user_id", Value: userID}}, xmongo.PageOptions{
			Page:     1,
			PageSize: listLimit,
			Sort:     bson.D{{Key: "is_default", Value: -1}, {Key: "_id", Value: 1}},
		}, &items)
		return nonNil(items), err
	})
}

func (s *MongoSource) Cart(ctx context.Context, userID string) (Cart, error) {
	c, err := query(ctx, s, func(ctx context.Context) (Cart, error) {
		var c Cart
		err := s.db.FindOne(ctx, CollectionCarts, bson.D{{Key: "_id", Value: userID}}, &c)
		return c, err
	})
	if errors.Is(err, ErrNotFound) {
		return Cart{UserID: userID, Items: []CartItem{}}, nil
	}
	if err != nil {
		return Cart{}, err
	}
	c.Items = nonNil(c.Items)
	return c, nil
}

func (s *MongoSource) Orders(ctx context.Context, userID string, page, pageSize int64) (OrderPage, error) {
	return query(ctx, s, func(ctx context.Context) (OrderPage, error) {
		var items []Order
		res, err := s.db.FindPage(ctx, CollectionOrders, bson.D{{Key: "user_id", Value: userID}}, xmongo.PageOptions{
			Page:     page,
			PageSize: pageSize,
			Sort:     bson.D{{Key: "created_at", Value: -1}},
		}, &items)
		if err != nil {
			return OrderPage{}, err
		}
		return OrderPage{
			Items:      nonNil(items),
			Total:      res.Total,
			Page:       res.Page,
			PageSize:   res.PageSize,
			TotalPages: res.TotalPages,
		}, nil
	})
}

func (s *MongoSource) Order(ctx context.Context, orderID string) (Order, error) {
	return query(ctx, s, func(ctx context.Context) (Order, error) {
		var o Order
		err := s.db.FindOne(ctx, CollectionOrders, bson.D{{Key: "_id", Value: orderID}}, &o)
		return o, err
	})
}

// query 在重试内经熔断器执行 fn，文档不存在转换为 ErrNotFound。
func query[T any](ctx context.Context, s *MongoSource, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := xretry.DoWithResult(ctx, s.retry, func(ctx context.Context) (T, error) {
		return xbreaker.Execute(ctx, s.breaker, fn)
	})
	if errors.Is(err, xmongo.ErrNotFound) {
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return v, err
}

func productFilter(q ProductQuery) bson.D {
	f := bson.D{}
	if q.CategoryID != "" {
		f = append(f, bson.E{Key: "category_id", Value: q.CategoryID})
	}
	if q.Search != "" {
		f = append(f, bson.E{Key: "name", Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(q.Search)},
			{Key: "$options", Value: "i"},
		}})
	}
	price := bson.D{}
	if q.MinPrice > 0 {
		price = append(price, bson.E{Key: "$gte", Value: q.MinPrice})
	}
	if q.MaxPrice > 0 {
		price = append(price, bson.E{Key: "$lte", Value: q.MaxPrice})
	}
	if len(price) > 0 {
		f = append(f, bson.E{Key: "price", Value: price})
	}
	return f
}

func productSort(sort string) bson.D {
	switch sort {
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case SortName:
		return bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	case SortNewest:
		return bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "_id", Value: 1}}
	}
}

// nonNil 保证空结果编码为 [] 而非 null。
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var _ Source = (*MongoSource)(nil)
