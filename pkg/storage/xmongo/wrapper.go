package xmongo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/omeyang/shopcache/internal/storageopt"
	"github.com/omeyang/shopcache/pkg/observability/xmetrics"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const componentName = "xmongo"

type mongoWrapper struct {
	client      *mongo.Client
	clientOps   clientOperations
	collections collectionResolver
	database    string
	options     Options

	slow    *storageopt.SlowQueryDetector[SlowQueryInfo]
	health  storageopt.HealthCounter
	queries storageopt.QueryCounter

	closed atomic.Bool
}

func newWrapper(client *mongo.Client, database string, opts ...Option) *mongoWrapper {
	return newWrapperWithOps(client, databaseResolver(client.Database(database)), database, opts...)
}

func newWrapperWithOps(ops clientOperations, collections collectionResolver, database string, opts ...Option) *mongoWrapper {
	o := defaultOptions()
	o.Apply(opts...)
	hook := o.SlowQueryHook
	if hook == nil {
		hook = logSlowQuery(o.Logger)
	}
	return &mongoWrapper{
		clientOps:   ops,
		collections: collections,
		database:    database,
		options:     o,
		slow:        storageopt.NewSlowQueryDetector(o.SlowQueryThreshold, hook),
	}
}

func (w *mongoWrapper) Client() *mongo.Client { return w.client }

func (w *mongoWrapper) Database() string { return w.database }

func (w *mongoWrapper) Health(ctx context.Context) (err error) {
	if ctx == nil {
		return ErrNilContext
	}
	if w.closed.Load() {
		return ErrClosed
	}

	ctx, span := xmetrics.Start(ctx, w.options.Observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "health",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.String("db.system", "mongodb")},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	w.health.IncPing()
	ctx, cancel := storageopt.HealthContext(ctx, w.options.HealthTimeout)
	defer cancel()

	if err = w.clientOps.Ping(ctx, readpref.Primary()); err != nil {
		w.health.IncPingError()
		return fmt.Errorf("xmongo health: %w", err)
	}
	return nil
}

func (w *mongoWrapper) FindOne(ctx context.Context, collection string, filter any, dst any) (err error) {
	coll, err := w.begin(ctx, collection, dst)
	if err != nil {
		return err
	}
	if filter == nil {
		filter = bson.D{}
	}

	ctx, finish := w.observe(ctx, "find_one", collection, filter)
	defer func() { finish(err) }()

	res := coll.FindOne(ctx, filter)
	if err = res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: %s.%s", ErrNotFound, w.database, collection)
		}
		return fmt.Errorf("xmongo find_one %s.%s: %w", w.database, collection, err)
	}
	if err = res.Decode(dst); err != nil {
		return fmt.Errorf("xmongo find_one decode %s.%s: %w", w.database, collection, err)
	}
	return nil
}

func (w *mongoWrapper) FindPage(ctx context.Context, collection string, filter any, opts PageOptions, dst any) (result *PageResult, err error) {
	coll, err := w.begin(ctx, collection, dst)
	if err != nil {
		return nil, err
	}
	skip, err := storageopt.ValidatePagination(opts.Page, opts.PageSize)
	if err != nil {
		return nil, convertPaginationError(err)
	}
	if filter == nil {
		filter = bson.D{}
	}

	ctx, finish := w.observe(ctx, "find_page", collection, filter)
	defer func() { finish(err) }()

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("xmongo find_page count %s.%s: %w", w.database, collection, err)
	}

	cursor, err := coll.Find(ctx, filter, buildFindOptions(skip, opts))
	if err != nil {
		return nil, fmt.Errorf("xmongo find_page find %s.%s: %w", w.database, collection, err)
	}
	// All 会关闭游标。
	if err = cursor.All(ctx, dst); err != nil {
		return nil, fmt.Errorf("xmongo find_page decode %s.%s: %w", w.database, collection, err)
	}

	return &PageResult{
		Total:      total,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalPages: storageopt.TotalPages(total, opts.PageSize),
	}, nil
}

func (w *mongoWrapper) Stats() Stats {
	s := Stats{
		PingCount:   w.health.PingCount(),
		PingErrors:  w.health.PingErrors(),
		Queries:     w.queries.Queries(),
		QueryErrors: w.queries.Errors(),
		SlowQueries: w.queries.Slow(),
	}
	if w.clientOps != nil && !w.closed.Load() {
		s.Sessions = w.clientOps.NumberSessionsInProgress()
	}
	return s
}

// Close 断开连接，Disconnect 失败不回滚关闭状态。
func (w *mongoWrapper) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if w.clientOps == nil {
		return nil
	}
	if err := w.clientOps.Disconnect(ctx); err != nil {
		return fmt.Errorf("xmongo close: %w", err)
	}
	return nil
}

// begin 做公共入口校验并解析集合。
func (w *mongoWrapper) begin(ctx context.Context, collection string, dst any) (collectionOperations, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if w.closed.Load() {
		return nil, ErrClosed
	}
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	if dst == nil {
		return nil, ErrNilTarget
	}
	return w.collections(collection), nil
}

// observe 附加兜底超时并开启观测，返回的 finish 记录统计、慢查询并结束 span。
func (w *mongoWrapper) observe(ctx context.Context, op, collection string, filter any) (context.Context, func(error)) {
	ctx, cancel := storageopt.OperationContext(ctx, w.options.QueryTimeout)
	ctx, span := xmetrics.Start(ctx, w.options.Observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: op,
		Kind:      xmetrics.KindClient,
		Attrs: []xmetrics.Attr{
			xmetrics.String("db.system", "mongodb"),
			xmetrics.String("db.name", w.database),
			xmetrics.String("db.collection", collection),
		},
	})
	start := time.Now()

	return ctx, func(err error) {
		defer cancel()
		info := SlowQueryInfo{
			Database:   w.database,
			Collection: collection,
			Operation:  op,
			Filter:     filter,
			Duration:   time.Since(start),
		}
		slow := w.slow.Check(ctx, info, info.Duration)
		w.queries.Observe(err, slow)

		var attrs []xmetrics.Attr
		if slow {
			attrs = append(attrs, xmetrics.Bool("slow", true))
		}
		span.End(xmetrics.Result{Err: err, Attrs: attrs})
	}
}

func buildFindOptions(skip int64, opts PageOptions) *options.FindOptionsBuilder {
	findOpts := options.Find().SetSkip(skip).SetLimit(opts.PageSize)
	if len(opts.Sort) > 0 {
		findOpts = findOpts.SetSort(opts.Sort)
	}
	if len(opts.Projection) > 0 {
		findOpts = findOpts.SetProjection(opts.Projection)
	}
	return findOpts
}
