package xmongo

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

type mockClientOps struct {
	pingErr       error
	pingCount     int
	disconnectErr error
	disconnected  bool
	sessions      int
}

func (m *mockClientOps) Ping(_ context.Context, _ *readpref.ReadPref) error {
	m.pingCount++
	return m.pingErr
}

func (m *mockClientOps) Disconnect(_ context.Context) error {
	m.disconnected = true
	return m.disconnectErr
}

func (m *mockClientOps) NumberSessionsInProgress() int { return m.sessions }

// mockCollection 按文档列表回放查询结果，记录最后一次查询参数。
type mockCollection struct {
	name     string
	docs     []any
	count    int64
	countErr error
	findErr  error
	oneErr   error
	delay    time.Duration

	mu         sync.Mutex
	lastFilter any
	lastSkip   int64
	lastLimit  int64
}

func (m *mockCollection) FindOne(_ context.Context, filter any, _ ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	m.record(filter)
	time.Sleep(m.delay)
	if m.oneErr != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, m.oneErr, nil)
	}
	if len(m.docs) == 0 {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(m.docs[0], nil, nil)
}

func (m *mockCollection) Find(_ context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	m.record(filter)
	for _, o := range opts {
		var fo options.FindOptions
		for _, set := range o.List() {
			_ = set(&fo)
		}
		m.mu.Lock()
		if fo.Skip != nil {
			m.lastSkip = *fo.Skip
		}
		if fo.Limit != nil {
			m.lastLimit = *fo.Limit
		}
		m.mu.Unlock()
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	return mongo.NewCursorFromDocuments(m.docs, nil, nil)
}

func (m *mockCollection) CountDocuments(_ context.Context, filter any, _ ...options.Lister[options.CountOptions]) (int64, error) {
	m.record(filter)
	if m.countErr != nil {
		return 0, m.countErr
	}
	if m.count > 0 {
		return m.count, nil
	}
	return int64(len(m.docs)), nil
}

func (m *mockCollection) Name() string { return m.name }

func (m *mockCollection) record(filter any) {
	m.mu.Lock()
	m.lastFilter = filter
	m.mu.Unlock()
}

func newTestWrapper(client *mockClientOps, coll *mockCollection, opts ...Option) *mongoWrapper {
	return newWrapperWithOps(client, func(string) collectionOperations { return coll }, "shop", opts...)
}
