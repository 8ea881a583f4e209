package xmongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// clientOperations 客户端级别操作，*mongo.Client 实现此接口。
type clientOperations interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Disconnect(ctx context.Context) error
	NumberSessionsInProgress() int
}

// collectionOperations 集合级别操作，*mongo.Collection 实现此接口。
type collectionOperations interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
	Name() string
}

// collectionResolver 按名称返回集合。
type collectionResolver func(name string) collectionOperations

func databaseResolver(db *mongo.Database) collectionResolver {
	return func(name string) collectionOperations {
		return db.Collection(name)
	}
}
