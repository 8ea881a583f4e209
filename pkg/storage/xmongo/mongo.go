package xmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Config 连接配置。
type Config struct {
	// URI MongoDB 连接串，如 mongodb://localhost:27017。
	URI string `koanf:"uri" json:"uri"`

	// Database 数据库名。
	Database string `koanf:"database" json:"database"`

	// Timeout 查询兜底超时，0 使用 DefaultQueryTimeout。
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// Validate 校验配置。
func (c Config) Validate() error {
	if c.URI == "" {
		return ErrEmptyURI
	}
	if c.Database == "" {
		return ErrEmptyDatabase
	}
	return nil
}

// Mongo 文档库只读包装器。
type Mongo interface {
	// Client 返回底层客户端，经由它执行的操作不计入统计。
	Client() *mongo.Client

	// Database 返回数据库名。
	Database() string

	// Health 执行健康检查。
	Health(ctx context.Context) error

	// FindOne 查询单个文档解码到 dst，未命中返回 ErrNotFound。
	FindOne(ctx context.Context, collection string, filter any, dst any) error

	// FindPage 分页查询，结果解码到 dst（指向切片的指针）。
	FindPage(ctx context.Context, collection string, filter any, opts PageOptions, dst any) (*PageResult, error)

	// Stats 返回统计信息，Close 后仍可调用。
	Stats() Stats

	// Close 断开连接。
	Close(ctx context.Context) error
}

// PageOptions 分页查询选项。
type PageOptions struct {
	// Page 页码，从 1 开始。
	Page int64

	// PageSize 每页数量，上限 storageopt.MaxPageSize。
	PageSize int64

	// Sort 排序，如 bson.D{{Key: "price", Value: 1}}。
	Sort bson.D

	// Projection 字段投影。
	Projection bson.D
}

// PageResult 分页元信息，数据解码在调用方提供的切片中。
type PageResult struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	PageSize   int64 `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
}

// Connect 按配置建立连接并 Ping 一次。
func Connect(ctx context.Context, cfg Config, opts ...Option) (Mongo, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		opts = append([]Option{WithQueryTimeout(cfg.Timeout)}, opts...)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("xmongo connect: %w", err)
	}
	m, err := New(client, cfg.Database, opts...)
	if err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	if err := m.Health(ctx); err != nil {
		_ = m.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	return m, nil
}

// New 包装已有客户端。
func New(client *mongo.Client, database string, opts ...Option) (Mongo, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if database == "" {
		return nil, ErrEmptyDatabase
	}
	w := newWrapper(client, database, opts...)
	w.client = client
	return w, nil
}
