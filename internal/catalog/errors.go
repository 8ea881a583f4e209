package catalog

import "errors"

var (
	// ErrNilRegistry 表示未提供缓存注册表。
	ErrNilRegistry = errors.New("catalog: nil registry")

	// ErrNilSource 表示未提供数据源。
	ErrNilSource = errors.New("catalog: nil source")

	// ErrNotFound 表示文档不存在，或不属于请求的用户。
	ErrNotFound = errors.New("catalog: not found")

	// ErrInvalidArgument 表示参数缺失或越界。
	ErrInvalidArgument = errors.New("catalog: invalid argument")
)
