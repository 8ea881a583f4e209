package xmongo

import (
	"errors"
	"fmt"

	"github.com/omeyang/shopcache/internal/storageopt"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	// ErrNilClient 表示传入的客户端为 nil。
	ErrNilClient = errors.New("xmongo: nil client")

	// ErrNilContext 表示传入的 context 为 nil。Close 例外，会替换为 context.Background()。
	ErrNilContext = errors.New("xmongo: context must not be nil")

	// ErrClosed 表示客户端已关闭。
	ErrClosed = errors.New("xmongo: client closed")

	// ErrEmptyURI 表示连接串为空。
	ErrEmptyURI = errors.New("xmongo: empty uri")

	// ErrEmptyDatabase 表示数据库名为空。
	ErrEmptyDatabase = errors.New("xmongo: empty database name")

	// ErrEmptyCollection 表示集合名为空。
	ErrEmptyCollection = errors.New("xmongo: empty collection name")

	// ErrNilTarget 表示解码目标为 nil。
	ErrNilTarget = errors.New("xmongo: nil decode target")

	// ErrNotFound 表示没有匹配的文档。
	ErrNotFound = errors.New("xmongo: document not found")
)

// 分页错误包装 storageopt 的同名错误，errors.Is 可匹配任一层。
var (
	ErrInvalidPage     = fmt.Errorf("xmongo: %w", storageopt.ErrInvalidPage)
	ErrInvalidPageSize = fmt.Errorf("xmongo: %w", storageopt.ErrInvalidPageSize)
	ErrPageOverflow    = fmt.Errorf("xmongo: %w", storageopt.ErrPageOverflow)
)

func convertPaginationError(err error) error {
	switch {
	case errors.Is(err, storageopt.ErrInvalidPage):
		return ErrInvalidPage
	case errors.Is(err, storageopt.ErrInvalidPageSize):
		return ErrInvalidPageSize
	case errors.Is(err, storageopt.ErrPageOverflow):
		return ErrPageOverflow
	default:
		return err
	}
}

// IsTransient 判断 err 是否为可重试的瞬时错误（网络错误或服务端超时）。
// ErrNotFound、ErrClosed 和参数错误不是瞬时错误。
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrClosed) {
		return false
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
