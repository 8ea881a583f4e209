package storageopt

import (
	"errors"
	"math"
)

// 分页相关错误。
var (
	// ErrInvalidPage 表示页码无效（必须 >= 1）。
	ErrInvalidPage = errors.New("storageopt: invalid page number, must be >= 1")

	// ErrInvalidPageSize 表示每页大小无效（必须在 [1, MaxPageSize] 内）。
	ErrInvalidPageSize = errors.New("storageopt: invalid page size")

	// ErrPageOverflow 表示 (page-1)*pageSize 超出 int64。
	ErrPageOverflow = errors.New("storageopt: page calculation overflow")
)

// MaxPageSize 单页最大记录数。商品列表缓存整页结果，页过大会被缓存的单条上限拒绝。
const MaxPageSize = 500

// ValidatePagination 校验分页参数并返回 offset = (page-1)*pageSize。
func ValidatePagination(page, pageSize int64) (offset int64, err error) {
	if page < 1 {
		return 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return 0, ErrInvalidPageSize
	}
	if page-1 > math.MaxInt64/pageSize {
		return 0, ErrPageOverflow
	}
	return (page - 1) * pageSize, nil
}

// TotalPages 计算总页数，total 或 pageSize 非正时返回 0。
func TotalPages(total, pageSize int64) int64 {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}
