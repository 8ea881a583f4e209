package catalog

import (
	"fmt"
	"strings"
)

const (
	// DefaultPageSize 列表默认每页数量。
	DefaultPageSize = 20

	// MaxPageSize 列表单页上限。
	MaxPageSize = 100

	maxSearchLen = 64
)

// 商品列表排序方式。
const (
	SortRelevance = ""
	SortPriceAsc  = "price"
	SortPriceDesc = "-price"
	SortName      = "name"
	SortNewest    = "newest"
)

// ProductQuery 商品列表查询。零值字段表示不筛选。
type ProductQuery struct {
	CategoryID string
	Search     string
	MinPrice   float64
	MaxPrice   float64
	Sort       string
	Page       int64
	PageSize   int64
}

// Normalize 补齐分页默认值并校验参数。
func (q ProductQuery) Normalize() (ProductQuery, error) {
	q.Search = strings.TrimSpace(q.Search)
	if len(q.Search) > maxSearchLen {
		return q, fmt.Errorf("%w: search longer than %d", ErrInvalidArgument, maxSearchLen)
	}
	if q.MinPrice < 0 || q.MaxPrice < 0 || (q.MaxPrice > 0 && q.MinPrice > q.MaxPrice) {
		return q, fmt.Errorf("%w: price range", ErrInvalidArgument)
	}
	switch q.Sort {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortName, SortNewest:
	default:
		return q, fmt.Errorf("%w: sort %q", ErrInvalidArgument, q.Sort)
	}
	page, size, err := normalizePage(q.Page, q.PageSize)
	if err != nil {
		return q, err
	}
	q.Page, q.PageSize = page, size
	return q, nil
}

// params 返回参与构造缓存键的参数，零值不出现在键中。
func (q ProductQuery) params() map[string]any {
	p := map[string]any{
		"page": q.Page,
		"size": q.PageSize,
	}
	if q.CategoryID != "" {
		p["category"] = q.CategoryID
	}
	if q.Search != "" {
		p["q"] = strings.ToLower(q.Search)
	}
	if q.MinPrice > 0 {
		p["min_price"] = q.MinPrice
	}
	if q.MaxPrice > 0 {
		p["max_price"] = q.MaxPrice
	}
	if q.Sort != "" {
		p["sort"] = q.Sort
	}
	return p
}

func normalizePage(page, size int64) (int64, int64, error) {
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		return 0, 0, fmt.Errorf("%w: page %d", ErrInvalidArgument, page)
	}
	if size < 1 || size > MaxPageSize {
		return 0, 0, fmt.Errorf("%w: page size %d", ErrInvalidArgument, size)
	}
	return page, size, nil
}
