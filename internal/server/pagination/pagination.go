// Package pagination turns skip/limit/total into page metadata and the paged
// envelope shared by every list response.
package pagination

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Paginate clamps skip to >= 0 and limit to [1, MaxLimit].
func Paginate(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if limit < 1 {
		limit = 1
	}
	return skip, limit
}

// Info is the page metadata of a list response.
type Info struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// PageInfo computes page = skip/limit + 1 and totalPages = ceil(total/limit).
// An empty set has zero pages while page stays 1. A non-positive limit is
// treated as a single page.
func PageInfo(total int64, skip, limit int) Info {
	if limit <= 0 {
		return Info{Page: 1, PageSize: limit, Total: total, TotalPages: 1}
	}
	if skip < 0 {
		skip = 0
	}
	l := int64(limit)
	return Info{
		Page:       skip/limit + 1,
		PageSize:   limit,
		Total:      total,
		TotalPages: (total + l - 1) / l,
	}
}

// Page is the paged envelope {total, page, pageSize, totalPages, items}.
type Page[T any] struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int64 `json:"totalPages"`
	Items      []T   `json:"items"`
}

// NewPage wraps items with metadata from PageInfo. A nil items slice is
// replaced with an empty one so it encodes as [].
func NewPage[T any](items []T, total int64, skip, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	info := PageInfo(total, skip, limit)
	return Page[T]{
		Total:      info.Total,
		Page:       info.Page,
		PageSize:   info.PageSize,
		TotalPages: info.TotalPages,
		Items:      items,
	}
}
