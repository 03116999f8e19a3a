package pagination

import (
	"fmt"
	"math"
	"strconv"
)

// Limits bounds the page size accepted from clients.
type Limits struct {
	DefaultSize int
	MaxSize     int
}

// Params is a validated page request. Page numbers start at 1.
type Params struct {
	Page int
	Size int
}

// Offset is the number of rows to skip for this page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Size
}

// Page is the envelope returned by paginated endpoints.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
}

// ParseParams reads the raw page and size query values. Empty values fall back
// to page 1 and the default size.
func ParseParams(rawPage, rawSize string, limits Limits) (Params, error) {
	p := Params{Page: 1, Size: limits.DefaultSize}

	if rawPage != "" {
		page, err := strconv.Atoi(rawPage)
		if err != nil || page < 1 {
			return Params{}, fmt.Errorf("page must be an integer >= 1")
		}
		p.Page = page
	}
	if rawSize != "" {
		size, err := strconv.Atoi(rawSize)
		if err != nil || size < 1 || size > limits.MaxSize {
			return Params{}, fmt.Errorf("size must be an integer between 1 and %d", limits.MaxSize)
		}
		p.Size = size
	}
	if p.Page-1 > math.MaxInt/p.Size {
		return Params{}, fmt.Errorf("page %d is out of range", p.Page)
	}
	return p, nil
}

// New wraps one page of items together with the total row count.
func New[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Size > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return Page[T]{Items: items, Total: total, Page: p.Page, Size: p.Size, Pages: pages}
}

// Empty is a page with no items, used when the result is known without querying.
func Empty[T any](p Params) Page[T] {
	return New[T](nil, 0, p)
}
