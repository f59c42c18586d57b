// Package pagination implements offset based paging for repository reads.
package pagination

const (
	defaultPageSize    = 20
	defaultMaxPageSize = 100
)

// Request selects one page. Page numbers start at 1.
type Request struct {
	PageNumber int `json:"page_number" yaml:"page_number"`
	PageSize   int `json:"page_size"   yaml:"page_size"`
}

// Option tunes Normalize.
type Option func(maxPageSize *int)

// WithMaxPageSize overrides the upper bound for PageSize.
func WithMaxPageSize(size int) Option {
	return func(maxPageSize *int) {
		*maxPageSize = size
	}
}

// Normalize replaces non-positive values with page 1 and the default size, and
// caps PageSize.
func (r *Request) Normalize(opts ...Option) {
	maxPageSize := defaultMaxPageSize
	for _, opt := range opts {
		opt(&maxPageSize)
	}

	r.PageNumber = max(r.PageNumber, 1)
	if r.PageSize <= 0 {
		r.PageSize = defaultPageSize
	}
	r.PageSize = min(r.PageSize, maxPageSize)
}

// Offset is the number of rows before the page.
func (r *Request) Offset() int {
	return (r.PageNumber - 1) * r.PageSize
}

// Limit is the number of rows on the page.
func (r *Request) Limit() int {
	return r.PageSize
}

// Response is one page of items with totals.
type Response[T any] struct {
	PageNumber  int   `json:"page_number"`
	PageSize    int   `json:"page_size"`
	PageCount   int   `json:"page_count"`
	TotalCount  int64 `json:"total_count"`
	PageContent []T   `json:"page_content"`
}

// NewResponse builds a Response for req. req is expected to be normalized; a
// non-positive PageSize yields a zero PageCount.
func NewResponse[T any](items []T, totalCount int64, req Request) Response[T] {
	var pageCount int
	if req.PageSize > 0 {
		pageCount = int((totalCount + int64(req.PageSize) - 1) / int64(req.PageSize))
	}

	return Response[T]{
		PageNumber:  req.PageNumber,
		PageSize:    req.PageSize,
		PageCount:   pageCount,
		TotalCount:  totalCount,
		PageContent: items,
	}
}
