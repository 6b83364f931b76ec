package models

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// ListOptions selects one page of a listing. Page is 1-based.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
}

// Normalize replaces out-of-range values with defaults.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultPageLimit
	}
	if o.Limit > MaxPageLimit {
		o.Limit = MaxPageLimit
	}
	return o
}

// Offset is the number of rows to skip.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Paginated is one page of a listing. Count is the number of rows that
// match the listing's filter, TotalCount the number of rows in the table.
type Paginated[T any] struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Count      int `json:"count"`
	TotalCount int `json:"totalCount"`
	Rows       []T `json:"rows"`
}

// NewPaginated assembles a page; rows is never serialised as null.
func NewPaginated[T any](opts ListOptions, rows []T, count, total int) *Paginated[T] {
	if rows == nil {
		rows = []T{}
	}
	return &Paginated[T]{
		Page:       opts.Page,
		Limit:      opts.Limit,
		Count:      count,
		TotalCount: total,
		Rows:       rows,
	}
}
