package shared

import "math"

// DefaultPageSize is the list page size used across the panel.
const DefaultPageSize = 10

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata. Page is clamped to
// [1, max(1, TotalPages)].
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	last := totalPages
	if last < 1 {
		last = 1
	}
	if page < 1 {
		page = 1
	}
	if page > last {
		page = last
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset is the zero-based index of the first item on the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// End is the exclusive upper bound of the page slice.
func (p Pagination) End() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// Pages enumerates page numbers for navigation controls.
func (p Pagination) Pages() []int {
	pages := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		pages = append(pages, i)
	}
	return pages
}
