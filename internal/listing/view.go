package listing

import (
	"strings"

	"github.com/fabrica-erp/panel/internal/shared"
)

// Query is the client-side state that shapes a view.
type Query struct {
	Search   string
	Filters  map[string]string
	Page     int
	PageSize int
}

// View is the derived page of a collection.
type View[T any] struct {
	Items      []T
	Filtered   []T
	Pagination shared.Pagination
	// From and To are 1-based positions of the first and last row shown.
	From int
	To   int
}

// Filter applies the search term and every non-empty filter value.
func Filter[T any](items []T, search string, filters map[string]string, d Descriptor[T]) []T {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if needle != "" && !matchesSearch(item, needle, d) {
			continue
		}
		if !matchesFilters(item, filters, d) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ComputeView filters items and slices the requested page. It has no side
// effects: identical inputs yield identical output.
func ComputeView[T any](items []T, q Query, d Descriptor[T]) View[T] {
	filtered := Filter(items, q.Search, q.Filters, d)
	p := shared.NewPagination(q.Page, q.PageSize, len(filtered))
	start, end := p.Offset(), p.End()
	view := View[T]{
		Items:      filtered[start:end],
		Filtered:   filtered,
		Pagination: p,
	}
	if end > start {
		view.From = start + 1
		view.To = end
	}
	return view
}

func matchesSearch[T any](item T, needle string, d Descriptor[T]) bool {
	if d.Searchable == nil {
		return true
	}
	for _, field := range d.Searchable(item) {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](item T, filters map[string]string, d Descriptor[T]) bool {
	for name, value := range filters {
		if value == "" {
			continue
		}
		pred, ok := d.Filters[name]
		if !ok {
			continue
		}
		if !pred(item, value) {
			return false
		}
	}
	return true
}

// Equals builds an exact-match filter over one field.
func Equals[T any](field func(T) string) FilterFunc[T] {
	return func(item T, value string) bool {
		return field(item) == value
	}
}

// Flag builds a "true"/"false" filter over a boolean field.
func Flag[T any](field func(T) bool) FilterFunc[T] {
	return func(item T, value string) bool {
		switch value {
		case "true":
			return field(item)
		case "false":
			return !field(item)
		}
		return true
	}
}
