// Package paginate slices in-memory lists into pages.
package paginate

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 20

// Page is one slice of a list plus the paging context needed to render it.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalPages int
	TotalItems int
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// HasPrev reports whether a page precedes this one.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// Paginate returns page number of items split into pages of size. The page
// number is clamped into [1, TotalPages]; an empty list has one empty page.
// Items shares the backing array of items.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}

	totalPages := (len(items) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	number = min(max(number, 1), totalPages)

	start := (number - 1) * size
	end := min(start+size, len(items))
	pageItems := []T{}
	if start < end {
		pageItems = items[start:end]
	}

	return Page[T]{
		Items:      pageItems,
		Number:     number,
		Size:       size,
		TotalPages: totalPages,
		TotalItems: len(items),
	}
}

// TotalPages returns the page count for a server-reported total, never
// less than one.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}
