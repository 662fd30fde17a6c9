package console

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 20

// Page is one window over a filtered collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalItems int `json:"total_items"`
	Number     int `json:"page"`
	PageSize   int `json:"page_size"`
	PageCount  int `json:"page_count"`
}

// PageCount returns ceil(total/pageSize), never less than 1.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage forces page into [1, PageCount(total, pageSize)].
func ClampPage(page, total, pageSize int) int {
	if page < 1 {
		return 1
	}
	if last := PageCount(total, pageSize); page > last {
		return last
	}
	return page
}

// Paginate returns the slice of items visible on page.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	page = ClampPage(page, total, pageSize)

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	visible := make([]T, 0, end-start)
	visible = append(visible, items[start:end]...)

	return Page[T]{
		Items:      visible,
		TotalItems: total,
		Number:     page,
		PageSize:   pageSize,
		PageCount:  PageCount(total, pageSize),
	}
}

// PageMarker is one entry of the page index: a page number or an ellipsis.
type PageMarker struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// pageWindow is how many pages either side of the current page are listed.
const pageWindow = 2

// PageIndex lists the page numbers to render. First and last pages are always present and
// skipped runs outside current±2 collapse into a single ellipsis.
func PageIndex(current, pageCount int) []PageMarker {
	if pageCount < 1 {
		pageCount = 1
	}
	if current < 1 {
		current = 1
	}
	if current > pageCount {
		current = pageCount
	}

	start := current - pageWindow
	if start < 1 {
		start = 1
	}
	end := current + pageWindow
	if end > pageCount {
		end = pageCount
	}

	markers := make([]PageMarker, 0, end-start+5)
	if start > 1 {
		markers = append(markers, PageMarker{Number: 1})
		if start > 2 {
			markers = append(markers, PageMarker{Ellipsis: true})
		}
	}
	for n := start; n <= end; n++ {
		markers = append(markers, PageMarker{Number: n, Current: n == current})
	}
	if end < pageCount {
		if end < pageCount-1 {
			markers = append(markers, PageMarker{Ellipsis: true})
		}
		markers = append(markers, PageMarker{Number: pageCount})
	}
	return markers
}
