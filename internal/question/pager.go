package question

// DefaultPageSize is the number of questions per listing page.
const DefaultPageSize = 10

// Paginate returns the 1-based page of items. Pages past the end are empty, never an error.
// page < 1 is read as the first page and pageSize <= 0 as DefaultPageSize. The result
// shares items' backing array but its capacity is clipped, so appends never touch items.
func Paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	// checked before multiplying so huge page numbers cannot overflow start.
	if page-1 > len(items)/pageSize {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end:end]
}
