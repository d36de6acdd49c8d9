package trivia

// DefaultPageSize matches the ten-questions-per-page browsing surface.
const DefaultPageSize = 10

// Paginate returns the page-th fixed-size slice of items. Ordering is the
// caller's responsibility; nothing is sorted here. A page past the end yields
// an empty slice, which is a valid outcome — the caller decides whether that
// constitutes a not-found condition.
func Paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
