package logic

import "math"

// Offset returns the index of the first item of page, it saturates
// rather than overflow
func Offset(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// Paginate returns the window [(page-1)*limit, (page-1)*limit+limit) of
// items, it's empty when the page is past the end
func Paginate[T any](items []T, page, limit int) []T {
	offset := Offset(page, limit)
	if offset >= len(items) || limit <= 0 {
		return []T{}
	}
	end := len(items)
	if limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}

// TotalPages is ceil(total/limit)
func TotalPages(total int64, limit int) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
