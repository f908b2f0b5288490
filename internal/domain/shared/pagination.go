package shared

// ClampPage returns page, or 1 when page is below 1
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampPageSize returns pageSize, or 1 when pageSize is below 1
func ClampPageSize(pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	return pageSize
}

// TotalPages returns max(1, ceil(total / pageSize))
func TotalPages(total, pageSize int) int {
	pageSize = ClampPageSize(pageSize)
	if total <= 0 {
		return 1
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}

// DisplayRange is the 1-based inclusive row range shown on a page
type DisplayRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewDisplayRange computes the visible row range; {0,0} when total is 0
func NewDisplayRange(page, pageSize, total int) DisplayRange {
	if total <= 0 {
		return DisplayRange{}
	}
	page = ClampPage(page)
	pageSize = ClampPageSize(pageSize)
	end := page * pageSize
	if end > total {
		end = total
	}
	return DisplayRange{
		Start: (page-1)*pageSize + 1,
		End:   end,
	}
}

// SlicePage returns the [(page-1)*pageSize, page*pageSize) window of items.
// Out-of-range pages yield an empty, non-nil slice.
func SlicePage[T any](items []T, page, pageSize int) []T {
	page = ClampPage(page)
	pageSize = ClampPageSize(pageSize)
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
