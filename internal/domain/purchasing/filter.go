package purchasing

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/purchasing/internal/domain/shared"
)

// SortDirection is the direction of a list sort
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// DefaultPageSize is used when no page size is configured
const DefaultPageSize = 10

// Filter is the list query state: search, status, date range, paging, sort
type Filter struct {
	Search        string
	Status        string
	StartDate     string
	EndDate       string
	Page          int
	PageSize      int
	SortField     string
	SortDirection SortDirection
}

// DefaultFilter returns an unfiltered first page
func DefaultFilter(pageSize int) Filter {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return Filter{
		Status:   StatusAll,
		Page:     1,
		PageSize: pageSize,
	}
}

// FilterPatch carries a partial filter update; nil fields are left untouched
type FilterPatch struct {
	Search        *string
	Status        *string
	StartDate     *string
	EndDate       *string
	PageSize      *int
	SortField     *string
	SortDirection *SortDirection
}

// IsEmpty reports whether the patch changes nothing
func (p FilterPatch) IsEmpty() bool {
	return p.Search == nil && p.Status == nil && p.StartDate == nil && p.EndDate == nil &&
		p.PageSize == nil && p.SortField == nil && p.SortDirection == nil
}

// Merge applies the patch onto f and returns the result. Page is not
// touched here; callers decide whether a merge resets it.
func (f Filter) Merge(p FilterPatch) Filter {
	if p.Search != nil {
		f.Search = *p.Search
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.StartDate != nil {
		f.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		f.EndDate = *p.EndDate
	}
	if p.PageSize != nil {
		f.PageSize = *p.PageSize
	}
	if p.SortField != nil {
		f.SortField = *p.SortField
	}
	if p.SortDirection != nil {
		f.SortDirection = *p.SortDirection
	}
	return f
}

// TrimmedSearch returns the search text with surrounding whitespace removed
func (f Filter) TrimmedSearch() string {
	return strings.TrimSpace(f.Search)
}

// StatusFilter returns the status to filter on, or "" when unfiltered
func (f Filter) StatusFilter() string {
	status := strings.TrimSpace(f.Status)
	if status == "" || strings.EqualFold(status, StatusAll) {
		return ""
	}
	return status
}

// Clamped returns a copy with page and page size forced to at least 1
func (f Filter) Clamped() Filter {
	f.Page = shared.ClampPage(f.Page)
	f.PageSize = shared.ClampPageSize(f.PageSize)
	return f
}

// ClearCriteria resets search, status and date range, keeping paging size and sort
func (f Filter) ClearCriteria() Filter {
	f.Search = ""
	f.Status = StatusAll
	f.StartDate = ""
	f.EndDate = ""
	return f
}

// NormalizeDate converts a date or timestamp to YYYY-MM-DD.
// Empty input yields "" with no error.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t.Format(DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format(DateLayout), nil
	}
	if idx := strings.IndexAny(value, "T "); idx > 0 {
		if t, err := time.Parse(DateLayout, value[:idx]); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
}

// Ptr returns a pointer to v, handy for building patches
func Ptr[T any](v T) *T {
	return &v
}
