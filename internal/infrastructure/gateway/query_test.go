package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/purchasing/internal/domain/purchasing"
)

func TestBuildListParams(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *purchasing.Filter)
		unpaged bool
		want    map[string]string
		absent  []string
	}{
		{
			name:   "defaults send only paging",
			mutate: func(f *purchasing.Filter) {},
			want:   map[string]string{"_page": "1", "_limit": "10"},
			absent: []string{"q", "status", "orderDate_gte", "orderDate_lte", "_sort", "_order"},
		},
		{
			name:   "whitespace search is omitted",
			mutate: func(f *purchasing.Filter) { f.Search = "   " },
			absent: []string{"q"},
		},
		{
			name:   "All status is omitted",
			mutate: func(f *purchasing.Filter) { f.Status = "all" },
			absent: []string{"status"},
		},
		{
			name: "dates are normalised",
			mutate: func(f *purchasing.Filter) {
				f.StartDate = "2024-01-01T10:30:00Z"
				f.EndDate = "2024-01-31"
			},
			want: map[string]string{"orderDate_gte": "2024-01-01", "orderDate_lte": "2024-01-31"},
		},
		{
			name: "paging is clamped",
			mutate: func(f *purchasing.Filter) {
				f.Page = 0
				f.PageSize = -5
			},
			want: map[string]string{"_page": "1", "_limit": "1"},
		},
		{
			name: "sort defaults to ascending",
			mutate: func(f *purchasing.Filter) {
				f.SortField = "orderDate"
				f.SortDirection = "sideways"
			},
			want: map[string]string{"_sort": "orderDate", "_order": "asc"},
		},
		{
			name: "descending sort",
			mutate: func(f *purchasing.Filter) {
				f.SortField = "grandTotal"
				f.SortDirection = purchasing.SortDesc
			},
			want: map[string]string{"_sort": "grandTotal", "_order": "desc"},
		},
		{
			name:    "unpaged omits paging",
			mutate:  func(f *purchasing.Filter) { f.Search = "PO-1" },
			unpaged: true,
			want:    map[string]string{"q": "PO-1"},
			absent:  []string{"_page", "_limit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := purchasing.DefaultFilter(10)
			tt.mutate(&f)

			params, err := BuildListParams(purchasing.ListQuery{Filter: f, Unpaged: tt.unpaged})
			require.NoError(t, err)
			for k, v := range tt.want {
				assert.Equal(t, v, params.Get(k), k)
			}
			for _, k := range tt.absent {
				assert.False(t, params.Has(k), k)
			}
		})
	}
}

func TestBuildListParams_InvalidDates(t *testing.T) {
	f := purchasing.DefaultFilter(10)
	f.StartDate = "01/02/2024"
	f.EndDate = "soon"

	_, err := BuildListParams(purchasing.ListQuery{Filter: f})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "startDate")
	assert.Contains(t, err.Error(), "endDate")
}
