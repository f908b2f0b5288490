package purchasing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFilter(t *testing.T) {
	f := DefaultFilter(0)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.Equal(t, StatusAll, f.Status)
}

func TestFilter_Merge(t *testing.T) {
	base := Filter{Search: "acme", Status: "Draft", Page: 4, PageSize: 10}

	merged := base.Merge(FilterPatch{Status: Ptr("Approved"), StartDate: Ptr("2024-01-01")})
	assert.Equal(t, "acme", merged.Search)
	assert.Equal(t, "Approved", merged.Status)
	assert.Equal(t, "2024-01-01", merged.StartDate)
	assert.Equal(t, 4, merged.Page, "merge does not touch page")

	assert.True(t, FilterPatch{}.IsEmpty())
	assert.False(t, FilterPatch{Search: Ptr("")}.IsEmpty())
}

func TestFilter_StatusFilter(t *testing.T) {
	assert.Equal(t, "", Filter{Status: "All"}.StatusFilter())
	assert.Equal(t, "", Filter{Status: "all"}.StatusFilter())
	assert.Equal(t, "", Filter{}.StatusFilter())
	assert.Equal(t, "Draft", Filter{Status: "Draft"}.StatusFilter())
}

func TestFilter_ClampedAndClear(t *testing.T) {
	f := Filter{Search: " x ", Status: "Draft", StartDate: "2024-01-01", Page: 0, PageSize: -3, SortField: "orderDate"}
	c := f.Clamped()
	assert.Equal(t, 1, c.Page)
	assert.Equal(t, 1, c.PageSize)
	assert.Equal(t, "x", f.TrimmedSearch())

	cleared := f.ClearCriteria()
	assert.Empty(t, cleared.Search)
	assert.Equal(t, StatusAll, cleared.Status)
	assert.Empty(t, cleared.StartDate)
	assert.Equal(t, "orderDate", cleared.SortField)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"2024-02-29", "2024-02-29", false},
		{"2024-03-01T15:04:05Z", "2024-03-01", false},
		{"2024-03-01T23:30:00-05:00", "2024-03-02", false},
		{"2024-03-01T10:00", "2024-03-01", false},
		{"2024-03-01 10:00:00", "2024-03-01", false},
		{"03/01/2024", "", true},
		{"2024-13-01", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
