package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, pageSize, want int
	}{
		{0, 10, 1},
		{25, 10, 3},
		{30, 10, 3},
		{1, 10, 1},
		{11, 10, 2},
		{5, 0, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.pageSize), "total=%d pageSize=%d", tt.total, tt.pageSize)
	}
}

func TestNewDisplayRange(t *testing.T) {
	t.Run("empty result", func(t *testing.T) {
		assert.Equal(t, DisplayRange{Start: 0, End: 0}, NewDisplayRange(1, 10, 0))
	})

	t.Run("full page", func(t *testing.T) {
		assert.Equal(t, DisplayRange{Start: 11, End: 20}, NewDisplayRange(2, 10, 25))
	})

	t.Run("last partial page", func(t *testing.T) {
		assert.Equal(t, DisplayRange{Start: 21, End: 25}, NewDisplayRange(3, 10, 25))
	})
}

func TestSlicePage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, []int{1, 2, 3}, SlicePage(items, 1, 3))
	assert.Equal(t, []int{7}, SlicePage(items, 3, 3))
	assert.Equal(t, []int{}, SlicePage(items, 4, 3))
	assert.Equal(t, []int{1, 2, 3}, SlicePage(items, 0, 3))
}
