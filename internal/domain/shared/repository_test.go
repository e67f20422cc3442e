package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterNormalize(t *testing.T) {
	tests := []struct {
		name         string
		filter       Filter
		wantPage     int
		wantPageSize int
	}{
		{"zero value gets defaults", Filter{}, 1, 20},
		{"negative page clamps to first", Filter{Page: -3, PageSize: 50}, 1, 50},
		{"oversized page size clamps to default", Filter{Page: 2, PageSize: 10000}, 2, 20},
		{"in-range values pass through", Filter{Page: 4, PageSize: 25}, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Normalize()
			assert.Equal(t, tt.wantPage, tt.filter.Page)
			assert.Equal(t, tt.wantPageSize, tt.filter.PageSize)
		})
	}
}

func TestFilterOffset(t *testing.T) {
	assert.Equal(t, 0, Filter{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
}

func TestNewPaginated(t *testing.T) {
	page := NewPaginated([]string{"a", "b"}, 41, 1, 20)

	assert.Equal(t, int64(41), page.Total)
	assert.Equal(t, 3, page.TotalPages)

	empty := NewPaginated([]string{}, 0, 1, 20)
	assert.Equal(t, 0, empty.TotalPages)
}
