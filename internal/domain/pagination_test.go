package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationParams(t *testing.T) {
	tests := []struct {
		name       string
		params     PaginationParams
		wantLimit  int
		wantOffset int
	}{
		{"first page", PaginationParams{Page: 1, PageSize: 20}, 20, 0},
		{"third page", PaginationParams{Page: 3, PageSize: 10}, 10, 20},
		{"zero page falls back to start", PaginationParams{Page: 0, PageSize: 20}, 20, 0},
		{"negative page falls back to start", PaginationParams{Page: -2, PageSize: 20}, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLimit, tt.params.Limit())
			assert.Equal(t, tt.wantOffset, tt.params.Offset())
		})
	}
}
