package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                  string
		page, size            int
		wantOffset, wantLimit int
	}{
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 10, 20, 10},
		{"zero page", 0, 5, 0, 5},
		{"default size", 2, 0, DefaultPageSize, DefaultPageSize},
		{"clamped size", 1, 1000, 0, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			off, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, off)
			assert.Equal(t, tt.wantLimit, lim)
		})
	}
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}
