package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"My Shop":          "my-shop",
		"  Books & Music ": "books-music",
		"already-slugged":  "already-slugged",
		"Ünïcode Store!!":  "ünïcode-store",
		"---":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
