package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, "exact", Truncate("exact", 5))

	cut := Truncate(strings.Repeat("a", 150), 100)
	assert.Equal(t, 100, len([]rune(cut)))
	assert.True(t, strings.HasSuffix(cut, "…"))

	// Multi-byte input is cut on rune boundaries.
	cut = Truncate(strings.Repeat("ç", 150), 100)
	assert.Equal(t, 100, len([]rune(cut)))
}
