package names

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	label := Label()

	parts := strings.Split(label, "-")
	require.Len(t, parts, 2, "expected adjective-surname, got %q", label)
	assert.NotEmpty(t, parts[0])
	assert.NotEmpty(t, parts[1])
	assert.NotContains(t, label, "_")
}

func TestLabel_Variety(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		seen[Label()] = true
	}
	assert.Greater(t, len(seen), 50)
}

func TestUniqueLabel(t *testing.T) {
	taken := make(map[string]bool)
	for range 10 {
		label, err := UniqueLabel(func(l string) bool { return taken[l] }, 0)
		require.NoError(t, err)
		assert.False(t, taken[label], "duplicate label %s", label)
		taken[label] = true
	}
}

func TestUniqueLabel_FallsBackToSuffix(t *testing.T) {
	// Every bare label is taken; only suffixed ones are free.
	label, err := UniqueLabel(func(l string) bool {
		return strings.Count(l, "-") < 2
	}, 5)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(label, "-2"), label)
}

func TestUniqueLabel_AllTaken(t *testing.T) {
	_, err := UniqueLabel(func(string) bool { return true }, 3)
	assert.Error(t, err)
}
