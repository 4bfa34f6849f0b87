package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendFile(t *testing.T, path, data string) {
	t.Helper()
	//nolint:gosec // G304: path is from test temp directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestTail_MissingFile(t *testing.T) {
	tail := NewTail(filepath.Join(t.TempDir(), "agent.log"))

	require.NoError(t, tail.SeekEnd())
	assert.Zero(t, tail.Offset())

	lines, err := tail.ReadLines()
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestTail_SkipsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	appendFile(t, path, "old 1\nold 2\n")

	tail := NewTail(path)
	require.NoError(t, tail.SeekEnd())
	assert.Equal(t, int64(12), tail.Offset())

	appendFile(t, path, "new 1\n")
	lines, err := tail.ReadLines()
	require.NoError(t, err)
	assert.Equal(t, []string{"new 1"}, lines)

	lines, err = tail.ReadLines()
	require.NoError(t, err)
	assert.Empty(t, lines, "content is never returned twice")
}

func TestTail_PartialLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	tail := NewTail(path)

	appendFile(t, path, "first\nsec")
	lines, err := tail.ReadLines()
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, lines)

	appendFile(t, path, "ond\r\nthird\n")
	lines, err = tail.ReadLines()
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "third"}, lines)
}

func TestTail_Truncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	appendFile(t, path, "a long line before rotation\n")

	tail := NewTail(path)
	require.NoError(t, tail.SeekEnd())

	require.NoError(t, os.WriteFile(path, []byte("fresh\n"), 0o644))
	lines, err := tail.ReadLines()
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, lines)
	assert.Equal(t, 1, tail.Resets())
	assert.Equal(t, int64(6), tail.Offset())
}

func TestTail_FileAppearsLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	tail := NewTail(path)
	require.NoError(t, tail.SeekEnd())

	appendFile(t, path, "hello\n")
	lines, err := tail.ReadLines()
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, lines)
	assert.Equal(t, path, tail.Path())
}
