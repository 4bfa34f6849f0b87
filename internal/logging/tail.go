package logging

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// maxTailChunk bounds how much of a burst a single ReadLines call consumes.
// Anything beyond is picked up by the next call.
const maxTailChunk = 4 << 20

// Tail incrementally reads complete lines appended to a file.
//
// Tail keeps its own byte offset and never re-reads content it has already
// returned. A trailing line without a newline is held back until it is
// completed. A Tail is not safe for concurrent use.
type Tail struct {
	path    string
	offset  int64
	partial []byte
	resets  int
}

// NewTail creates a Tail positioned at the beginning of path.
func NewTail(path string) *Tail {
	return &Tail{path: path}
}

// Path returns the file being tailed.
func (t *Tail) Path() string {
	return t.path
}

// Offset returns the byte offset of the next unread byte.
func (t *Tail) Offset() int64 {
	return t.offset
}

// Resets returns how many times the file was observed to shrink.
func (t *Tail) Resets() int {
	return t.resets
}

// SeekEnd moves the offset to the current end of the file so existing
// content is not replayed. A missing file sets the offset to zero.
func (t *Tail) SeekEnd() error {
	t.partial = nil
	info, err := os.Stat(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.offset = 0
			return nil
		}
		return fmt.Errorf("stat log file: %w", err)
	}
	t.offset = info.Size()
	return nil
}

// ReadLines returns the complete lines appended since the previous call.
//
// A missing file yields no lines and no error. If the file is now shorter
// than the offset it was truncated or replaced, and reading restarts from
// the beginning.
func (t *Tail) ReadLines() ([]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log file: %w", err)
	}

	size := info.Size()
	if size < t.offset {
		t.offset = 0
		t.partial = nil
		t.resets++
	}
	if size == t.offset {
		return nil, nil
	}

	want := min(size-t.offset, maxTailChunk)
	data := make([]byte, want)
	n, err := f.ReadAt(data, t.offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	t.offset += int64(n)

	buf := append(t.partial, data[:n]...)
	t.partial = nil

	var lines []string
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimSuffix(buf[:i], []byte("\r"))))
		buf = buf[i+1:]
	}
	if len(buf) > 0 {
		t.partial = bytes.Clone(buf)
	}
	return lines, nil
}
