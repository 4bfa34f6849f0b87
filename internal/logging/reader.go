package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// DefaultTailLines is the default number of lines to read when tailing.
const DefaultTailLines = 100

// maxLineSize bounds a single log line; agent records with large tool
// payloads exceed bufio's 64KiB default.
const maxLineSize = 1 << 20

// Reader provides functionality to read instance log files.
type Reader struct {
	pathMgr *PathManager
}

// NewReader creates a new Reader with the given PathManager.
func NewReader(pathMgr *PathManager) *Reader {
	return &Reader{pathMgr: pathMgr}
}

// ReadAll reads the entire log file for an instance stream.
func (r *Reader) ReadAll(instanceID string, stream Stream) ([]string, error) {
	return readAllLines(r.pathMgr.LogPath(instanceID, stream))
}

// ReadLastN reads the last n lines from an instance stream's log file.
// If n <= 0, uses DefaultTailLines.
func (r *Reader) ReadLastN(instanceID string, stream Stream, n int) ([]string, error) {
	return ReadLastLines(r.pathMgr.LogPath(instanceID, stream), n)
}

// Follow writes lines appended to an instance stream to out until ctx is
// done, checking every pollInterval. Content present when Follow starts is
// skipped. The file need not exist yet, and a truncated file is read again
// from the start. Only complete lines are written.
func (r *Reader) Follow(ctx context.Context, instanceID string, stream Stream, out io.Writer, pollInterval time.Duration) error {
	tail := NewTail(r.pathMgr.LogPath(instanceID, stream))
	if err := tail.SeekEnd(); err != nil {
		return err
	}
	return follow(ctx, tail, out, pollInterval)
}

// FollowWithHistory writes the last n lines of an instance stream and then
// follows it like Follow. History and followed lines come from the same
// read offset, so nothing is lost or repeated between the two.
func (r *Reader) FollowWithHistory(ctx context.Context, instanceID string, stream Stream, out io.Writer, n int, pollInterval time.Duration) error {
	if n <= 0 {
		n = DefaultTailLines
	}

	tail := NewTail(r.pathMgr.LogPath(instanceID, stream))
	var history []string
	for {
		before := tail.Offset()
		lines, err := tail.ReadLines()
		if err != nil {
			return err
		}
		history = append(history, lines...)
		if over := len(history) - n; over > 0 {
			history = history[over:]
		}
		if tail.Offset() == before {
			break
		}
	}

	if err := writeLines(out, history); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return follow(ctx, tail, out, pollInterval)
}

func follow(ctx context.Context, tail *Tail, out io.Writer, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		for {
			lines, err := tail.ReadLines()
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				break
			}
			if err := writeLines(out, lines); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}
}

func writeLines(out io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// ReadLastLines reads the last n lines from the file at path.
// If n <= 0, uses DefaultTailLines. The returned error wraps the
// os error, so os.IsNotExist and errors.Is(err, fs.ErrNotExist) work.
func ReadLastLines(path string, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultTailLines
	}
	return readLastNLines(path, n)
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}

// readAllLines reads all lines from a file.
func readAllLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := newScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}

	return lines, nil
}

// readLastNLines reads the last n lines from a file.
// Uses a ring buffer approach for efficiency with large files.
func readLastNLines(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	ring := make([]string, n)
	idx := 0
	count := 0

	scanner := newScanner(file)
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % n
		count++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}

	if count == 0 {
		return nil, nil
	}

	if count < n {
		return ring[:count], nil
	}

	result := make([]string, n)
	for i := range n {
		result[i] = ring[(idx+i)%n]
	}
	return result, nil
}
