// Package logging provides log file infrastructure for supervised instances:
// per-instance log paths, history and follow readers, and an offset-based
// tail used to consume the agent's structured log incrementally.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Stream identifies one of the log files kept for an instance.
type Stream string

// Log streams kept per instance.
const (
	// StreamAgent is the structured log written by the agent process itself.
	StreamAgent Stream = "agent"
	// StreamPane is the raw terminal output copied out of the session.
	StreamPane Stream = "pane"
)

// DaemonLogName is the file name of the supervisor's own log.
const DaemonLogName = "overseer.log"

// PathManager handles log file path construction and directory management.
type PathManager struct {
	baseDir string
}

// NewPathManager creates a new PathManager with the given base directory.
// The base directory is typically ~/.local/share/overseer/logs.
func NewPathManager(baseDir string) *PathManager {
	return &PathManager{baseDir: baseDir}
}

// BaseDir returns the base log directory.
func (p *PathManager) BaseDir() string {
	return p.baseDir
}

// DaemonLogPath returns the path of the supervisor's own log file.
func (p *PathManager) DaemonLogPath() string {
	return filepath.Join(p.baseDir, DaemonLogName)
}

// InstanceDir returns the log directory for a specific instance.
// Path format: <baseDir>/<instanceID>/
func (p *PathManager) InstanceDir(instanceID string) string {
	return filepath.Join(p.baseDir, instanceID)
}

// LogPath returns the full path for one of an instance's log files.
// Path format: <baseDir>/<instanceID>/<stream>.log
func (p *PathManager) LogPath(instanceID string, stream Stream) string {
	return filepath.Join(p.baseDir, instanceID, string(stream)+".log")
}

// EnsureInstanceDir creates the instance log directory if it doesn't exist.
// Returns the instance directory path.
func (p *PathManager) EnsureInstanceDir(instanceID string) (string, error) {
	dir := p.InstanceDir(instanceID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create instance log directory: %w", err)
	}
	return dir, nil
}

// EnsureLog ensures the parent directory exists for an instance log file.
// Returns the full log file path.
func (p *PathManager) EnsureLog(instanceID string, stream Stream) (string, error) {
	if _, err := p.EnsureInstanceDir(instanceID); err != nil {
		return "", err
	}
	return p.LogPath(instanceID, stream), nil
}

// LogExists checks if a log file exists for the given instance stream.
func (p *PathManager) LogExists(instanceID string, stream Stream) bool {
	_, err := os.Stat(p.LogPath(instanceID, stream))
	return err == nil
}

// RemoveInstanceLogs removes all log files for an instance.
func (p *PathManager) RemoveInstanceLogs(instanceID string) error {
	dir := p.InstanceDir(instanceID)
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove instance logs: %w", err)
	}
	return nil
}

// ListStreams returns the streams that have log files for the given instance.
func (p *PathManager) ListStreams(instanceID string) ([]Stream, error) {
	entries, err := os.ReadDir(p.InstanceDir(instanceID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read instance log directory: %w", err)
	}

	var streams []Stream
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), ".log"); ok {
			streams = append(streams, Stream(name))
		}
	}
	return streams, nil
}
