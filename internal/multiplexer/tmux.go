package multiplexer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/jmgilman/overseer/internal/exec"
)

// tmux implements Multiplexer using the tmux terminal multiplexer.
type tmux struct {
	exec exec.Executor
}

// NewTmux creates a Multiplexer using tmux CLI.
func NewTmux(e exec.Executor) Multiplexer {
	return &tmux{exec: e}
}

func (t *tmux) CreateSession(ctx context.Context, opts *CreateSessionOpts) (*Session, error) {
	if opts == nil || opts.Name == "" {
		return nil, fmt.Errorf("%w: session name is required", ErrCreateFailed)
	}

	exists, err := t.HasSession(ctx, opts.Name)
	if err != nil {
		return nil, fmt.Errorf("check existing sessions: %w", err)
	}
	if exists {
		return nil, ErrSessionExists
	}

	// -d: detached mode (don't attach)
	// -s: session name
	args := []string{"new-session", "-d", "-s", opts.Name}

	if opts.Cwd != "" {
		args = append(args, "-c", opts.Cwd)
	}

	for _, env := range opts.Env {
		args = append(args, "-e", env)
	}

	// Command must come last
	if len(opts.Command) > 0 {
		args = append(args, opts.Command...)
	}

	result, err := t.tmux(ctx, args...)
	if err != nil {
		if strings.Contains(string(result.Stderr), "duplicate session") {
			return nil, ErrSessionExists
		}
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	if opts.LogPath != "" {
		// Log capture failure is non-fatal, session was still created
		//nolint:errcheck // best-effort log capture
		_, _ = t.tmux(ctx, "pipe-pane", "-t", opts.Name, "cat >> "+shellEscape(opts.LogPath))
	}

	return &Session{
		ID:        opts.Name,
		Name:      opts.Name,
		CreatedAt: time.Now(),
	}, nil
}

func (t *tmux) AttachSession(ctx context.Context, sessionName string) error {
	args := []string{"attach-session", "-t", sessionName}

	stdinFd := int(os.Stdin.Fd())

	// Capture stderr while also streaming to os.Stderr for user visibility
	var stderrBuf bytes.Buffer
	stderrWriter := io.MultiWriter(os.Stderr, &stderrBuf)

	run := func() error {
		_, err := t.exec.Run(ctx, &exec.RunOptions{
			Name:   "tmux",
			Args:   args,
			Stdin:  os.Stdin,
			Stdout: os.Stdout,
			Stderr: stderrWriter,
		})
		if err != nil {
			if isMissingSession(stderrBuf.String()) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("%w: %v", ErrAttachFailed, err)
		}
		return nil
	}

	if !term.IsTerminal(stdinFd) {
		return run()
	}

	oldState, err := term.MakeRaw(stdinFd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() { _ = term.Restore(stdinFd, oldState) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)

	return run()
}

func (t *tmux) ListSessions(ctx context.Context) ([]Session, error) {
	result, err := t.tmux(ctx, "list-sessions", "-F", "#{session_name}\t#{session_created}")
	if err != nil {
		// Only treat known "no sessions" messages as empty list.
		// Other errors (even with exit code 1) should be surfaced.
		stderr := string(result.Stderr)
		if strings.Contains(stderr, "no server running") ||
			strings.Contains(stderr, "no sessions") ||
			strings.Contains(stderr, "error connecting to") {
			return []Session{}, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	output := strings.TrimSpace(string(result.Stdout))
	if output == "" {
		return []Session{}, nil
	}

	lines := strings.Split(output, "\n")
	sessions := make([]Session, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, created, _ := strings.Cut(line, "\t")
		s := Session{ID: name, Name: name}
		if secs, err := strconv.ParseInt(created, 10, 64); err == nil {
			s.CreatedAt = time.Unix(secs, 0)
		}
		sessions = append(sessions, s)
	}

	return sessions, nil
}

func (t *tmux) HasSession(ctx context.Context, sessionName string) (bool, error) {
	sessions, err := t.ListSessions(ctx)
	if err != nil {
		return false, err
	}
	for _, s := range sessions {
		if s.Name == sessionName {
			return true, nil
		}
	}
	return false, nil
}

func (t *tmux) KillSession(ctx context.Context, sessionName string) error {
	result, err := t.tmux(ctx, "kill-session", "-t", sessionName)
	if err != nil {
		if isMissingSession(string(result.Stderr)) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("kill session: %w", err)
	}

	return nil
}

func (t *tmux) SendText(ctx context.Context, sessionName, text string) error {
	if text == "" {
		return nil
	}
	// -l sends the text literally so key names like "Enter" are not interpreted
	result, err := t.tmux(ctx, "send-keys", "-t", sessionName, "-l", "--", text)
	if err != nil {
		if isMissingSession(string(result.Stderr)) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

func (t *tmux) SendKeys(ctx context.Context, sessionName string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := append([]string{"send-keys", "-t", sessionName}, keys...)
	result, err := t.tmux(ctx, args...)
	if err != nil {
		if isMissingSession(string(result.Stderr)) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

func (t *tmux) CaptureRecent(ctx context.Context, sessionName string, lines int) ([]string, error) {
	if lines <= 0 {
		lines = 100
	}
	// -p: print to stdout, -J: join wrapped lines, -S -N: start N lines back
	result, err := t.tmux(ctx, "capture-pane", "-t", sessionName, "-p", "-J", "-S", "-"+strconv.Itoa(lines))
	if err != nil {
		if isMissingSession(string(result.Stderr)) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	out := strings.Split(strings.TrimRight(string(result.Stdout), "\n \t"), "\n")
	if len(out) == 1 && out[0] == "" {
		return []string{}, nil
	}
	for i, l := range out {
		out[i] = strings.TrimRight(l, " \t\r")
	}
	if len(out) > lines {
		out = out[len(out)-lines:]
	}
	return out, nil
}

func (t *tmux) tmux(ctx context.Context, args ...string) (*exec.Result, error) {
	return t.exec.Run(ctx, &exec.RunOptions{
		Name:    "tmux",
		Args:    args,
		Timeout: 10 * time.Second,
	})
}

func isMissingSession(stderr string) bool {
	return strings.Contains(stderr, "no session") ||
		strings.Contains(stderr, "can't find session") ||
		strings.Contains(stderr, "no server running")
}

// shellEscape escapes a string for safe use in a shell command.
// It wraps the string in single quotes and escapes any embedded single quotes.
func shellEscape(s string) string {
	escaped := strings.ReplaceAll(s, "'", `'\''`)
	return "'" + escaped + "'"
}

// ShellQuote quotes s for use as a single word in a POSIX shell command line.
func ShellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r == '-' || r == '_' || r == '.' || r == '/' || r == '=' || r == ':' || r == ',' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	}) < 0 {
		return s
	}
	return shellEscape(s)
}
