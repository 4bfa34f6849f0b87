// Package spinner shows a one-line progress indicator while the CLI waits on
// the daemon. The line next to the spinner is replaced by every Status call,
// so progress updates never scroll the terminal.
package spinner

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// statusBuffer bounds pending status updates; older updates are dropped
// when the display falls behind.
const statusBuffer = 16

// Spinner displays a spinner with a title and a replaceable status line.
type Spinner struct {
	title   string
	output  io.Writer
	program *tea.Program
	lineCh  chan string
	done    chan struct{}
	wg      sync.WaitGroup

	stopOnce sync.Once
	err      error
}

// Enabled reports whether w is a terminal a spinner can draw on.
func Enabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// New creates a Spinner that writes to output (typically os.Stderr).
// If output is nil, os.Stderr is used.
func New(output io.Writer, title string) *Spinner {
	if output == nil {
		output = os.Stderr
	}
	return &Spinner{
		title:  title,
		output: output,
		lineCh: make(chan string, statusBuffer),
		done:   make(chan struct{}),
	}
}

// Start draws the spinner in the background until Stop is called.
func (s *Spinner) Start() {
	width := 80
	if f, ok := s.output.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	s.program = tea.NewProgram(newModel(s.title, s.lineCh, width),
		tea.WithOutput(s.output),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, s.err = s.program.Run()
	}()
}

// Status replaces the line shown next to the spinner. It never blocks.
func (s *Spinner) Status(line string) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.lineCh <- line:
	default:
	}
}

// Stop clears the spinner line and waits for the display to exit.
func (s *Spinner) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.program != nil {
			s.program.Quit()
		}
	})
	s.wg.Wait()
	return s.err
}

// model is the bubbletea model for the spinner.
type model struct {
	spinner  spinner.Model
	title    string
	status   string
	width    int
	lineCh   <-chan string
	quitting bool
}

// lineMsg carries a status update.
type lineMsg string

func newModel(title string, lineCh <-chan string, width int) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		spinner: s,
		title:   title,
		width:   width,
		lineCh:  lineCh,
	}
}

// Init implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForLine(m.lineCh))
}

// Update implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case lineMsg:
		m.status = string(msg)
		return m, waitForLine(m.lineCh)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.QuitMsg:
		m.quitting = true
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) View() string {
	if m.quitting {
		return ""
	}

	line := m.title
	if m.status != "" {
		line += ": " + m.status
	}
	// The spinner glyph and its trailing space take three cells.
	return m.spinner.View() + " " + truncate(line, max(m.width-3, 10))
}

func waitForLine(lineCh <-chan string) tea.Cmd {
	return func() tea.Msg {
		return lineMsg(<-lineCh)
	}
}

// truncate shortens s to maxWidth bytes, ending in "..." when cut.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return ""
	}
	if len(s) <= maxWidth {
		return s
	}
	return s[:maxWidth-3] + "..."
}
