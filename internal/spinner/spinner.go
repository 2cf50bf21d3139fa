// Package spinner shows a terminal spinner next to the latest line a
// running command has printed. The line is redrawn in place and cleared
// when the command finishes.
package spinner

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Spinner displays a spinner, a title and the latest output line.
type Spinner struct {
	title   string
	program *tea.Program
	reader  *io.PipeReader
	writer  *io.PipeWriter
	lineCh  chan string
	done    chan struct{}
	wg      sync.WaitGroup
	output  io.Writer
	once    sync.Once
}

// New creates a Spinner that draws on output (os.Stderr when nil).
func New(output io.Writer, title string) *Spinner {
	if output == nil {
		output = os.Stderr
	}

	reader, writer := io.Pipe()
	return &Spinner{
		title:   title,
		reader:  reader,
		writer:  writer,
		lineCh:  make(chan string, 100),
		done:    make(chan struct{}),
		output:  output,
	}
}

// Writer returns the writer whose lines appear in the status display.
func (s *Spinner) Writer() io.Writer {
	return s.writer
}

// Start draws the spinner until Stop is called. It blocks, so call it on
// its own goroutine.
func (s *Spinner) Start() error {
	s.wg.Add(1)
	go s.readLines()

	m := newModel(s.title, s.lineCh, terminalWidth())
	s.program = tea.NewProgram(m,
		tea.WithOutput(s.output),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	_, err := s.program.Run()
	close(s.done)
	s.wg.Wait()
	return err
}

// Stop ends the display and clears the spinner line. Safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		// EOF ends readLines, which closes lineCh and quits the program.
		_ = s.writer.Close()
	})
}

// Run shows the spinner while fn runs.
func (s *Spinner) Run(fn func()) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	fn()

	s.Stop()
	return <-errCh
}

// readLines forwards non-empty lines from the pipe to the model. Once the
// program has exited, lines are read and dropped so writers never block.
func (s *Spinner) readLines() {
	defer s.wg.Done()
	defer close(s.lineCh)
	defer s.reader.Close()

	br := bufio.NewReader(s.reader)
	for {
		line, err := br.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			select {
			case s.lineCh <- line:
			case <-s.done:
			}
		}
		if err != nil {
			return
		}
	}
}

// terminalWidth returns the width of stderr, or 80 when it is not a TTY.
func terminalWidth() int {
	if fd := int(os.Stderr.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

// model is the bubbletea model for the spinner.
type model struct {
	spinner    spinner.Model
	title      string
	statusLine string
	width      int
	lineCh     <-chan string
	quitting   bool
}

// lineMsg carries a new output line.
type lineMsg string

// doneMsg reports that the output has ended.
type doneMsg struct{}

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	lineStyle    = lipgloss.NewStyle().Faint(true)
)

func newModel(title string, lineCh <-chan string, width int) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

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
	return tea.Batch(
		m.spinner.Tick,
		waitForLine(m.lineCh),
	)
}

// Update implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case lineMsg:
		m.statusLine = string(msg)
		return m, waitForLine(m.lineCh)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case doneMsg:
		m.quitting = true
		return m, tea.Quit
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

	// spinner glyph plus a space
	avail := m.width - 3
	title := truncate(m.title, avail)
	view := m.spinner.View() + " " + titleStyle.Render(title)

	rest := avail - len(title) - 3
	if m.statusLine != "" && rest >= 10 {
		view += "   " + lineStyle.Render(truncate(m.statusLine, rest))
	}
	return view
}

// waitForLine waits for the next line; a closed channel ends the program.
func waitForLine(lineCh <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-lineCh
		if !ok {
			return doneMsg{}
		}
		return lineMsg(line)
	}
}

// truncate shortens s to maxWidth, ending with "..." when cut.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return ""
	}
	if len(s) <= maxWidth {
		return s
	}
	return s[:maxWidth-3] + "..."
}
