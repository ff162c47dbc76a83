// Package tui provides a Bubble Tea terminal user interface for musare-dl.
//
// The interface follows a batch started elsewhere: the batch goroutine hands
// progress events to a Reporter, which forwards them to the Bubble Tea
// program. Pressing ctrl+c or esc cancels the batch through the context
// cancel function given to Start.
package tui

import (
	"context"
	"fmt"
	"strings"

	bar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/musare/musare-dl/internal/download"
	"github.com/musare/musare-dl/internal/model"
	"github.com/musare/musare-dl/internal/progress"
)

// Layout styles. Message levels use the progress package styles.
var (
	accent = lipgloss.Color("#7D56F4")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)
)

var logPrefix = map[download.ProgressLevel]string{
	download.LevelInfo:    "›",
	download.LevelVerbose: "•",
	download.LevelWarning: "!",
	download.LevelError:   "✗",
	download.LevelSuccess: "✓",
}

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateStarting State = iota
	StateDownloading
	StateCancelling
	StateComplete
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress bar.Model
	logs     []LogEntry
	verbose  bool

	cancel context.CancelFunc

	total    int
	finished int
	failed   int
	current  string
	report   *model.Report

	width int
}

// NewModel creates a new TUI model. cancel stops the batch.
func NewModel(cancel context.CancelFunc, verbose bool) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	prog := bar.New(bar.WithDefaultGradient())
	prog.Width = 50

	return Model{
		state:    StateStarting,
		spinner:  sp,
		progress: prog,
		logs:     make([]LogEntry, 0, maxLogs),
		verbose:  verbose,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// ProgressMsg carries a batch event into the program.
type ProgressMsg struct {
	Event download.ProgressEvent
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.state == StateCancelling || m.state == StateComplete {
				return m, tea.Quit
			}
			if m.cancel != nil {
				m.cancel()
			}
			m.state = StateCancelling
		case "q":
			if m.state == StateComplete {
				return m, tea.Quit
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProgressMsg:
		m.handleEvent(msg.Event)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleEvent(e download.ProgressEvent) {
	switch e.Kind {
	case download.EventBatchStarted:
		m.total = e.Total
		if m.state == StateStarting {
			m.state = StateDownloading
		}
	case download.EventStage:
		m.current = e.Message
		return
	case download.EventSongFinished:
		m.finished++
		if e.Status == model.StatusFailed {
			m.failed++
		}
		m.current = ""
	case download.EventBatchFinished:
		m.state = StateComplete
		m.report = e.Report
		m.current = ""
		return
	}

	// Filter verbose messages if not in verbose mode
	if e.Level == download.LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, LogEntry{Message: e.Message, Level: e.Level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// State returns the current UI state.
func (m Model) State() State {
	return m.state
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎵 musare-dl"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download Musare playlists"))
	b.WriteString("\n\n")

	switch m.state {
	case StateStarting:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(currentStyle.Render("Loading playlist..."))
		b.WriteString("\n\n")
		b.WriteString(m.renderLogs())
	case StateDownloading, StateCancelling:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	var percent float64
	if m.total > 0 {
		percent = float64(m.finished) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(progress.InfoStyle.Render(fmt.Sprintf("Songs: %d/%d | Failed: %d", m.finished, m.total, m.failed)))
	b.WriteString("\n\n")

	switch {
	case m.state == StateCancelling:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(progress.WarningStyle.Render("Cancelling..."))
		b.WriteString("\n\n")
	case m.current != "":
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(currentStyle.Render(m.current))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())
	return b.String()
}

func (m Model) viewComplete() string {
	title := "✨ Download Complete!"
	if m.report != nil && m.report.Cancelled {
		title = "Download Cancelled"
	}

	completed, failed := m.finished-m.failed, m.failed
	if m.report != nil {
		completed, failed = len(m.report.Completed), len(m.report.Failed)
	}

	body := fmt.Sprintf("%s\n\nCompleted: %d\nFailed: %d", title, completed, failed)
	if m.report != nil && len(m.report.Failed) > 0 {
		body += "\n\n" + progress.ErrorStyle.Render("Failed Songs: "+strings.Join(m.report.Failed, ", "))
	}

	var b strings.Builder
	b.WriteString(boxStyle.Render(body))
	b.WriteString("\n")
	b.WriteString(m.renderLogs())
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder
	for _, entry := range m.logs {
		b.WriteString(progress.StyleFor(entry.Level).Render(logPrefix[entry.Level] + " " + entry.Message))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateComplete:
		return "q: quit"
	case StateCancelling:
		return "ctrl+c: quit now"
	default:
		return "ctrl+c/esc: cancel"
	}
}

var _ progress.Reporter = (*Reporter)(nil)

// Reporter forwards batch events to a running Bubble Tea program.
type Reporter struct {
	program *tea.Program
	done    chan struct{}
	err     error
}

// Start runs the TUI in the background. cancel is called when the user
// asks to stop the batch.
func Start(cancel context.CancelFunc, verbose bool, opts ...tea.ProgramOption) *Reporter {
	r := &Reporter{
		program: tea.NewProgram(NewModel(cancel, verbose), opts...),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(r.done)
		_, r.err = r.program.Run()
	}()
	return r
}

// Handle implements progress.Reporter.
func (r *Reporter) Handle(event download.ProgressEvent) {
	r.program.Send(ProgressMsg{Event: event})
}

// Close stops the program, leaving the final view on screen, and waits for
// it to exit.
func (r *Reporter) Close() error {
	r.program.Quit()
	<-r.done
	return r.err
}
