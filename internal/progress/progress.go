// Package progress renders batch progress events on a terminal.
//
// Reporters receive every download.ProgressEvent of a batch in order, on the
// goroutine running the batch. Bar draws a progress bar for interactive
// terminals, Log writes structured log lines for pipes and files, and Nop
// discards everything.
package progress

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/musare/musare-dl/internal/download"
)

// Reporter consumes batch progress events.
type Reporter interface {
	Handle(event download.ProgressEvent)
	Close() error
}

// Styles for message levels.
var (
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	VerboseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// StyleFor returns the style used to print a message of the given level.
func StyleFor(level download.ProgressLevel) lipgloss.Style {
	switch level {
	case download.LevelVerbose:
		return VerboseStyle
	case download.LevelWarning:
		return WarningStyle
	case download.LevelError:
		return ErrorStyle
	case download.LevelSuccess:
		return SuccessStyle
	default:
		return InfoStyle
	}
}

// Nop discards all events.
type Nop struct{}

// Handle implements Reporter.
func (Nop) Handle(download.ProgressEvent) {}

// Close implements Reporter.
func (Nop) Close() error { return nil }
