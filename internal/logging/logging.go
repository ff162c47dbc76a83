// Package logging builds the structured logger shared by musare-dl commands.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w with timestamps. Debug messages are
// only emitted when verbose is set.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
