package progress

import (
	"github.com/charmbracelet/log"
	"github.com/musare/musare-dl/internal/download"
)

// Log writes events as structured log lines. Stage changes are logged at
// debug level.
type Log struct {
	logger *log.Logger
}

// NewLog creates a Log reporter.
func NewLog(logger *log.Logger) *Log {
	return &Log{logger: logger}
}

// Handle implements Reporter.
func (l *Log) Handle(e download.ProgressEvent) {
	var keyvals []any
	if e.SongID != "" {
		keyvals = append(keyvals, "song", e.SongID)
	}
	if e.Kind == download.EventStage {
		l.logger.Debug(e.Message, append(keyvals, "stage", e.Stage)...)
		return
	}

	switch e.Level {
	case download.LevelVerbose:
		l.logger.Debug(e.Message, keyvals...)
	case download.LevelWarning:
		l.logger.Warn(e.Message, keyvals...)
	case download.LevelError:
		l.logger.Error(e.Message, keyvals...)
	default:
		l.logger.Info(e.Message, keyvals...)
	}
}

// Close implements Reporter.
func (l *Log) Close() error {
	return nil
}
