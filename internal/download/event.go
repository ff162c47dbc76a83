package download

import "github.com/musare/musare-dl/internal/model"

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// EventKind tells reporters what a ProgressEvent announces.
type EventKind int

const (
	// EventMessage carries only a message.
	EventMessage EventKind = iota

	// EventBatchStarted carries the number of songs the batch will attempt.
	EventBatchStarted

	// EventStage announces that a song entered a pipeline stage.
	EventStage

	// EventSongFinished announces the terminal status of a song.
	EventSongFinished

	// EventBatchFinished carries the final report.
	EventBatchFinished
)

// ProgressEvent represents a batch progress update.
type ProgressEvent struct {
	Kind    EventKind
	Message string
	Level   ProgressLevel

	// Total is set for EventBatchStarted.
	Total int

	// SongID and Stage are set for song events.
	SongID string
	Stage  Stage

	// Status is set for EventSongFinished.
	Status model.Status

	// Report is set for EventBatchFinished. It is not modified afterwards.
	Report *model.Report
}
