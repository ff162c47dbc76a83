package model

import "time"

// Status is the terminal state of one song.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Outcome is the result of running the pipeline for one song.
type Outcome struct {
	SongID string
	Title  string
	Status Status

	// FileName is the finalized file name (with extension) on success.
	FileName string

	// Size is the finalized file size in bytes on success.
	Size int64

	// Stage names the pipeline step that failed. Empty on success.
	Stage string

	// Err is the failure cause. Nil on success.
	Err error

	// Warnings collects non-fatal problems, such as artwork that could not
	// be fetched. A song with warnings can still succeed.
	Warnings []string
}

// Succeeded reports whether the song completed.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSucceeded
}

// Report aggregates the outcomes of a batch.
//
// Report is written by a single goroutine, once per song.
type Report struct {
	RunID string

	// Completed and Failed hold song IDs in processing order.
	Completed []string
	Failed    []string

	// Attempted counts songs the batch started processing, including a song
	// interrupted by cancellation.
	Attempted int

	// Cancelled is set when the batch was stopped by the user.
	Cancelled bool

	// SourceErr is set when the playlist source failed mid-iteration.
	SourceErr error

	Outcomes   []Outcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// Record appends a terminal outcome to the report.
func (r *Report) Record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Succeeded() {
		r.Completed = append(r.Completed, o.SongID)
		return
	}
	r.Failed = append(r.Failed, o.SongID)
}

// CompletedOutcomes returns the successful outcomes in processing order.
func (r *Report) CompletedOutcomes() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}

// Run describes one batch as recorded in the run history.
type Run struct {
	ID        string
	Playlist  string
	Format    Format
	OutputDir string
	StartedAt time.Time
}
