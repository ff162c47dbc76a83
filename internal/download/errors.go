package download

import (
	"context"
	"fmt"
)

// Stage names a step of the per-song pipeline.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageAcquire   Stage = "acquire"
	StageTranscode Stage = "transcode"
	StageArtwork   Stage = "artwork"
	StageTag       Stage = "tag"
	StageFinalize  Stage = "finalize"
)

// StepError is the failure of one pipeline step for one song. It fails the
// song but never the batch.
type StepError struct {
	SongID string
	Stage  Stage
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.SongID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// isCancellation reports whether err stopped the batch rather than a song.
// A step that fails while the context is done is treated as cancelled,
// whatever error the step returned.
func isCancellation(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil
}
