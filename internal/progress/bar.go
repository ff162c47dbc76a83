package progress

import (
	"fmt"
	"io"

	"github.com/musare/musare-dl/internal/download"
	"github.com/schollz/progressbar/v3"
)

// Bar shows a progress bar with the current song and prints song results
// above it.
type Bar struct {
	w       io.Writer
	verbose bool
	bar     *progressbar.ProgressBar
}

// NewBar creates a Bar writing to w. Verbose messages are printed only when
// verbose is set.
func NewBar(w io.Writer, verbose bool) *Bar {
	return &Bar{w: w, verbose: verbose}
}

// Handle implements Reporter.
func (b *Bar) Handle(e download.ProgressEvent) {
	switch e.Kind {
	case download.EventBatchStarted:
		b.println(e)
		if e.Total <= 0 {
			return
		}
		b.bar = progressbar.NewOptions(e.Total,
			progressbar.OptionSetWriter(b.w),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionShowDescriptionAtLineEnd(),
		)
	case download.EventStage:
		if b.bar != nil {
			b.bar.Describe(e.Message)
		}
	case download.EventSongFinished:
		b.println(e)
		if b.bar != nil {
			_ = b.bar.Add(1)
		}
	case download.EventBatchFinished:
		if b.bar != nil {
			b.bar.Describe("")
			_ = b.bar.Finish()
			fmt.Fprintln(b.w)
		}
		b.println(e)
	default:
		if e.Level == download.LevelVerbose && !b.verbose {
			return
		}
		b.println(e)
	}
}

func (b *Bar) println(e download.ProgressEvent) {
	line := StyleFor(e.Level).Render(e.Message)
	if b.bar != nil && !b.bar.IsFinished() {
		_, _ = progressbar.Bprintln(b.bar, line)
		return
	}
	fmt.Fprintln(b.w, line)
}

// Close implements Reporter.
func (b *Bar) Close() error {
	if b.bar == nil || b.bar.IsFinished() {
		return nil
	}
	return b.bar.Exit()
}
