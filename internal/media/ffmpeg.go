package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/musare/musare-dl/internal/model"
)

// FFmpeg converts raw downloads with the ffmpeg command line tool.
type FFmpeg struct {
	binary string
}

// NewFFmpeg creates a transcoder. An empty binary uses ffmpeg from PATH.
func NewFFmpeg(binary string) *FFmpeg {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary}
}

// Binary returns the ffmpeg executable the transcoder runs.
func (f *FFmpeg) Binary() string {
	return f.binary
}

// TranscodeArgs builds the ffmpeg arguments converting input to output.
// The output container follows the output extension. With a trim window
// the seek comes before the duration limit, both as output options.
func TranscodeArgs(input, output string, trim *model.Trim) []string {
	args := []string{"-y", "-i", input, "-hide_banner", "-loglevel", "error"}
	if trim != nil {
		args = append(args, "-ss", trim.OffsetArg(), "-t", trim.DurationArg())
	}
	return append(args, output)
}

// Transcode converts input into output. On failure the partially written
// output is removed.
func (f *FFmpeg) Transcode(ctx context.Context, input, output string, trim *model.Trim) error {
	cmd := exec.CommandContext(ctx, f.binary, TranscodeArgs(input, output, trim)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if rmErr := os.Remove(output); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
		return fmt.Errorf("ffmpeg transcode: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
