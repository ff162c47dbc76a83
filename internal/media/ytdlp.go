package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"github.com/musare/musare-dl/internal/model"
)

// AudioSelector is the yt-dlp format selector used for audio batches.
const AudioSelector = "bestaudio[ext=m4a]"

// DefaultVideoMaxHeight caps the video resolution when none is configured.
const DefaultVideoMaxHeight = 1080

// FormatSelector returns the yt-dlp format selector for the target format.
// Video prefers the best combined stream up to maxHeight and falls back to
// audio only.
func FormatSelector(format model.Format, maxHeight int) string {
	if format.IsAudio() {
		return AudioSelector
	}
	if maxHeight <= 0 {
		maxHeight = DefaultVideoMaxHeight
	}
	return fmt.Sprintf("best[height<=%d]/bestaudio", maxHeight)
}

// YTDLP fetches song media with yt-dlp.
type YTDLP struct {
	executable string
	maxHeight  int
}

// NewYTDLP creates a fetcher. An empty executable leaves the lookup to
// go-ytdlp, which tries PATH and its own install cache.
func NewYTDLP(executable string, maxHeight int) *YTDLP {
	return &YTDLP{executable: strings.TrimSpace(executable), maxHeight: maxHeight}
}

// Executable returns the configured yt-dlp path, empty when go-ytdlp
// resolves it.
func (y *YTDLP) Executable() string {
	return y.executable
}

// Fetch downloads the media of song to dest without playlist expansion,
// overwriting any previous partial download. The trim window is not
// applied here.
func (y *YTDLP) Fetch(ctx context.Context, song model.Song, format model.Format, dest string) error {
	dl := ytdlp.New().
		Format(FormatSelector(format, y.maxHeight)).
		Output(dest).
		NoPlaylist().
		ForceOverwrites().
		NoProgress().
		Quiet().
		NoWarnings()
	if y.executable != "" {
		dl.SetExecutable(y.executable)
	}

	if _, err := dl.Run(ctx, song.SourceURL()); err != nil {
		return fmt.Errorf("yt-dlp %s: %w", song.YouTubeID, err)
	}
	return nil
}
