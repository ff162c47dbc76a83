package model

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrMissingID is returned by Song.Validate when the record has no identifier.
	ErrMissingID = errors.New("song has no id")

	// ErrMissingYouTubeID is returned by Song.Validate when there is no media to fetch.
	ErrMissingYouTubeID = errors.New("song has no youtube id")

	// ErrMissingArtists is returned by Song.Validate when the artist list is empty.
	ErrMissingArtists = errors.New("song has no artists")
)

// Song represents a single playlist entry.
//
// Song is the normalized form of a Musare song document, regardless of
// whether it was read from MongoDB or from an exported playlist file.
type Song struct {
	// ID is the opaque song identifier. It is unique within a batch and
	// stable across runs, so it is used to name working files.
	ID string

	// Artists lists the song artists in display order.
	Artists []string

	// Title is the song title.
	Title string

	// YouTubeID is the external media identifier on YouTube.
	YouTubeID string

	// Trim restricts the kept portion of the media. Nil means the full
	// stream is kept.
	Trim *Trim

	// Thumbnail is the URL of the cover image. Empty if unknown.
	Thumbnail string

	// Album is the album title, if the song carries album metadata.
	Album string
}

// Trim is the window of the source media that is kept after transcoding.
//
// Offset and Duration are expressed in seconds and are passed to the
// transcoder as a seek followed by a duration limit.
type Trim struct {
	Offset   float64
	Duration float64
}

// NewTrim builds a Trim from the optional duration and skip duration of a
// song document. Partial trim data is treated as absent.
func NewTrim(duration, skipDuration *float64) *Trim {
	if duration == nil || skipDuration == nil {
		return nil
	}
	return &Trim{Offset: *skipDuration, Duration: *duration}
}

// OffsetArg returns the offset formatted for a command line argument.
func (t Trim) OffsetArg() string {
	return strconv.FormatFloat(t.Offset, 'f', -1, 64)
}

// DurationArg returns the duration formatted for a command line argument.
func (t Trim) DurationArg() string {
	return strconv.FormatFloat(t.Duration, 'f', -1, 64)
}

// Validate reports whether the song carries enough data to be processed.
func (s Song) Validate() error {
	switch {
	case strings.TrimSpace(s.ID) == "":
		return ErrMissingID
	case strings.TrimSpace(s.YouTubeID) == "":
		return ErrMissingYouTubeID
	case len(s.Artists) == 0:
		return ErrMissingArtists
	}
	return nil
}

// DisplayName returns a human readable "artists - title" label.
func (s Song) DisplayName() string {
	return strings.Join(s.Artists, ",") + " - " + s.Title
}

// TagArtist returns the artists joined the way they are written to tags.
func (s Song) TagArtist() string {
	return strings.Join(s.Artists, ";")
}

// SourceURL returns the watch URL for the song's YouTube media.
func (s Song) SourceURL() string {
	return "https://www.youtube.com/watch?v=" + s.YouTubeID
}
