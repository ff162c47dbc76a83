// Package source reads Musare playlists into song records.
//
// A playlist comes either from the Musare MongoDB database (Mongo) or from
// a playlist file exported by Musare (File). Both expose the same ordered,
// countable sequence of model.Song values through the Source interface.
package source

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/musare/musare-dl/internal/model"
)

var (
	// ErrPlaylistNotFound is returned when the playlist does not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrInvalidPlaylistFile is returned when a playlist file cannot be decoded.
	ErrInvalidPlaylistFile = errors.New("invalid playlist file")
)

// SongError is a song that could not be read from the source. Unlike other
// errors it does not end the sequence.
type SongError struct {
	SongID string
	Err    error
}

func (e *SongError) Error() string {
	if e.SongID == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("song %s: %v", e.SongID, e.Err)
}

func (e *SongError) Unwrap() error {
	return e.Err
}

// Source is an ordered, countable sequence of songs.
type Source interface {
	// Name is a human readable playlist label.
	Name() string

	// Count returns the number of songs Songs will yield.
	Count(ctx context.Context) (int, error)

	// Songs yields the songs in playlist order. A *SongError fails only
	// that song; any other error ends the sequence.
	Songs(ctx context.Context) iter.Seq2[model.Song, error]

	// Close releases the resources held by the source.
	Close(ctx context.Context) error
}

type discogsInfo struct {
	Album struct {
		Title string `json:"title" bson:"title"`
	} `json:"album" bson:"album"`
}

// SongDocument holds the song document fields shared by both sources.
type SongDocument struct {
	Artists      []string     `json:"artists" bson:"artists"`
	Title        string       `json:"title" bson:"title"`
	YouTubeID    string       `json:"youtubeId" bson:"youtubeId"`
	Duration     *float64     `json:"duration" bson:"duration"`
	SkipDuration *float64     `json:"skipDuration" bson:"skipDuration"`
	Thumbnail    string       `json:"thumbnail" bson:"thumbnail"`
	Discogs      *discogsInfo `json:"discogs" bson:"discogs"`
}

func (f SongDocument) toSong(id string) model.Song {
	song := model.Song{
		ID:        id,
		Artists:   f.Artists,
		Title:     f.Title,
		YouTubeID: f.YouTubeID,
		Trim:      model.NewTrim(f.Duration, f.SkipDuration),
		Thumbnail: f.Thumbnail,
	}
	if f.Discogs != nil {
		song.Album = f.Discogs.Album.Title
	}
	return song
}
