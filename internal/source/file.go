package source

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/musare/musare-dl/internal/model"
)

// documentID accepts both plain string IDs and extended JSON ObjectIDs
// ({"$oid": "..."}).
type documentID string

func (d *documentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*d = ""
		return nil
	case len(data) > 0 && data[0] == '{':
		var oid struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(data, &oid); err != nil {
			return err
		}
		*d = documentID(oid.OID)
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = documentID(s)
		return nil
	}
	// Numeric IDs are kept verbatim.
	*d = documentID(data)
	return nil
}

type fileSong struct {
	ID documentID `json:"_id"`
	SongDocument
}

type playlistFile struct {
	Playlist *struct {
		DisplayName string     `json:"displayName"`
		Songs       []fileSong `json:"songs"`
	} `json:"playlist"`
}

// File is a playlist exported from Musare as JSON:
//
//	{"playlist": {"displayName": "Chill", "songs": [{"_id": "...", ...}]}}
//
// The whole file is decoded when it is opened.
type File struct {
	name  string
	songs []model.Song
}

// OpenFile reads and decodes the playlist file at path.
func OpenFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playlist file: %w", err)
	}
	return ParseFile(data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// ParseFile decodes playlist file content. fallbackName is used when the
// playlist carries no display name.
func ParseFile(data []byte, fallbackName string) (*File, error) {
	var doc playlistFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlaylistFile, err)
	}
	if doc.Playlist == nil {
		return nil, fmt.Errorf("%w: missing playlist object", ErrInvalidPlaylistFile)
	}

	f := &File{name: doc.Playlist.DisplayName}
	if f.name == "" {
		f.name = fallbackName
	}
	f.songs = make([]model.Song, 0, len(doc.Playlist.Songs))
	for _, s := range doc.Playlist.Songs {
		f.songs = append(f.songs, s.toSong(string(s.ID)))
	}
	return f, nil
}

// Name implements Source.
func (f *File) Name() string {
	return f.name
}

// Count implements Source.
func (f *File) Count(context.Context) (int, error) {
	return len(f.songs), nil
}

// Songs implements Source.
func (f *File) Songs(context.Context) iter.Seq2[model.Song, error] {
	return func(yield func(model.Song, error) bool) {
		for _, s := range f.songs {
			if !yield(s, nil) {
				return
			}
		}
	}
}

// Close implements Source.
func (f *File) Close(context.Context) error {
	return nil
}
