package model

import (
	"fmt"
	"strings"
)

// Format is the target media format of a batch.
type Format string

const (
	// FormatAudio produces mp3 files with ID3 tags and optional thumbnails.
	FormatAudio Format = "audio"

	// FormatVideo produces mp4 files.
	FormatVideo Format = "video"
)

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatAudio:
		return FormatAudio, nil
	case FormatVideo:
		return FormatVideo, nil
	}
	return "", fmt.Errorf("invalid format %q, audio or video only", s)
}

// Extension returns the file extension (without dot) of the format.
func (f Format) Extension() string {
	if f == FormatVideo {
		return "mp4"
	}
	return "mp3"
}

// IsAudio reports whether the format is audio.
func (f Format) IsAudio() bool {
	return f == FormatAudio
}

// String implements fmt.Stringer.
func (f Format) String() string {
	return string(f)
}

// UnmarshalText implements encoding.TextUnmarshaler so formats can be read
// directly from configuration files.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f), nil
}
