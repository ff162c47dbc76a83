package model

import (
	"errors"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestNewTrim(t *testing.T) {
	tests := []struct {
		name         string
		duration     *float64
		skipDuration *float64
		want         *Trim
	}{
		{"both set", ptr(200), ptr(5), &Trim{Offset: 5, Duration: 200}},
		{"zero offset", ptr(180.5), ptr(0), &Trim{Offset: 0, Duration: 180.5}},
		{"duration only", ptr(200), nil, nil},
		{"skip only", nil, ptr(5), nil},
		{"neither", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTrim(tt.duration, tt.skipDuration)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("NewTrim() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("NewTrim() = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestTrim_Args(t *testing.T) {
	trim := Trim{Offset: 12.5, Duration: 200}
	if got := trim.OffsetArg(); got != "12.5" {
		t.Errorf("OffsetArg() = %q, want %q", got, "12.5")
	}
	if got := trim.DurationArg(); got != "200" {
		t.Errorf("DurationArg() = %q, want %q", got, "200")
	}
}

func TestSong_Validate(t *testing.T) {
	valid := Song{ID: "a", Artists: []string{"X"}, Title: "Song1", YouTubeID: "v1"}

	tests := []struct {
		name   string
		mutate func(*Song)
		want   error
	}{
		{"valid", func(*Song) {}, nil},
		{"missing id", func(s *Song) { s.ID = " " }, ErrMissingID},
		{"missing youtube id", func(s *Song) { s.YouTubeID = "" }, ErrMissingYouTubeID},
		{"missing artists", func(s *Song) { s.Artists = nil }, ErrMissingArtists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			song := valid
			tt.mutate(&song)
			if err := song.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSong_Labels(t *testing.T) {
	song := Song{ID: "a", Artists: []string{"X", "Y"}, Title: "Song1", YouTubeID: "v1"}

	if got := song.DisplayName(); got != "X,Y - Song1" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := song.TagArtist(); got != "X;Y" {
		t.Errorf("TagArtist() = %q", got)
	}
	if got := song.SourceURL(); got != "https://www.youtube.com/watch?v=v1" {
		t.Errorf("SourceURL() = %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantExt string
		wantErr bool
	}{
		{"audio", FormatAudio, "mp3", false},
		{"VIDEO", FormatVideo, "mp4", false},
		{" Audio ", FormatAudio, "mp3", false},
		{"flac", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if ext := got.Extension(); ext != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", ext, tt.wantExt)
			}
		})
	}
}

func TestFormat_UnmarshalText(t *testing.T) {
	var f Format
	if err := f.UnmarshalText([]byte("Video")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if f != FormatVideo {
		t.Errorf("UnmarshalText() = %q, want %q", f, FormatVideo)
	}
	if err := f.UnmarshalText([]byte("ogg")); err == nil {
		t.Error("UnmarshalText() should reject unknown formats")
	}
}

func TestReport_Record(t *testing.T) {
	var r Report
	r.Record(Outcome{SongID: "a", Status: StatusSucceeded, FileName: "x-song1-a.mp3"})
	r.Record(Outcome{SongID: "b", Status: StatusFailed, Stage: "transcode"})
	r.Record(Outcome{SongID: "c", Status: StatusSucceeded})

	if len(r.Completed) != 2 || r.Completed[0] != "a" || r.Completed[1] != "c" {
		t.Errorf("Completed = %v, want [a c]", r.Completed)
	}
	if len(r.Failed) != 1 || r.Failed[0] != "b" {
		t.Errorf("Failed = %v, want [b]", r.Failed)
	}
	if got := len(r.CompletedOutcomes()); got != 2 {
		t.Errorf("CompletedOutcomes() len = %d, want 2", got)
	}
}
