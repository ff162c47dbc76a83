package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/musare/musare-dl/internal/audio"
	"github.com/musare/musare-dl/internal/model"
)

// DefaultFileName is the config file looked up in the user config directory.
const DefaultFileName = "config.toml"

var (
	// ErrInvalidPlaylistID is returned for playlist IDs that are not 24 hex characters.
	ErrInvalidPlaylistID = errors.New("playlist id must be 24 hexadecimal characters")

	// ErrNoSource is returned when neither a playlist ID nor a playlist file is set.
	ErrNoSource = errors.New("a playlist id or a playlist file is required")

	// ErrBothSources is returned when a playlist ID and a playlist file are both set.
	ErrBothSources = errors.New("playlist id and playlist file are mutually exclusive")

	// ErrInvalidMaxSongs is returned for a negative song cap.
	ErrInvalidMaxSongs = errors.New("max songs must be zero or positive")

	// ErrOutputNotDir is returned when the output path is missing or not a directory.
	ErrOutputNotDir = errors.New("output path is not an existing directory")
)

var playlistIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// MongoSettings holds the connection parameters of the Musare database.
type MongoSettings struct {
	URI        string `toml:"uri"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
	AuthSource string `toml:"auth_source"`
	Database   string `toml:"database"`
}

// Settings holds all configuration options.
//
// Settings is built once before a batch starts and is not modified while
// the batch runs.
type Settings struct {
	// Source settings. Exactly one must be set for a download.
	PlaylistID   string `toml:"-"`
	PlaylistFile string `toml:"-"`

	// Download settings
	OutputDir             string       `toml:"output_dir"`
	Format                model.Format `toml:"format"`
	DownloadImages        bool         `toml:"download_images"`
	MaxSongs              int          `toml:"max_songs"`
	DownloadMaxRetries    int          `toml:"download_max_retries"`
	DownloadRetryCooldown float64      `toml:"download_retry_cooldown"`
	DownloadRetryExponent float64      `toml:"download_retry_exponent"`

	// External tools
	FFmpegPath     string `toml:"ffmpeg_path"`
	YTDLPPath      string `toml:"ytdlp_path"`
	VideoMaxHeight int    `toml:"video_max_height"`

	// Playlist settings
	CreatePlaylist bool   `toml:"create_playlist"`
	PlaylistFormat string `toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `toml:"m3u_extended"`

	// HistoryDB is the path of the run history database. Empty disables it.
	HistoryDB string `toml:"history_db"`

	Mongo MongoSettings `toml:"mongo"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		OutputDir:             ".",
		Format:                model.FormatAudio,
		DownloadImages:        true,
		MaxSongs:              0,
		DownloadMaxRetries:    3,
		DownloadRetryCooldown: 0.5,
		DownloadRetryExponent: 2.0,

		FFmpegPath:     "ffmpeg",
		YTDLPPath:      "yt-dlp",
		VideoMaxHeight: 1080,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		HistoryDB: DefaultHistoryPath(),

		Mongo: MongoSettings{
			URI:        "mongodb://localhost:27017",
			Username:   "musare",
			Password:   "musare",
			AuthSource: "musare",
			Database:   "musare",
		},
	}
}

// DefaultPath returns the default config file location, or an empty string
// when the user config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "musare-dl", DefaultFileName)
}

// DefaultHistoryPath returns the default run history database location, or
// an empty string when the user data directory is unknown.
func DefaultHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "musare-dl", "history.db")
}

// Load reads settings from a TOML file on top of the defaults.
//
// A missing file is not an error: the defaults are returned.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	if _, err := toml.DecodeFile(path, settings); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// Validate checks the settings needed before a download can start.
func (s *Settings) Validate() error {
	switch {
	case s.PlaylistID != "" && s.PlaylistFile != "":
		return ErrBothSources
	case s.PlaylistID == "" && s.PlaylistFile == "":
		return ErrNoSource
	case s.PlaylistID != "" && !playlistIDPattern.MatchString(s.PlaylistID):
		return fmt.Errorf("%w: %q", ErrInvalidPlaylistID, s.PlaylistID)
	}

	if _, err := model.ParseFormat(string(s.Format)); err != nil {
		return err
	}
	if s.MaxSongs < 0 {
		return ErrInvalidMaxSongs
	}
	if _, err := audio.ParsePlaylistFormat(s.PlaylistFormat); err != nil {
		return err
	}
	if s.DownloadMaxRetries < 1 {
		return fmt.Errorf("download_max_retries must be at least 1, got %d", s.DownloadMaxRetries)
	}

	info, err := os.Stat(s.OutputDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrOutputNotDir, s.OutputDir)
	}
	return nil
}

// ParseBool parses the images flag. Only "true" and "false" are accepted,
// case-insensitively.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q, true or false only", s)
}

// ToPlaylistFormat converts the configured playlist format. Settings that
// passed Validate always hold a known format.
func (s *Settings) ToPlaylistFormat() audio.PlaylistFormat {
	format, _ := audio.ParsePlaylistFormat(s.PlaylistFormat)
	return format
}
