// Package config provides configuration management for musare-dl.
//
// This package handles:
//   - Loading and saving settings from TOML files
//   - Default configuration values
//   - Validation of the settings a download needs before it starts
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads mp3 files to the current directory
//	// Cover art enabled
//	// Local Musare database with the stock credentials
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.toml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Precedence
//
// Command line flags override values from the file, which override the
// defaults. The command layer applies flags on top of the loaded settings
// and calls Validate before handing them to the download manager.
//
// # Example File
//
//	output_dir = "/music/chill"
//	format = "audio"
//	download_images = true
//	max_songs = 0
//	create_playlist = true
//	playlist_format = "m3u"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//	username = "musare"
//	password = "musare"
//	auth_source = "musare"
//	database = "musare"
package config
