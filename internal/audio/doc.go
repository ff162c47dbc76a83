// Package audio provides audio file manipulation services including
// ID3 tag writing and playlist generation.
//
// # ID3 Tagging
//
// Use the Tagger to write ID3 tags to MP3 files:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, audio.Tags{
//	    Artist: "X;Y",
//	    Title:  "Song1",
//	    Album:  "Album",
//	    Icon:   thumbJPEG,
//	    Cover:  fullJPEG,
//	})
//
// The tagger supports:
//   - Artist, Title, Album
//   - Icon and front cover pictures (embedded in MP3)
//
// # Playlist Generation
//
// Generate playlists of the songs a batch completed:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("My Playlist", entries)
//	os.WriteFile("playlist.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
