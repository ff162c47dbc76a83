// Package media drives the external tools that fetch and convert songs.
//
// YTDLP downloads the raw media of a song from YouTube with yt-dlp, and
// FFmpeg converts the raw download into the target format, applying the
// song's trim window. Both write to paths chosen by the caller and never
// rename their outputs.
package media
