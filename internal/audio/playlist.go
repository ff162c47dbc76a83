package audio

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PlaylistFormat is the file format of a generated playlist.
type PlaylistFormat int

const (
	// FormatM3U writes .m3u files, optionally with #EXTINF lines.
	FormatM3U PlaylistFormat = iota
	FormatPLS
	FormatWPL
	FormatZPL
)

// ErrUnknownPlaylistFormat is returned for playlist formats other than
// m3u, pls, wpl and zpl.
var ErrUnknownPlaylistFormat = errors.New("unknown playlist format")

// ParsePlaylistFormat maps a configuration value to a PlaylistFormat,
// case-insensitively.
func ParsePlaylistFormat(s string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m3u":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	case "wpl":
		return FormatWPL, nil
	case "zpl":
		return FormatZPL, nil
	}
	return FormatM3U, fmt.Errorf("%w %q, want m3u, pls, wpl or zpl", ErrUnknownPlaylistFormat, s)
}

// Extension returns the file extension for the playlist format.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// PlaylistEntry is one finalized file listed in a playlist.
type PlaylistEntry struct {
	// FileName is relative to the playlist file.
	FileName string
	Artist   string
	Title    string

	// Duration in seconds. Zero when unknown.
	Duration float64
}

// PlaylistCreator renders the completed songs of a batch as a playlist.
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist("Chill", entries)
//	// #EXTM3U
//	// #EXTINF:180,Artist - Song Title
//	// artist-song_title-5f1b.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool
}

// NewPlaylistCreator creates a PlaylistCreator. extended adds #EXTINF lines
// to M3U output and is ignored for other formats.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the playlist format the creator writes.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist renders entries in order. File names are written as is,
// so the playlist must live in the directory of the songs.
func (p *PlaylistCreator) CreatePlaylist(title string, entries []PlaylistEntry) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(entries)
	case FormatWPL:
		return p.createWPL(title, entries)
	case FormatZPL:
		return p.createZPL(title, entries)
	default:
		return p.createM3U(entries)
	}
}

func (p *PlaylistCreator) createM3U(entries []PlaylistEntry) string {
	var sb strings.Builder
	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", int(e.Duration), e.Artist, e.Title)
		}
		fmt.Fprintln(&sb, e.FileName)
	}
	return sb.String()
}

func (p *PlaylistCreator) createPLS(entries []PlaylistEntry) string {
	var sb strings.Builder
	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		n := i + 1
		fmt.Fprintf(&sb, "File%d=%s\nTitle%d=%s - %s\nLength%d=%d\n",
			n, e.FileName, n, e.Artist, e.Title, n, int(e.Duration))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\nVersion=2\n", len(entries))
	return sb.String()
}

func (p *PlaylistCreator) createWPL(title string, entries []PlaylistEntry) string {
	return writeSMIL(`<?wpl version="1.0"?>`, title, nil, entries, func(e PlaylistEntry) string {
		return fmt.Sprintf(`<media src="%s"/>`, escapeXML(e.FileName))
	})
}

// createZPL writes a Zune playlist. Durations are in milliseconds.
func (p *PlaylistCreator) createZPL(title string, entries []PlaylistEntry) string {
	meta := []string{
		`<meta name="Generator" content="musare-dl"/>`,
		fmt.Sprintf(`<meta name="ItemCount" content="%d"/>`, len(entries)),
	}
	return writeSMIL(`<?zpl version="2.0"?>`, title, meta, entries, func(e PlaylistEntry) string {
		duration := time.Duration(e.Duration * float64(time.Second))
		return fmt.Sprintf(`<media src="%s" trackTitle="%s" trackArtist="%s" duration="%d"/>`,
			escapeXML(e.FileName), escapeXML(e.Title), escapeXML(e.Artist), duration.Milliseconds())
	})
}

// writeSMIL renders the SMIL document shared by WPL and ZPL.
func writeSMIL(header, title string, meta []string, entries []PlaylistEntry, media func(PlaylistEntry) string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n<smil>\n  <head>\n    <title>%s</title>\n", header, escapeXML(title))
	for _, m := range meta {
		fmt.Fprintf(&sb, "    %s\n", m)
	}
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "      %s\n", media(e))
	}
	sb.WriteString("    </seq>\n  </body>\n</smil>\n")
	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
