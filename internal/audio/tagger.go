package audio

import (
	"github.com/bogem/id3v2"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value (sets to empty string).
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the song record.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// Picture descriptions written to the attached picture frames.
const (
	IconDescription  = "icon"
	CoverDescription = "cover"
)

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    Artist:   TagModify,      // Update artist from the song record
//	    Title:    TagModify,      // Update title from the song record
//	    Album:    TagModify,      // Update album when the song has one
//	    Comments: TagEmpty,       // Clear any comments left by the source
//	}
type TagConfig struct {
	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// Title controls the TIT2 (Title) frame.
	Title TagEditAction

	// Album controls the TALB (Album title) frame. An empty album value
	// leaves the frame untouched even with TagModify.
	Album TagEditAction

	// Comments controls the COMM frames.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
//
// Artist, title and album are written from the song record; comments are
// left as they are.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		Artist:   TagModify,
		Title:    TagModify,
		Album:    TagModify,
		Comments: TagDoNotModify,
	}
}

// Tags holds the values written to one file.
type Tags struct {
	// Artist is the already joined artist list.
	Artist string
	Title  string
	Album  string

	// Icon and Cover are JPEG images. Both are embedded only when both are
	// present.
	Icon  []byte
	Cover []byte
}

// HasArtwork reports whether the tags carry both pictures.
func (t Tags) HasArtwork() bool {
	return len(t.Icon) > 0 && len(t.Cover) > 0
}

// Tagger writes ID3 tags to MP3 files.
//
// Tagger uses the id3v2 library to modify MP3 file metadata including:
//   - Artist, Title, Album
//   - File icon and front cover (attached pictures)
//
// All pending changes are committed with a single save.
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags to the MP3 file at path.
//
// This method:
//  1. Opens the file and parses any existing tag
//  2. Updates string tags based on TagConfig settings
//  3. Replaces attached pictures when artwork is provided
//  4. Saves the modified tag to the file
//
// Returns an error if the file cannot be opened or saved.
func (t *Tagger) SaveTags(path string, tags Tags) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	t.updateStringTags(tag, tags)

	if tags.HasArtwork() {
		t.updateArtwork(tag, tags.Icon, tags.Cover)
	}

	return tag.Save()
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, tags Tags) {
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	// Artist (TPE1)
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(tags.Artist)
	}

	// Title (TIT2)
	switch t.config.Title {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(tags.Title)
	}

	// Album (TALB)
	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		if tags.Album != "" {
			tag.SetAlbum(tags.Album)
		}
	}

	// Comments (COMM)
	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}
}

// updateArtwork embeds the icon and the front cover as attached pictures.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, icon, cover []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFileIcon,
		Description: IconDescription,
		Picture:     icon,
	})
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: CoverDescription,
		Picture:     cover,
	})
}
