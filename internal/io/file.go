// Package ioutils provides file system utilities for musare-dl.
package ioutils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// ArtistSeparator joins multiple artists inside a file name.
	ArtistSeparator = "_"

	// TempExtension marks a raw, not yet transcoded download.
	TempExtension = "tmp"

	// ImagesDir is the subdirectory of the output directory holding cover art.
	ImagesDir = "images"
)

var (
	invalidNameChars = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// NormalizeFileName derives the permanent base name (without extension) of
// a song from its artists, title and ID.
//
// The result only contains ASCII letters, digits, underscores and hyphens and
// never starts or ends with an underscore or hyphen. Accented letters are
// folded to their ASCII base, any other non-ASCII character is dropped.
// Pathological input can produce an empty name; callers decide on a fallback.
//
// Example:
//
//	NormalizeFileName([]string{"X"}, "Song1", "a")              // "x-song1-a"
//	NormalizeFileName([]string{"Sigur Rós"}, "Hoppípolla", "b") // "sigur_ros-hoppipolla-b"
func NormalizeFileName(artists []string, title, id string) string {
	return Slugify(strings.Join(artists, ArtistSeparator) + "-" + title + "-" + id)
}

// Slugify folds value into a lowercase, filesystem-safe token.
func Slugify(value string) string {
	folded, _, err := transform.String(asciiFolder(), value)
	if err != nil {
		folded = ""
	}
	folded = invalidNameChars.ReplaceAllString(folded, "")
	folded = whitespaceRuns.ReplaceAllString(folded, "_")
	return strings.Trim(strings.ToLower(folded), "-_")
}

func asciiFolder() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
}

// WorkingPath returns the path of an ID-named working file.
func WorkingPath(dir, id, ext string) string {
	return filepath.Join(dir, id+"."+ext)
}

// ImagePaths returns the full size and thumbnail cover art paths for a
// normalized name.
func ImagePaths(dir, name string) (full, thumb string) {
	base := filepath.Join(dir, ImagesDir, name)
	return base + ".jpg", base + ".thumb.jpg"
}

// Finalize renames the working file <id>.<ext> to <name>.<ext> inside dir
// and returns the final path.
//
// An empty name falls back to the ID so the file is never left nameless.
// The rename is the only point where a song's output receives its permanent
// name.
func Finalize(dir, id, name, ext string) (string, error) {
	if name == "" {
		name = id
	}
	src := WorkingPath(dir, id, ext)
	dst := filepath.Join(dir, name+"."+ext)
	if src == dst {
		if _, err := os.Stat(src); err != nil {
			return "", err
		}
		return dst, nil
	}
	if err := os.Rename(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// RemoveIfExists deletes the given paths, ignoring files that do not exist.
// The first other error is returned after all paths were tried.
func RemoveIfExists(paths ...string) error {
	var firstErr error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
