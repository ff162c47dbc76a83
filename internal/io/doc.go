// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Filesystem-safe file name derivation from song metadata
//   - Working file naming, cleanup and finalization
//   - Output directory locking
//   - Cover art decoding, JPEG encoding and thumbnail scaling
//
// # File Names
//
// NormalizeFileName builds the permanent base name of a song:
//
//	name := ioutils.NormalizeFileName([]string{"Beyoncé"}, "Halo", "a1")
//	// name == "beyonce-halo-a1"
//
// # Finalization
//
// Working files are named after the song ID. Finalize renames the
// transcoded file to its permanent name in a single step:
//
//	path, err := ioutils.Finalize(dir, "a1", name, "mp3")
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//	img, _ := svc.Decode(data)
//	full, _ := svc.EncodeJPEG(img)
//	thumb, _ := svc.Thumbnail(img, 32, 32)
package ioutils
