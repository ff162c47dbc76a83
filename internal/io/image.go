package ioutils

import (
	"bytes"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// JPEGQuality is used for every cover art file written by the ImageService.
const JPEGQuality = 90

// ImageService provides image processing operations for cover art.
//
// ImageService is used to:
//   - Decode downloaded thumbnails (JPEG, PNG, GIF or WebP)
//   - Re-encode them as JPEG for saving and tag embedding
//   - Scale them to small fixed-size icons
//
// Example usage:
//
//	svc := NewImageService()
//
//	img, err := svc.Decode(thumbnailData)
//	full, err := svc.EncodeJPEG(img)
//	icon, err := svc.Thumbnail(img, 32, 32)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Decode decodes image data in any registered format.
func (s *ImageService) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// EncodeJPEG encodes an image as JPEG with JPEGQuality.
func (s *ImageService) EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Thumbnail scales an image to exactly width x height and returns it as
// JPEG. The aspect ratio is not preserved.
//
// The Catmull-Rom algorithm is used for high-quality downscaling.
func (s *ImageService) Thumbnail(img image.Image, width, height int) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return s.EncodeJPEG(dst)
}
