package raster

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrImageRead reports a source image that could not be opened or decoded.
var ErrImageRead = errors.New("failed to read image")

// Open decodes the image at path. Any format registered with the image
// package is accepted: PNG, JPEG, GIF, BMP, TIFF and WebP.
func Open(path string) (*Raster, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrImageRead, path, err)
	}
	return New(img), nil
}

// NewFromReader decodes an image from r.
func NewFromReader(r io.Reader) (*Raster, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageRead, err)
	}
	return New(img), nil
}

// ToSingleChannel returns img unchanged when it is already 8 or 16-bit grey,
// otherwise its 8-bit luminance as an *image.Gray with the same bounds.
func ToSingleChannel(img image.Image) image.Image {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return img
	}

	// effect.Grayscale keeps the RGBA layout, so copy it down to one channel.
	lum := effect.Grayscale(img)
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, lum, lum.Bounds().Min, draw.Src)
	return gray
}

// Save encodes img to path, choosing the format from the file extension.
func Save(path string, img image.Image) error {
	encoder, err := encoderFor(path)
	if err != nil {
		return err
	}
	if err := imgio.Save(path, img, encoder); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func encoderFor(path string) (imgio.Encoder, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return imgio.PNGEncoder(), nil
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(95), nil
	case ".bmp":
		return func(w io.Writer, img image.Image) error {
			return bmp.Encode(w, img)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q for %s", ext, path)
	}
}

// IsImageFile reports whether path has an extension Open can decode.
func IsImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}
