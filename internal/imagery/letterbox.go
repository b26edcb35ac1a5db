package imagery

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// DefaultSize is the edge length of stored thumbnails.
const DefaultSize = 600

// JPEGQuality is used for every stored thumbnail.
const JPEGQuality = 90

// Decode reads any registered image format (JPEG, PNG, GIF, WebP, BMP,
// TIFF) and applies EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Flatten composites img onto white so paletted and alpha images become
// opaque.
func Flatten(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// Letterbox shrinks img to fit a size×size square, keeping its aspect
// ratio, and centers it on a white canvas. Images already smaller than the
// square are not enlarged.
func Letterbox(img image.Image, size int) *image.NRGBA {
	if size <= 0 {
		size = DefaultSize
	}

	fitted := imaging.Fit(Flatten(img), size, size, imaging.Lanczos)
	w, h := fitted.Bounds().Dx(), fitted.Bounds().Dy()

	canvas := imaging.New(size, size, color.White)
	return imaging.Paste(canvas, fitted, image.Pt((size-w)/2, (size-h)/2))
}

// EncodeJPEG writes img as a JPEG thumbnail.
func EncodeJPEG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return nil
}
