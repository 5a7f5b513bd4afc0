package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// Default preprocessing limits for analysis input.
const (
	DefaultMaxWidth  = 1920
	DefaultMaxHeight = 1080
)

// Fit returns the largest size with the aspect ratio of width x height that
// fits within maxWidth x maxHeight. Sizes already inside the limits are
// returned unchanged. A non-positive limit leaves that axis unbounded.
func Fit(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return width, height
	}

	w, h := width, height
	if maxWidth > 0 && w > maxWidth {
		h = max(1, h*maxWidth/w)
		w = maxWidth
	}
	if maxHeight > 0 && h > maxHeight {
		w = max(1, w*maxHeight/h)
		h = maxHeight
	}
	return w, h
}

// Resize downscales img to fit within maxWidth x maxHeight, preserving the
// aspect ratio. Images already within the limits are returned as-is. The
// result always has its bounds origin at (0, 0).
func Resize(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	w, h := Fit(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	if w == bounds.Dx() && h == bounds.Dy() {
		return img
	}

	resized := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}

// Preprocess prepares an image for analysis using the default limits.
func Preprocess(img image.Image) image.Image {
	return Resize(img, DefaultMaxWidth, DefaultMaxHeight)
}

// EncodeJPEG encodes img as JPEG at the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
