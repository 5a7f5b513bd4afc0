// Package face defines the face detection boundary used by skin analysis.
//
// A Detector locates a face in an image and reports its bounding box,
// optional 68-point landmarks and the skin regions to sample. Detection
// models are external collaborators; this package ships a deterministic
// centre-of-frame detector and a Gemini vision detector.
package face

import (
	"context"
	"errors"
	"image"
	"math"

	"github.com/jmylchreest/shade/internal/skin"
)

// ErrNoFace is returned by a Detector when no face is found.
var ErrNoFace = errors.New("no face detected")

// Point is a 2D landmark position in image pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is a face bounding box in image pixels.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the box area.
func (b Box) Area() float64 {
	return b.Width * b.Height
}

// Rect returns the box as an integer rectangle.
func (b Box) Rect() image.Rectangle {
	x0 := int(math.Floor(b.X))
	y0 := int(math.Floor(b.Y))
	return image.Rect(x0, y0, x0+int(math.Round(b.Width)), y0+int(math.Round(b.Height)))
}

// Face is a single raw detection.
type Face struct {
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
	Landmarks  []Point `json:"landmarks,omitempty"`
}

// Detection is the processed result for the face chosen for analysis.
type Detection struct {
	Box         Box           `json:"faceBox"`
	Confidence  float64       `json:"confidence"`
	Landmarks   []Point       `json:"landmarks,omitempty"`
	Regions     []skin.Region `json:"skinRegions"`
	ImageWidth  int           `json:"imageWidth"`
	ImageHeight int           `json:"imageHeight"`
	FaceCount   int           `json:"faceCount"`
	Detector    string        `json:"detector"`
}

// Detector finds a face in an image. Implementations return ErrNoFace
// when the image contains no face.
type Detector interface {
	Detect(ctx context.Context, img image.Image) (*Detection, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, img image.Image) (*Detection, error)

// Detect calls f(ctx, img).
func (f DetectorFunc) Detect(ctx context.Context, img image.Image) (*Detection, error) {
	return f(ctx, img)
}

// Largest returns the face with the biggest bounding box. Ties keep the
// earlier face.
func Largest(faces []Face) (Face, bool) {
	if len(faces) == 0 {
		return Face{}, false
	}

	best := faces[0]
	for _, f := range faces[1:] {
		if f.Box.Area() > best.Box.Area() {
			best = f
		}
	}
	return best, true
}

// NewDetection builds a Detection for the largest of faces within an image
// of the given size. The box is clipped to the image and skin regions are
// derived from the landmarks, or from the box when fewer than 68 landmarks
// are present.
func NewDetection(faces []Face, width, height int, detector string) (*Detection, error) {
	f, ok := Largest(faces)
	if !ok {
		return nil, ErrNoFace
	}

	box := ClipBox(f.Box, width, height)

	var regions []skin.Region
	if len(f.Landmarks) >= LandmarkCount {
		regions = LandmarkRegions(f.Landmarks, width, height)
	} else {
		regions = BoxRegions(box, width, height)
	}

	return &Detection{
		Box:         box,
		Confidence:  f.Confidence,
		Landmarks:   f.Landmarks,
		Regions:     regions,
		ImageWidth:  width,
		ImageHeight: height,
		FaceCount:   len(faces),
		Detector:    detector,
	}, nil
}

// ClipBox clamps a face box to an image of the given size.
func ClipBox(b Box, width, height int) Box {
	x0, x1 := clampSpan(b.X, b.X+b.Width, float64(width))
	y0, y1 := clampSpan(b.Y, b.Y+b.Height, float64(height))
	return Box{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// clampSpan clamps [lo, hi) to [0, limit]. The result is never inverted.
func clampSpan(lo, hi, limit float64) (float64, float64) {
	lo = math.Min(math.Max(lo, 0), limit)
	hi = math.Min(math.Max(hi, lo), limit)
	return lo, hi
}
