package skin

import (
	"image"
	"math"

	"github.com/jmylchreest/shade/internal/colour"
)

// LightingIssue describes a lighting problem with the face area.
type LightingIssue string

const (
	LightingOK        LightingIssue = ""
	LightingTooDark   LightingIssue = "too_dark"
	LightingTooBright LightingIssue = "too_bright"
)

// Brightness limits on the 0-255 channel mean.
const (
	minBrightness = 50.0
	maxBrightness = 230.0
)

// Lighting is the result of a lighting check over the face area.
type Lighting struct {
	Brightness float64       `json:"brightness"`
	Quality    float64       `json:"quality"`
	Issue      LightingIssue `json:"issue,omitempty"`
}

// AssessLighting measures the mean brightness of img inside area. An empty
// intersection with the image falls back to the whole image.
func AssessLighting(img image.Image, area image.Rectangle) Lighting {
	bounds := img.Bounds()
	rect := area.Add(bounds.Min).Intersect(bounds)
	if rect.Empty() {
		rect = bounds
	}

	var total float64
	var count int
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			total += colour.ToRGB(img.At(x, y)).Brightness()
			count++
		}
	}

	if count == 0 {
		return Lighting{Quality: 0.5, Issue: LightingTooDark}
	}

	brightness := total / float64(count)
	switch {
	case brightness < minBrightness:
		return Lighting{Brightness: brightness, Quality: 0.5, Issue: LightingTooDark}
	case brightness > maxBrightness:
		return Lighting{Brightness: brightness, Quality: 0.5, Issue: LightingTooBright}
	default:
		return Lighting{Brightness: brightness, Quality: 0.9}
	}
}

// Correct nudges the lightness of a result to compensate for poor lighting
// and re-derives every dependent field. A result taken in good lighting is
// returned as a copy with CorrectionApplied unset.
func Correct(res Result, lighting Lighting) Result {
	lab := res.LAB

	switch lighting.Issue {
	case LightingTooDark:
		lab.L = math.Min(100, lab.L*1.1)
	case LightingTooBright:
		lab.L = math.Max(0, lab.L*0.9)
	default:
		res.CorrectionApplied = false
		return res
	}

	res.Tone = colour.ClassifyLab(lab)
	res.CorrectionApplied = true
	return res
}
