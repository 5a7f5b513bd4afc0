// Package skin extracts a representative skin colour from regions of a face
// image.
//
// Each region is sampled on a regular grid. Pixels that fail a coarse skin
// heuristic are discarded, the survivors are averaged per region and then
// across regions by weight, and a final pass drops samples that sit too far
// from that average in LAB space.
package skin

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/jmylchreest/shade/internal/colour"
)

// ErrNoSamples is returned when no pixel could be read from any region.
var ErrNoSamples = errors.New("no pixels could be sampled from the supplied regions")

// Region is a named rectangle of a face image to sample. Coordinates are
// relative to the image bounds origin. Weights need not sum to 1; they are
// normalised when regions are combined.
type Region struct {
	Name   string  `json:"name"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Weight float64 `json:"weight"`
}

// Rect returns the region as an image rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// RegionSamples holds the pixels read from a single region.
type RegionSamples struct {
	Region Region

	// Colours are the samples that passed the skin heuristic.
	Colours []colour.RGB

	// Raw holds every in-bounds sample, skin or not.
	Raw []colour.RGB

	// Drawn is the number of grid points visited.
	Drawn int
}

// Result is the representative skin colour of one analysis.
type Result struct {
	colour.Tone

	// SampleQuality is RawQuality raised to the sampler's MinQuality floor.
	SampleQuality float64 `json:"sampleQuality"`
	RawQuality    float64 `json:"rawQuality"`

	ValidSamples    int `json:"validSamples"`
	TotalSamples    int `json:"totalSamples"`
	OutliersRemoved int `json:"outliersRemoved"`

	// Fallback is set when no sample passed the skin heuristic and the
	// colour was averaged from every sampled pixel instead.
	Fallback bool `json:"fallback,omitempty"`

	CorrectionApplied bool `json:"correctionApplied"`
}

// Sampler extracts skin colour from image regions.
type Sampler struct {
	// SamplesPerRegion is the target number of grid points per region.
	// The grid is ceil(sqrt(n)) points on each side. Default: 25.
	SamplesPerRegion int

	// OutlierThreshold is the number of standard deviations above the mean
	// distance beyond which a sample is discarded. Default: 2.5.
	OutlierThreshold float64

	// MinQuality is the floor applied to the reported sample quality.
	// Default: 0.7.
	MinQuality float64
}

// NewSampler creates a new skin sampler with default settings.
func NewSampler() *Sampler {
	return &Sampler{
		SamplesPerRegion: 25,
		OutlierThreshold: 2.5,
		MinQuality:       0.7,
	}
}

// Sample reads every region of img and combines them into a single result.
// Regions with a non-positive weight or size are ignored.
func (s *Sampler) Sample(img image.Image, regions []Region) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("sample skin: nil image")
	}

	samples := make([]RegionSamples, 0, len(regions))
	for _, r := range regions {
		if !usable(r) {
			continue
		}
		samples = append(samples, s.SampleRegion(img, r))
	}

	return s.Aggregate(samples)
}

// SampleRegion reads a grid of pixels from one region and keeps those that
// look like skin.
func (s *Sampler) SampleRegion(img image.Image, r Region) RegionSamples {
	rs := RegionSamples{Region: r}
	if r.Width <= 0 || r.Height <= 0 {
		return rs
	}

	bounds := img.Bounds()
	perRow := s.gridSize()
	stepX := float64(r.Width) / float64(perRow)
	stepY := float64(r.Height) / float64(perRow)

	for i := 0; i < perRow; i++ {
		for j := 0; j < perRow; j++ {
			x := bounds.Min.X + int(math.Round(float64(r.X)+float64(i)*stepX+stepX/2))
			y := bounds.Min.Y + int(math.Round(float64(r.Y)+float64(j)*stepY+stepY/2))
			rs.Drawn++

			// Points off the image read as transparent black and can never be skin.
			if !image.Pt(x, y).In(bounds) {
				continue
			}

			px := colour.ToRGB(img.At(x, y))
			rs.Raw = append(rs.Raw, px)
			if IsSkin(px) {
				rs.Colours = append(rs.Colours, px)
			}
		}
	}

	return rs
}

// Aggregate combines per-region samples into a Result: weighted average,
// outlier rejection, classification and quality scoring.
func (s *Sampler) Aggregate(samples []RegionSamples) (*Result, error) {
	var valid, drawn, raw int
	for _, rs := range samples {
		valid += len(rs.Colours)
		drawn += rs.Drawn
		raw += len(rs.Raw)
	}

	res := &Result{ValidSamples: valid, TotalSamples: drawn}

	var rgb colour.RGB
	switch {
	case valid > 0:
		avg, _ := WeightedAverage(samples)
		var removed int
		rgb, removed = RemoveOutliers(samples, avg, s.outlierThreshold())
		res.OutliersRemoved = removed
	case raw > 0:
		all := make([]colour.RGB, 0, raw)
		for _, rs := range samples {
			all = append(all, rs.Raw...)
		}
		rgb = colour.AverageRGB(all)
		res.Fallback = true
	default:
		return nil, ErrNoSamples
	}

	res.Tone = colour.Classify(rgb)
	res.RawQuality = Quality(samples)
	floor := s.MinQuality
	if !(floor >= 0 && floor <= 1) {
		floor = 0
	}
	res.SampleQuality = math.Min(1, math.Max(floor, res.RawQuality))

	return res, nil
}

// IsSkin applies a coarse RGB heuristic for skin pixels. Very dark and very
// bright pixels are rejected, red must dominate, and the red/green and
// red/blue ratios must fall inside typical skin ranges.
func IsSkin(c colour.RGB) bool {
	brightness := c.Brightness()
	if brightness < 50 || brightness > 240 {
		return false
	}

	if c.R <= c.G || c.R <= c.B {
		return false
	}

	rg := float64(c.R) / float64(c.G)
	rb := float64(c.R) / float64(c.B)
	if rg < 1.0 || rg > 1.5 {
		return false
	}
	if rb < 1.2 || rb > 2.0 {
		return false
	}

	return true
}

// WeightedAverage averages each region's accepted samples, then combines the
// region averages by weight. Regions without samples do not contribute.
// The boolean is false when no region had samples.
func WeightedAverage(samples []RegionSamples) (colour.RGB, bool) {
	var r, g, b, total float64

	for _, rs := range samples {
		if len(rs.Colours) == 0 || rs.Region.Weight <= 0 {
			continue
		}
		avg := colour.AverageRGB(rs.Colours)
		w := rs.Region.Weight
		r += float64(avg.R) * w
		g += float64(avg.G) * w
		b += float64(avg.B) * w
		total += w
	}

	if total == 0 {
		return colour.RGB{}, false
	}
	return colour.ClampRGB(r/total, g/total, b/total), true
}

// RemoveOutliers drops samples whose LAB distance from avg exceeds
// mean + k standard deviations and returns the weighted average of the rest,
// along with the number removed. Each sample carries its region's weight
// divided by the region's sample count. If every sample is rejected avg is
// returned unchanged.
func RemoveOutliers(samples []RegionSamples, avg colour.RGB, k float64) (colour.RGB, int) {
	type weighted struct {
		rgb      colour.RGB
		weight   float64
		distance float64
	}

	avgLab := colour.RGBToLab(avg)

	var all []weighted
	for _, rs := range samples {
		if len(rs.Colours) == 0 || rs.Region.Weight <= 0 {
			continue
		}
		w := rs.Region.Weight / float64(len(rs.Colours))
		for _, c := range rs.Colours {
			all = append(all, weighted{
				rgb:      c,
				weight:   w,
				distance: colour.DeltaE(avgLab, colour.RGBToLab(c)),
			})
		}
	}

	if len(all) == 0 {
		return avg, 0
	}

	var sum float64
	for _, s := range all {
		sum += s.distance
	}
	mean := sum / float64(len(all))

	var variance float64
	for _, s := range all {
		d := s.distance - mean
		variance += d * d
	}
	stdDev := math.Sqrt(variance / float64(len(all)))
	threshold := mean + k*stdDev

	var r, g, b, total float64
	kept := 0
	for _, s := range all {
		if s.distance > threshold {
			continue
		}
		r += float64(s.rgb.R) * s.weight
		g += float64(s.rgb.G) * s.weight
		b += float64(s.rgb.B) * s.weight
		total += s.weight
		kept++
	}

	if kept == 0 || total == 0 {
		return avg, 0
	}
	return colour.ClampRGB(r/total, g/total, b/total), len(all) - kept
}

// Quality scores a sample set in [0, 1]: half the ratio of accepted to drawn
// samples, half the colour consistency of the accepted samples.
func Quality(samples []RegionSamples) float64 {
	var drawn int
	var all []colour.RGB
	for _, rs := range samples {
		drawn += rs.Drawn
		all = append(all, rs.Colours...)
	}

	ratio := 0.0
	if drawn > 0 {
		ratio = float64(len(all)) / float64(drawn)
	}

	return ratio*0.5 + Consistency(all)*0.5
}

// Consistency maps the mean LAB distance of colours from their average onto
// exp(-d/10), clamped to [0.5, 1]. Fewer than two colours are fully
// consistent.
func Consistency(colours []colour.RGB) float64 {
	if len(colours) < 2 {
		return 1.0
	}

	avgLab := colour.RGBToLab(colour.AverageRGB(colours))

	var total float64
	for _, c := range colours {
		total += colour.DeltaE(avgLab, colour.RGBToLab(c))
	}
	avgDistance := total / float64(len(colours))

	return math.Max(0.5, math.Min(1.0, math.Exp(-avgDistance/10)))
}

func (s *Sampler) gridSize() int {
	n := s.SamplesPerRegion
	if n <= 0 {
		n = 25
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

func (s *Sampler) outlierThreshold() float64 {
	if s.OutlierThreshold <= 0 || math.IsNaN(s.OutlierThreshold) {
		return 2.5
	}
	return s.OutlierThreshold
}

func usable(r Region) bool {
	return r.Weight > 0 && !math.IsNaN(r.Weight) && r.Width > 0 && r.Height > 0
}
