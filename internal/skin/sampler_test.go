package skin

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/jmylchreest/shade/internal/colour"
)

// createUniformImage returns an image filled with a single colour.
func createUniformImage(width, height int, c colour.RGB) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill := colour.RGBToColor(c)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}
	return img
}

func faceRegions() []Region {
	return []Region{
		{Name: "leftCheek", X: 10, Y: 40, Width: 30, Height: 30, Weight: 0.4},
		{Name: "rightCheek", X: 60, Y: 40, Width: 30, Height: 30, Weight: 0.4},
		{Name: "forehead", X: 35, Y: 5, Width: 30, Height: 20, Weight: 0.2},
	}
}

func TestNewSampler(t *testing.T) {
	s := NewSampler()

	if s.SamplesPerRegion != 25 {
		t.Errorf("Expected default SamplesPerRegion to be 25, got %d", s.SamplesPerRegion)
	}
	if s.OutlierThreshold != 2.5 {
		t.Errorf("Expected default OutlierThreshold to be 2.5, got %f", s.OutlierThreshold)
	}
	if s.MinQuality != 0.7 {
		t.Errorf("Expected default MinQuality to be 0.7, got %f", s.MinQuality)
	}
}

func TestIsSkin(t *testing.T) {
	tests := []struct {
		name string
		rgb  colour.RGB
		want bool
	}{
		{name: "typical skin", rgb: colour.RGB{R: 200, G: 160, B: 130}, want: true},
		{name: "deep skin", rgb: colour.RGB{R: 120, G: 90, B: 70}, want: true},
		{name: "too dark", rgb: colour.RGB{R: 60, G: 45, B: 35}, want: false},
		{name: "too bright", rgb: colour.RGB{R: 250, G: 245, B: 240}, want: false},
		{name: "green dominant", rgb: colour.RGB{R: 100, G: 150, B: 100}, want: false},
		{name: "red equals green", rgb: colour.RGB{R: 150, G: 150, B: 100}, want: false},
		{name: "red/green ratio too high", rgb: colour.RGB{R: 200, G: 120, B: 110}, want: false},
		{name: "red/blue ratio too high", rgb: colour.RGB{R: 200, G: 160, B: 90}, want: false},
		{name: "red/blue ratio too low", rgb: colour.RGB{R: 200, G: 160, B: 180}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSkin(tt.rgb); got != tt.want {
				t.Errorf("IsSkin(%v) = %v, want %v", tt.rgb, got, tt.want)
			}
		})
	}
}

func TestSampleRegionGrid(t *testing.T) {
	img := createUniformImage(100, 100, colour.RGB{R: 200, G: 160, B: 130})
	s := NewSampler()

	rs := s.SampleRegion(img, Region{Name: "cheek", Width: 50, Height: 50, Weight: 1})
	if rs.Drawn != 25 {
		t.Errorf("Drawn = %d, want 25", rs.Drawn)
	}
	if len(rs.Colours) != 25 {
		t.Errorf("len(Colours) = %d, want 25", len(rs.Colours))
	}

	s.SamplesPerRegion = 30
	rs = s.SampleRegion(img, Region{Name: "cheek", Width: 50, Height: 50, Weight: 1})
	if rs.Drawn != 36 {
		t.Errorf("Drawn with 30 samples per region = %d, want 36", rs.Drawn)
	}
}

func TestSampleRegionOffImage(t *testing.T) {
	img := createUniformImage(100, 100, colour.RGB{R: 200, G: 160, B: 130})
	s := NewSampler()

	// Only the first column of the 5x5 grid (x=95) lands on the image.
	rs := s.SampleRegion(img, Region{X: 90, Y: 0, Width: 50, Height: 50, Weight: 1})
	if rs.Drawn != 25 {
		t.Errorf("Drawn = %d, want 25", rs.Drawn)
	}
	if len(rs.Raw) != 5 {
		t.Errorf("len(Raw) = %d, want 5", len(rs.Raw))
	}
}

func TestSampleRegionHonoursBoundsOrigin(t *testing.T) {
	base := createUniformImage(200, 200, colour.RGB{R: 40, G: 60, B: 200})
	skinColour := colour.RGBToColor(colour.RGB{R: 200, G: 160, B: 130})
	for y := 100; y < 150; y++ {
		for x := 100; x < 150; x++ {
			base.Set(x, y, skinColour)
		}
	}
	sub := base.SubImage(image.Rect(100, 100, 200, 200))

	rs := NewSampler().SampleRegion(sub, Region{Width: 50, Height: 50, Weight: 1})
	if len(rs.Colours) != 25 {
		t.Errorf("len(Colours) = %d, want 25 (region is relative to bounds origin)", len(rs.Colours))
	}
}

func TestSampleUniformSkin(t *testing.T) {
	want := colour.RGB{R: 200, G: 160, B: 130}
	img := createUniformImage(100, 100, want)

	res, err := NewSampler().Sample(img, faceRegions())
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}

	if res.RGB != want {
		t.Errorf("RGB = %v, want %v", res.RGB, want)
	}
	if res.Hex != "#c8a082" {
		t.Errorf("Hex = %s, want #c8a082", res.Hex)
	}
	if res.ValidSamples != 75 || res.TotalSamples != 75 {
		t.Errorf("samples = %d/%d, want 75/75", res.ValidSamples, res.TotalSamples)
	}
	if res.SampleQuality != 1 {
		t.Errorf("SampleQuality = %f, want 1", res.SampleQuality)
	}
	if res.Fallback {
		t.Error("Fallback set for a skin image")
	}
	if res.OutliersRemoved != 0 {
		t.Errorf("OutliersRemoved = %d, want 0", res.OutliersRemoved)
	}
}

func TestSampleFallsBackWhenNoSkin(t *testing.T) {
	blue := colour.RGB{R: 40, G: 60, B: 200}
	img := createUniformImage(100, 100, blue)

	res, err := NewSampler().Sample(img, faceRegions())
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}

	if !res.Fallback {
		t.Error("expected Fallback to be set")
	}
	if res.RGB != blue {
		t.Errorf("RGB = %v, want %v", res.RGB, blue)
	}
	if res.ValidSamples != 0 {
		t.Errorf("ValidSamples = %d, want 0", res.ValidSamples)
	}
	if math.Abs(res.RawQuality-0.5) > 1e-9 {
		t.Errorf("RawQuality = %f, want 0.5", res.RawQuality)
	}
	if res.SampleQuality != 0.7 {
		t.Errorf("SampleQuality = %f, want floor 0.7", res.SampleQuality)
	}
}

func TestSampleIgnoresInvalidQualityFloor(t *testing.T) {
	img := createUniformImage(100, 100, colour.RGB{R: 40, G: 60, B: 200})

	for _, floor := range []float64{math.NaN(), -1, 2} {
		s := NewSampler()
		s.MinQuality = floor
		res, err := s.Sample(img, faceRegions())
		if err != nil {
			t.Fatalf("Sample() error: %v", err)
		}
		if res.SampleQuality != res.RawQuality {
			t.Errorf("MinQuality %v: SampleQuality = %f, want raw %f", floor, res.SampleQuality, res.RawQuality)
		}
	}
}

func TestSampleNoPixels(t *testing.T) {
	img := createUniformImage(100, 100, colour.RGB{R: 200, G: 160, B: 130})
	s := NewSampler()

	tests := []struct {
		name    string
		regions []Region
	}{
		{name: "no regions", regions: nil},
		{name: "zero weight", regions: []Region{{Width: 50, Height: 50, Weight: 0}}},
		{name: "empty region", regions: []Region{{Width: 0, Height: 50, Weight: 1}}},
		{name: "off image", regions: []Region{{X: 500, Y: 500, Width: 50, Height: 50, Weight: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Sample(img, tt.regions)
			if !errors.Is(err, ErrNoSamples) {
				t.Errorf("Sample() error = %v, want ErrNoSamples", err)
			}
		})
	}

	if _, err := s.Sample(nil, faceRegions()); err == nil {
		t.Error("Sample(nil) expected error")
	}
}

func TestWeightedAverage(t *testing.T) {
	samples := []RegionSamples{
		{Region: Region{Weight: 0.4}, Colours: []colour.RGB{{R: 200, G: 160, B: 130}}},
		{Region: Region{Weight: 0.2}, Colours: []colour.RGB{{R: 140, G: 100, B: 80}}},
		{Region: Region{Weight: 0.4}},
	}

	got, ok := WeightedAverage(samples)
	if !ok {
		t.Fatal("WeightedAverage() reported no samples")
	}

	want := colour.RGB{R: 180, G: 140, B: 113}
	if got != want {
		t.Errorf("WeightedAverage() = %v, want %v", got, want)
	}

	if _, ok := WeightedAverage([]RegionSamples{{Region: Region{Weight: 1}}}); ok {
		t.Error("WeightedAverage() of empty regions reported samples")
	}
}

func TestRemoveOutliers(t *testing.T) {
	clean := make([]colour.RGB, 0, 20)
	for i := 0; i < 20; i++ {
		clean = append(clean, colour.RGB{
			R: uint8(199 + i%3),
			G: uint8(160 + i%2),
			B: uint8(129 + (i/2)%3),
		})
	}

	colours := append([]colour.RGB{}, clean...)
	for i := 0; i < 3; i++ {
		colours = append(colours, colour.RGB{R: 20, G: 20, B: 20})
	}

	samples := []RegionSamples{{Region: Region{Name: "cheek", Weight: 1}, Colours: colours, Drawn: len(colours)}}

	avg, _ := WeightedAverage(samples)
	got, removed := RemoveOutliers(samples, avg, 2.5)

	if removed != 3 {
		t.Errorf("RemoveOutliers() removed %d samples, want 3", removed)
	}

	cleanLab := colour.RGBToLab(colour.AverageRGB(clean))
	if d := colour.DeltaE(colour.RGBToLab(got), cleanLab); d > 1 {
		t.Errorf("RemoveOutliers() = %v, deltaE %.2f from clean average, want <= 1", got, d)
	}
}

func TestRemoveOutliersKeepsAverageWhenNothingSampled(t *testing.T) {
	avg := colour.RGB{R: 1, G: 2, B: 3}
	got, removed := RemoveOutliers(nil, avg, 2.5)
	if got != avg || removed != 0 {
		t.Errorf("RemoveOutliers(nil) = %v, %d, want %v, 0", got, removed, avg)
	}
}

func TestConsistency(t *testing.T) {
	if got := Consistency(nil); got != 1 {
		t.Errorf("Consistency(nil) = %f, want 1", got)
	}
	if got := Consistency([]colour.RGB{{R: 10}}); got != 1 {
		t.Errorf("Consistency(single) = %f, want 1", got)
	}

	same := []colour.RGB{{R: 200, G: 160, B: 130}, {R: 200, G: 160, B: 130}}
	if got := Consistency(same); got != 1 {
		t.Errorf("Consistency(identical) = %f, want 1", got)
	}

	wild := []colour.RGB{{R: 255}, {G: 255}, {B: 255}, {R: 255, G: 255, B: 255}}
	if got := Consistency(wild); got != 0.5 {
		t.Errorf("Consistency(wild) = %f, want clamp 0.5", got)
	}
}

func TestQuality(t *testing.T) {
	samples := []RegionSamples{
		{Colours: []colour.RGB{{R: 200, G: 160, B: 130}}, Drawn: 4},
	}

	// One of four accepted, single colour fully consistent.
	want := 0.25*0.5 + 1*0.5
	if got := Quality(samples); math.Abs(got-want) > 1e-9 {
		t.Errorf("Quality() = %f, want %f", got, want)
	}

	if got := Quality(nil); got != 0.5 {
		t.Errorf("Quality(nil) = %f, want 0.5", got)
	}
}

func TestSampleIsDeterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: uint8(180 + x%20), G: uint8(140 + y%15), B: 115, A: 255})
		}
	}

	s := NewSampler()
	first, err := s.Sample(img, faceRegions())
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}
	second, err := s.Sample(img, faceRegions())
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}

	if *first != *second {
		t.Errorf("Sample() not deterministic: %+v vs %+v", first, second)
	}
}
