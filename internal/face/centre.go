package face

import (
	"context"
	"image"

	"github.com/jmylchreest/shade/internal/skin"
)

// CentreDetector assumes a single, centred, front-facing face, as in a
// guided selfie capture. It never fails to find a face and is fully
// deterministic, which makes it the default for offline use and tests.
type CentreDetector struct {
	// Confidence is reported for every detection. Default: 0.9.
	Confidence float64
}

// NewCentreDetector creates a centre detector with default confidence.
func NewCentreDetector() *CentreDetector {
	return &CentreDetector{Confidence: 0.9}
}

// Detect implements Detector.
func (d *CentreDetector) Detect(ctx context.Context, img image.Image) (*Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, ErrNoFace
	}

	fw, fh := float64(w), float64(h)
	cx, cy := fw/2, fh/2

	confidence := d.Confidence
	if confidence <= 0 {
		confidence = 0.9
	}

	return &Detection{
		Box: Box{
			X:      fw * 0.3,
			Y:      fh * 0.2,
			Width:  fw * 0.4,
			Height: fh * 0.5,
		},
		Confidence: confidence,
		Regions: []skin.Region{
			clampRegion("leftCheek", cx-100, cy-20, 50, 50, cheekWeight, w, h),
			clampRegion("rightCheek", cx+50, cy-20, 50, 50, cheekWeight, w, h),
			clampRegion("forehead", cx-25, cy-100, 50, 30, foreheadWeight, w, h),
		},
		ImageWidth:  w,
		ImageHeight: h,
		FaceCount:   1,
		Detector:    "centre",
	}, nil
}
