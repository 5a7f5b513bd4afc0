package face

// Detection quality limits.
const (
	MinConfidence     = 0.5
	minFacePercentage = 5.0
	maxFacePercentage = 80.0
)

// Validation is the outcome of checking a detection for analysis.
type Validation struct {
	Valid   bool    `json:"valid"`
	Reason  string  `json:"reason,omitempty"`
	Quality float64 `json:"quality,omitempty"`
}

// Validate checks that a detection is confident enough and that the face
// occupies a sensible share of the image.
func Validate(d *Detection) Validation {
	if d == nil {
		return Validation{Reason: ErrNoFace.Error()}
	}

	if d.Confidence < MinConfidence {
		return Validation{Reason: "Low detection confidence"}
	}

	imageArea := float64(d.ImageWidth) * float64(d.ImageHeight)
	if imageArea <= 0 {
		return Validation{Reason: "Image has no area"}
	}

	percentage := d.Box.Area() / imageArea * 100
	if percentage < minFacePercentage {
		return Validation{Reason: "Face too small in image"}
	}
	if percentage > maxFacePercentage {
		return Validation{Reason: "Face too close to camera"}
	}

	return Validation{Valid: true, Quality: d.Confidence}
}
