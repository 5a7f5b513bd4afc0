package colour

import "math"

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(rgb RGB) float64 {
	r := gammaCorrect(float64(rgb.R) / 255.0)
	g := gammaCorrect(float64(rgb.G) / 255.0)
	b := gammaCorrect(float64(rgb.B) / 255.0)

	return 0.2126*r + 0.7152*g + 0.0722*b
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// AverageRGB returns the channel-wise mean of colours, rounded and clamped.
// An empty slice yields black.
func AverageRGB(colours []RGB) RGB {
	if len(colours) == 0 {
		return RGB{}
	}

	var r, g, b float64
	for _, c := range colours {
		r += float64(c.R)
		g += float64(c.G)
		b += float64(c.B)
	}

	n := float64(len(colours))
	return ClampRGB(r/n, g/n, b/n)
}
