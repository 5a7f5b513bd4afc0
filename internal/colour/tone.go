package colour

import "fmt"

// Undertone is the perceived hue cast of a skin tone or product shade.
type Undertone string

const (
	UndertoneCool    Undertone = "cool"
	UndertoneWarm    Undertone = "warm"
	UndertoneNeutral Undertone = "neutral"
)

// String returns the undertone name.
func (u Undertone) String() string {
	return string(u)
}

// ParseUndertone converts a string to an Undertone.
func ParseUndertone(s string) (Undertone, error) {
	switch Undertone(s) {
	case UndertoneCool, UndertoneWarm, UndertoneNeutral:
		return Undertone(s), nil
	default:
		return "", fmt.Errorf("invalid undertone: %q (valid: cool, warm, neutral)", s)
	}
}

// Undertone classification thresholds on the a* and b* axes.
// These are fixed heuristics, not fitted values.
const (
	warmMinB = 12.0
	warmMaxA = 6.0
	coolMaxB = 8.0
	coolMinA = 4.0
)

// ClassifyUndertone maps a LAB colour to an undertone. Strong yellow (b*)
// with little red (a*) reads warm; little yellow with some red reads cool.
func ClassifyUndertone(lab LAB) Undertone {
	if lab.B > warmMinB && lab.A < warmMaxA {
		return UndertoneWarm
	}
	if lab.B < coolMaxB && lab.A > coolMinA {
		return UndertoneCool
	}
	return UndertoneNeutral
}

// monkBreakpoints holds the minimum L* for Monk scale values 1 through 9.
// Anything darker than the last breakpoint is 10. Product catalog data is
// generated against these exact values.
var monkBreakpoints = [...]float64{90, 80, 70, 65, 60, 55, 50, 45, 35}

// MonkScale maps lightness to the 10-point Monk Skin Tone scale,
// 1 being the lightest.
func MonkScale(lab LAB) int {
	for i, minL := range monkBreakpoints {
		if lab.L >= minL {
			return i + 1
		}
	}
	return len(monkBreakpoints) + 1
}

// Fitzpatrick maps a Monk scale value to the 6-point Fitzpatrick scale.
func Fitzpatrick(monk int) int {
	switch {
	case monk <= 2:
		return 1
	case monk <= 4:
		return 2
	case monk <= 5:
		return 3
	case monk <= 7:
		return 4
	case monk <= 8:
		return 5
	default:
		return 6
	}
}

// Tone bundles every representation of a single classified colour.
type Tone struct {
	RGB              RGB       `json:"rgb"`
	LAB              LAB       `json:"lab"`
	Hex              string    `json:"hex"`
	Undertone        Undertone `json:"undertone"`
	MonkScale        int       `json:"monkScale"`
	FitzpatrickScale int       `json:"fitzpatrickScale"`
}

// Classify derives a Tone from an RGB colour.
func Classify(rgb RGB) Tone {
	return classify(rgb, RGBToLab(rgb))
}

// ClassifyLab derives a Tone from a LAB colour. The RGB and hex fields are
// the clamped sRGB rendering of lab.
func ClassifyLab(lab LAB) Tone {
	return classify(LabToRGB(lab), lab)
}

func classify(rgb RGB, lab LAB) Tone {
	monk := MonkScale(lab)
	return Tone{
		RGB:              rgb,
		LAB:              lab,
		Hex:              rgb.Hex(),
		Undertone:        ClassifyUndertone(lab),
		MonkScale:        monk,
		FitzpatrickScale: Fitzpatrick(monk),
	}
}
