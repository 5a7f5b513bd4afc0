package colour

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// D65 reference white, scaled to Y = 100.
const (
	whiteX = 95.047
	whiteY = 100.000
	whiteZ = 108.883
)

// labEpsilon is the CIE threshold between the cube-root and linear
// segments of f(t). labKappa and labOffset describe the linear segment.
const (
	labEpsilon = 0.008856
	labKappa   = 7.787
	labOffset  = 16.0 / 116.0

	// labEpsilonInverse is f(labEpsilon), the threshold used on the way back.
	labEpsilonInverse = 0.206893
)

// LAB is a colour in CIE L*a*b* space under a D65 illuminant.
// L is in [0, 100]; a and b are roughly in [-128, 127].
type LAB struct {
	L float64 `json:"L" yaml:"L"`
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
}

// String returns the LAB colour as "lab(L, a, b)".
func (lab LAB) String() string {
	return fmt.Sprintf("lab(%.2f, %.2f, %.2f)", lab.L, lab.A, lab.B)
}

// IsValid reports whether every component is a finite number.
func (lab LAB) IsValid() bool {
	for _, v := range []float64{lab.L, lab.A, lab.B} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// RGBToLab converts an sRGB colour to CIELAB.
// The conversion linearises each channel, projects onto XYZ with the sRGB
// D65 matrix and applies the CIE f(t) with the 0.008856 threshold.
func RGBToLab(rgb RGB) LAB {
	r := linearise(float64(rgb.R) / 255)
	g := linearise(float64(rgb.G) / 255)
	b := linearise(float64(rgb.B) / 255)

	x := (r*0.4124564 + g*0.3575761 + b*0.1804375) * 100
	y := (r*0.2126729 + g*0.7151522 + b*0.0721750) * 100
	z := (r*0.0193339 + g*0.1191920 + b*0.9503041) * 100

	fx := labF(x / whiteX)
	fy := labF(y / whiteY)
	fz := labF(z / whiteZ)

	return LAB{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// LabToRGB converts a CIELAB colour back to sRGB. Channels are rounded
// to the nearest integer and clamped to [0, 255]; non-finite input
// components produce 0 for the affected channels.
func LabToRGB(lab LAB) RGB {
	fy := (lab.L + 16) / 116
	fx := lab.A/500 + fy
	fz := fy - lab.B/200

	x := labFInverse(fx) * whiteX
	y := labFInverse(fy) * whiteY
	z := labFInverse(fz) * whiteZ

	r := (x*3.2404542 - y*1.5371385 - z*0.4985314) / 100
	g := (-x*0.9692660 + y*1.8760108 + z*0.0415560) / 100
	b := (x*0.0556434 - y*0.2040259 + z*1.0572252) / 100

	return ClampRGB(compand(r)*255, compand(g)*255, compand(b)*255)
}

// HexToLab parses a hex colour and converts it to CIELAB.
func HexToLab(hex string) (LAB, error) {
	rgb, err := ParseHex(hex)
	if err != nil {
		return LAB{}, err
	}
	return RGBToLab(rgb), nil
}

// DeltaE returns the CIE76 colour difference: the Euclidean distance
// between two colours in LAB space.
func DeltaE(lab1, lab2 LAB) float64 {
	dL := lab1.L - lab2.L
	da := lab1.A - lab2.A
	db := lab1.B - lab2.B
	return math.Sqrt(dL*dL + da*da + db*db)
}

// DeltaE2000 returns the CIEDE2000 difference on the same 0-100 scale as
// DeltaE. Matching thresholds are calibrated against DeltaE; this value is
// informational.
func DeltaE2000(lab1, lab2 LAB) float64 {
	c1 := colorful.Lab(lab1.L/100, lab1.A/100, lab1.B/100)
	c2 := colorful.Lab(lab2.L/100, lab2.A/100, lab2.B/100)
	return c1.DistanceCIEDE2000(c2) * 100
}

// linearise removes the sRGB transfer curve from a channel in [0, 1].
func linearise(v float64) float64 {
	if v > 0.04045 {
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}

// compand applies the sRGB transfer curve to a linear channel.
func compand(v float64) float64 {
	if v > 0.0031308 {
		return 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return 12.92 * v
}

func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return labKappa*t + labOffset
}

func labFInverse(f float64) float64 {
	if f > labEpsilonInverse {
		return f * f * f
	}
	return (f - labOffset) / labKappa
}
