// Package colour provides the colour-space maths behind skin tone analysis:
// RGB and CIELAB conversion, hex formatting, colour distance and the
// undertone and skin scale classifiers.
package colour

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// RGB represents a colour in 8-bit sRGB.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a lowercase hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Brightness returns the unweighted mean of the three channels (0-255).
func (rgb RGB) Brightness() float64 {
	return (float64(rgb.R) + float64(rgb.G) + float64(rgb.B)) / 3
}

// RGBToHex formats an RGB colour as "#rrggbb".
func RGBToHex(rgb RGB) string {
	return rgb.Hex()
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// RGBToColor converts an RGB value to a color.Color (RGBA).
func RGBToColor(rgb RGB) color.Color {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// ClampRGB builds an RGB from floating point channels, rounding to the
// nearest integer and clamping to [0, 255]. NaN channels become 0.
func ClampRGB(r, g, b float64) RGB {
	return RGB{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

func clampChannel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// ParseHex parses "#rgb", "#rrggbb" or the same forms without the hash.
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid hex colour %q: expected 3 or 6 hex digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return RGB{
		R: uint8(v >> 16), // #nosec G115 - masked by shift on a 24-bit value
		G: uint8(v >> 8),  // #nosec G115 - truncation intended
		B: uint8(v),       // #nosec G115 - truncation intended
	}, nil
}
