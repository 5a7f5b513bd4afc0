package colour

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 8
)

// DisableColourOutput can be used to disable colour output.
var DisableColourOutput = false

// ColourPreview returns an ANSI-coloured preview string for a colour.
// Width specifies how many characters wide the colour block should be.
func ColourPreview(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	return bgColour + strings.Repeat(" ", width) + ansiReset
}

// ColourPreviewWithText returns a colour preview with text centred on it.
// The text is black or white, whichever contrasts with the swatch.
func ColourPreviewWithText(c RGB, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	var fg uint8 = 255
	if Luminance(c) > 0.5 {
		fg = 0
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	fgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiFgPrefix, fg, fg, fg, ansiSuffix)

	displayText := text
	if len(text) > width {
		displayText = text[:width]
	} else if len(text) < width {
		padding := (width - len(text)) / 2
		displayText = strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
	}

	return bgColour + fgColour + displayText + ansiReset
}

// FormatColourWithPreview formats a colour with its preview and hex code.
// The swatch is dropped when colour output is disabled.
func FormatColourWithPreview(rgb RGB, width int) string {
	if DisableColourOutput {
		return rgb.Hex()
	}
	return fmt.Sprintf("%s %s", ColourPreview(rgb, width), rgb.Hex())
}

// MonkBadge renders the tone's Monk scale value on a swatch of the tone,
// preceded by a space. It is empty when colour output is disabled.
func MonkBadge(t Tone) string {
	if DisableColourOutput || t.MonkScale < 1 {
		return ""
	}
	return " " + ColourPreviewWithText(t.RGB, strconv.Itoa(t.MonkScale), 4)
}

// SupportsANSIColours reports whether f is a terminal that should receive
// ANSI colour codes. NO_COLOR and TERM=dumb disable colour.
func SupportsANSIColours(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}
