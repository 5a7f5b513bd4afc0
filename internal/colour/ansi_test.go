package colour

import (
	"strings"
	"testing"
)

func withColourOutput(t *testing.T, enabled bool) {
	t.Helper()
	prev := DisableColourOutput
	DisableColourOutput = !enabled
	t.Cleanup(func() { DisableColourOutput = prev })
}

func TestColourPreview(t *testing.T) {
	got := ColourPreview(RGB{R: 200, G: 160, B: 130}, 3)
	want := "\033[48;2;200;160;130m   \033[0m"
	if got != want {
		t.Errorf("ColourPreview() = %q, want %q", got, want)
	}

	if got := ColourPreview(RGB{}, 0); !strings.Contains(got, strings.Repeat(" ", defaultWidth)) {
		t.Errorf("ColourPreview() with width 0 = %q, want default width", got)
	}
}

func TestColourPreviewWithText(t *testing.T) {
	tests := []struct {
		name     string
		colour   RGB
		text     string
		width    int
		wantFg   string
		wantText string
	}{
		{"light swatch uses black text", RGB{R: 255, G: 255, B: 255}, "4", 4, "\033[38;2;0;0;0m", " 4  "},
		{"dark swatch uses white text", RGB{R: 20, G: 10, B: 5}, "10", 4, "\033[38;2;255;255;255m", " 10 "},
		{"long text is truncated", RGB{}, "abcdef", 3, "\033[38;2;255;255;255m", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColourPreviewWithText(tt.colour, tt.text, tt.width)
			if !strings.Contains(got, tt.wantFg) {
				t.Errorf("ColourPreviewWithText() = %q, want foreground %q", got, tt.wantFg)
			}
			if !strings.Contains(got, tt.wantFg+tt.wantText+ansiReset) {
				t.Errorf("ColourPreviewWithText() = %q, want text %q", got, tt.wantText)
			}
		})
	}
}

func TestFormatColourWithPreview(t *testing.T) {
	rgb := RGB{R: 200, G: 160, B: 130}

	withColourOutput(t, false)
	if got := FormatColourWithPreview(rgb, 2); got != "#c8a082" {
		t.Errorf("FormatColourWithPreview() disabled = %q, want %q", got, "#c8a082")
	}

	withColourOutput(t, true)
	got := FormatColourWithPreview(rgb, 2)
	if !strings.HasPrefix(got, ansiBgPrefix) || !strings.HasSuffix(got, " #c8a082") {
		t.Errorf("FormatColourWithPreview() enabled = %q", got)
	}
}

func TestMonkBadge(t *testing.T) {
	tone := Classify(RGB{R: 200, G: 160, B: 130})

	withColourOutput(t, false)
	if got := MonkBadge(tone); got != "" {
		t.Errorf("MonkBadge() disabled = %q, want empty", got)
	}

	withColourOutput(t, true)
	got := MonkBadge(tone)
	if !strings.HasPrefix(got, " "+ansiBgPrefix+"200;160;130m") {
		t.Errorf("MonkBadge() = %q, want swatch of the tone", got)
	}
	if !strings.Contains(got, " 4  ") {
		t.Errorf("MonkBadge() = %q, want Monk scale 4", got)
	}

	if got := MonkBadge(Tone{}); got != "" {
		t.Errorf("MonkBadge() of unclassified tone = %q, want empty", got)
	}
}

func TestLuminance(t *testing.T) {
	if got := Luminance(RGB{}); got != 0 {
		t.Errorf("Luminance(black) = %v, want 0", got)
	}
	if got := Luminance(RGB{R: 255, G: 255, B: 255}); got < 0.999 || got > 1.001 {
		t.Errorf("Luminance(white) = %v, want 1", got)
	}
}
