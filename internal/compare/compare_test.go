package compare

import (
	"math"
	"strings"
	"testing"

	"github.com/jmylchreest/shade/internal/catalog"
	"github.com/jmylchreest/shade/internal/colour"
	"github.com/jmylchreest/shade/internal/match"
)

func candidate(l float64, undertone colour.Undertone, monk int) Candidate {
	return Candidate{
		ProductName: "Foundation",
		ShadeName:   "Shade",
		LAB:         colour.LAB{L: l, A: 10, B: 20},
		Undertone:   undertone,
		MonkScale:   monk,
	}
}

func TestCompareShadesBands(t *testing.T) {
	base := candidate(60, colour.UndertoneWarm, 5)

	tests := []struct {
		name   string
		l      float64
		prefix string
	}{
		{name: "identical", l: 60, prefix: "These shades are nearly identical!"},
		{name: "just under 2", l: 61.9, prefix: "These shades are nearly identical!"},
		{name: "exactly 2", l: 62, prefix: "These shades are very similar."},
		{name: "4.9", l: 64.9, prefix: "These shades are very similar."},
		{name: "exactly 5", l: 65, prefix: "These shades have a noticeable but subtle difference."},
		{name: "exactly 10", l: 70, prefix: "These shades are moderately different."},
		{name: "exactly 20", l: 80, prefix: "These shades are quite different."},
		{name: "far", l: 95, prefix: "These shades are quite different."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareShades(base, candidate(tt.l, colour.UndertoneWarm, 5))
			if !strings.HasPrefix(got.Recommendation, tt.prefix) {
				t.Errorf("Recommendation = %q, want prefix %q", got.Recommendation, tt.prefix)
			}
			if strings.Contains(got.Recommendation, "Note:") {
				t.Error("undertone note added for matching undertones")
			}
			if math.Abs(got.ColourDifference-math.Abs(tt.l-60)) > 1e-9 {
				t.Errorf("ColourDifference = %v, want %v", got.ColourDifference, math.Abs(tt.l-60))
			}
		})
	}
}

func TestCompareShadesFields(t *testing.T) {
	a := candidate(70, colour.UndertoneCool, 3)
	b := candidate(60, colour.UndertoneWarm, 6)

	got := CompareShades(a, b)

	if got.SameUndertone {
		t.Error("SameUndertone = true, want false")
	}
	if got.MonkDifference != 3 {
		t.Errorf("MonkDifference = %d, want 3", got.MonkDifference)
	}
	if !strings.HasSuffix(got.Recommendation, undertoneNote) {
		t.Errorf("Recommendation = %q, want undertone note", got.Recommendation)
	}
	if got.CIEDE2000 <= 0 || got.CIEDE2000 >= got.ColourDifference {
		t.Errorf("CIEDE2000 = %v, want in (0, %v)", got.CIEDE2000, got.ColourDifference)
	}

	reverse := CompareShades(b, a)
	if reverse.ColourDifference != got.ColourDifference || reverse.MonkDifference != got.MonkDifference {
		t.Error("CompareShades is not symmetric")
	}
}

func TestCompareShadesMatchScores(t *testing.T) {
	tests := []struct {
		name   string
		scoreA float64
		scoreB float64
		want   string
	}{
		{name: "a better", scoreA: 0.9, scoreB: 0.7, want: " Radiant in Honey is a better match for your skin tone."},
		{name: "b better", scoreA: 0.5, scoreB: 0.8, want: " Glow in Sand is a better match for your skin tone."},
		{name: "gap of exactly 10", scoreA: 0.8, scoreB: 0.7, want: ""},
		{name: "rounded gap 11", scoreA: 0.806, scoreB: 0.7, want: " Radiant in Honey is a better match for your skin tone."},
		{name: "unscored", scoreA: 0.9, scoreB: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Candidate{ProductName: "Radiant", ShadeName: "Honey", LAB: colour.LAB{L: 60}, MatchScore: tt.scoreA}
			b := Candidate{ProductName: "Glow", ShadeName: "Sand", LAB: colour.LAB{L: 60}, MatchScore: tt.scoreB}

			got := CompareShades(a, b).Recommendation
			want := "These shades are nearly identical! You could use either one." + tt.want
			if got != want {
				t.Errorf("Recommendation = %q, want %q", got, want)
			}
		})
	}
}

func TestFromShade(t *testing.T) {
	cat, err := catalog.Sample()
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}
	ref, err := cat.Shade("found-1-9")
	if err != nil {
		t.Fatalf("Shade() error: %v", err)
	}

	c, err := FromShade(ref)
	if err != nil {
		t.Fatalf("FromShade() error: %v", err)
	}
	if c.ProductName != "PL Flawless Foundation" || c.ShadeName != "Golden Beige" {
		t.Errorf("FromShade() = %+v", c)
	}
	if c.LAB != (colour.LAB{L: 68, A: 14, B: 28}) {
		t.Errorf("LAB = %v, want catalog value", c.LAB)
	}

	if _, err := FromShade(catalog.ShadeRef{Shade: catalog.Shade{ID: "x"}}); err == nil {
		t.Error("FromShade() without colour expected error")
	}
}

func TestFromMatch(t *testing.T) {
	m := match.Match{ProductName: "P", ShadeName: "S", LAB: colour.LAB{L: 50}, MatchScore: 0.8, MonkScale: 7}
	c := FromMatch(m)
	if c.ProductName != "P" || c.MatchScore != 0.8 || c.MonkScale != 7 || c.LAB.L != 50 {
		t.Errorf("FromMatch() = %+v", c)
	}
}
