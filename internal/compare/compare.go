// Package compare compares two shades side by side and describes the
// difference in plain language.
package compare

import (
	"fmt"
	"math"

	"github.com/jmylchreest/shade/internal/catalog"
	"github.com/jmylchreest/shade/internal/colour"
	"github.com/jmylchreest/shade/internal/match"
)

// Candidate is a shade resolved for comparison.
type Candidate struct {
	ProductID   string           `json:"productId,omitempty"`
	ProductName string           `json:"productName"`
	ShadeName   string           `json:"shadeName"`
	ShadeID     string           `json:"shadeId,omitempty"`
	HexColor    string           `json:"hexColor"`
	LAB         colour.LAB       `json:"lab"`
	Undertone   colour.Undertone `json:"undertone"`
	MonkScale   int              `json:"monkScale"`
	// MatchScore is the shade's score against the user's skin, in [0, 1].
	// Zero means the shade was not scored.
	MatchScore float64 `json:"matchScore,omitempty"`
}

// FromMatch builds a candidate from a scored match.
func FromMatch(m match.Match) Candidate {
	return Candidate{
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		ShadeName:   m.ShadeName,
		ShadeID:     m.ShadeID,
		HexColor:    m.HexColor,
		LAB:         m.LAB,
		Undertone:   m.Undertone,
		MonkScale:   m.MonkScale,
		MatchScore:  m.MatchScore,
	}
}

// FromShade builds an unscored candidate from a catalog shade.
func FromShade(ref catalog.ShadeRef) (Candidate, error) {
	lab, ok := ref.Shade.Colour()
	if !ok {
		return Candidate{}, fmt.Errorf("shade %q has no colour data", ref.Shade.ID)
	}

	c := Candidate{
		ProductID: ref.Shade.ProductID,
		ShadeName: ref.Shade.Name,
		ShadeID:   ref.Shade.ID,
		HexColor:  ref.Shade.Hex(),
		LAB:       lab,
		Undertone: ref.Shade.Undertone,
		MonkScale: ref.Shade.MonkScale,
	}
	if ref.Product != nil {
		c.ProductID = ref.Product.ID
		c.ProductName = ref.Product.Name
	}
	return c, nil
}

// Result describes how two shades differ.
type Result struct {
	ColourDifference float64 `json:"colorDifference"`
	// CIEDE2000 is reported for reference only. Bands use ColourDifference.
	CIEDE2000      float64 `json:"ciede2000"`
	SameUndertone  bool    `json:"sameUndertone"`
	MonkDifference int     `json:"monkDifference"`
	Recommendation string  `json:"recommendation"`
}

// Difference bands on the CIE76 scale.
var bands = []struct {
	below float64
	text  string
}{
	{2, "These shades are nearly identical! You could use either one."},
	{5, "These shades are very similar. The difference is barely noticeable."},
	{10, "These shades have a noticeable but subtle difference."},
	{20, "These shades are moderately different. Choose based on your preference."},
}

const (
	quiteDifferent = "These shades are quite different. Consider your specific needs."
	undertoneNote  = " Note: These have different undertones, which may affect how they look on your skin."

	// scoreGapPoints is the match score gap, in whole percentage points,
	// above which one shade is called out as the better match.
	scoreGapPoints = 10
)

// CompareShades compares a and b. It never fails.
func CompareShades(a, b Candidate) Result {
	deltaE := colour.DeltaE(a.LAB, b.LAB)
	same := a.Undertone == b.Undertone

	monkDiff := a.MonkScale - b.MonkScale
	if monkDiff < 0 {
		monkDiff = -monkDiff
	}

	return Result{
		ColourDifference: deltaE,
		CIEDE2000:        colour.DeltaE2000(a.LAB, b.LAB),
		SameUndertone:    same,
		MonkDifference:   monkDiff,
		Recommendation:   recommendation(deltaE, same, a, b),
	}
}

func recommendation(deltaE float64, sameUndertone bool, a, b Candidate) string {
	text := quiteDifferent
	for _, band := range bands {
		if deltaE < band.below {
			text = band.text
			break
		}
	}

	if !sameUndertone {
		text += undertoneNote
	}

	if a.MatchScore > 0 && b.MatchScore > 0 {
		scoreA := math.Round(a.MatchScore * 100)
		scoreB := math.Round(b.MatchScore * 100)
		if math.Abs(scoreA-scoreB) > scoreGapPoints {
			better := b
			if scoreA > scoreB {
				better = a
			}
			text += fmt.Sprintf(" %s in %s is a better match for your skin tone.", better.ProductName, better.ShadeName)
		}
	}

	return text
}
