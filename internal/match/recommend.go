package match

import (
	"github.com/jmylchreest/shade/internal/catalog"
)

// Complementary suggestion codes.
const (
	SuggestionOneShadeLighter = "one_shade_lighter"
	SuggestionTwoShadesDarker = "two_shades_darker"
)

// Recommendation explains why a shade is suggested. Complementary entries
// carry a Suggestion instead of a specific shade.
type Recommendation struct {
	ProductID  string  `json:"productId,omitempty"`
	ShadeID    string  `json:"shadeId,omitempty"`
	Suggestion string  `json:"recommendation,omitempty"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Recommendations maps each category to its suggested shades.
type Recommendations map[catalog.Category][]Recommendation

// GenerateRecommendations turns a match report into per-category
// recommendations. When foundation matches exist, concealer and bronzer
// suggestions are added for whichever of those categories has no match.
func GenerateRecommendations(report Report) Recommendations {
	recs := make(Recommendations)

	for _, cat := range report.Categories {
		matches := report.ByCategory[cat]
		list := make([]Recommendation, 0, len(matches))
		for _, m := range matches {
			list = append(list, Recommendation{
				ProductID:  m.ProductID,
				ShadeID:    m.ShadeID,
				Reason:     Reason(m),
				Confidence: m.MatchScore,
			})
		}
		recs[cat] = list
	}

	if len(recs[catalog.CategoryFoundation]) > 0 {
		if _, ok := recs[catalog.CategoryConcealer]; !ok {
			recs[catalog.CategoryConcealer] = []Recommendation{{
				Suggestion: SuggestionOneShadeLighter,
				Reason:     "Brightening effect",
			}}
		}
		if _, ok := recs[catalog.CategoryBronzer]; !ok {
			recs[catalog.CategoryBronzer] = []Recommendation{{
				Suggestion: SuggestionTwoShadesDarker,
				Reason:     "Natural contouring",
			}}
		}
	}

	return recs
}

// Reason describes a match in words, e.g. "Excellent color match with
// matching undertone".
func Reason(m Match) string {
	var reason string
	switch {
	case m.DeltaE < 2:
		reason = "Perfect color match"
	case m.DeltaE < 4:
		reason = "Excellent color match"
	default:
		reason = "Good color match"
	}
	if m.UndertoneMatch {
		reason += " with matching undertone"
	}
	return reason
}
