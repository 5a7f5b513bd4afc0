package match

import (
	"slices"

	"github.com/jmylchreest/shade/internal/catalog"
	"github.com/jmylchreest/shade/internal/colour"
)

// Filter narrows a list of matches. Zero fields do not filter.
type Filter struct {
	Undertone  colour.Undertone `json:"undertone,omitempty"`
	PriceRange *PriceRange      `json:"priceRange,omitempty"`
	Category   catalog.Category `json:"category,omitempty"`
	Brands     []string         `json:"brands,omitempty"`
}

// FilterMatches returns the matches that satisfy every criterion in f,
// preserving order. The undertone criterion applies to the shade's own
// undertone.
func FilterMatches(matches []Match, f Filter) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if f.keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func (f Filter) keep(m Match) bool {
	if f.Undertone != "" && m.Undertone != f.Undertone {
		return false
	}
	if f.PriceRange != nil && !f.PriceRange.Contains(m.Price) {
		return false
	}
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if len(f.Brands) > 0 && !slices.Contains(f.Brands, m.Brand) {
		return false
	}
	return true
}
