package match

import (
	"math"
	"slices"
	"sort"
)

// Preference multipliers applied by RankMatches.
const (
	priceInRangeBoost      = 1.1
	priceOutOfRangeCut     = 0.9
	preferredBrandBoost    = 1.2
	preferredCoverageBoost = 1.1
)

// PriceRange is an inclusive price band.
type PriceRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether price lies within the range.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Preferences are optional shopper preferences used to re-rank matches.
type Preferences struct {
	PriceRange      *PriceRange `json:"priceRange,omitempty" yaml:"price_range,omitempty"`
	PreferredBrands []string    `json:"preferredBrands,omitempty" yaml:"preferred_brands,omitempty"`
	Coverage        string      `json:"coverage,omitempty" yaml:"coverage,omitempty"`
}

// IsZero reports whether no preference is set.
func (p Preferences) IsZero() bool {
	return p.PriceRange == nil && len(p.PreferredBrands) == 0 && p.Coverage == ""
}

// RankMatches returns a copy of matches with AdjustedScore set from prefs,
// sorted by descending adjusted score. The adjusted score is capped at 1.
// With no preferences the input order is kept and AdjustedScore equals
// MatchScore.
func RankMatches(matches []Match, prefs Preferences) []Match {
	ranked := make([]Match, len(matches))
	for i, m := range matches {
		m.AdjustedScore = math.Min(1, m.MatchScore*prefs.multiplier(m))
		ranked[i] = m
	}

	if prefs.IsZero() {
		return ranked
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AdjustedScore > ranked[j].AdjustedScore
	})
	return ranked
}

func (p Preferences) multiplier(m Match) float64 {
	mult := 1.0
	if p.PriceRange != nil {
		if p.PriceRange.Contains(m.Price) {
			mult *= priceInRangeBoost
		} else {
			mult *= priceOutOfRangeCut
		}
	}
	if slices.Contains(p.PreferredBrands, m.Brand) {
		mult *= preferredBrandBoost
	}
	if p.Coverage != "" && m.Coverage == p.Coverage {
		mult *= preferredCoverageBoost
	}
	return mult
}
