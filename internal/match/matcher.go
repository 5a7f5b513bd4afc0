// Package match scores catalog shades against a skin tone and ranks,
// buckets, filters and explains the results.
package match

import (
	"math"
	"sort"

	"github.com/jmylchreest/shade/internal/catalog"
	"github.com/jmylchreest/shade/internal/colour"
)

// Default matching parameters.
const (
	DefaultMaxDeltaE       = 10.0
	DefaultColourWeight    = 0.7
	DefaultUndertoneWeight = 0.3
	DefaultTopPerCategory  = 3
	DefaultMaxResults      = 20

	// mismatchedUndertoneScore is the undertone score when undertones differ.
	mismatchedUndertoneScore = 0.5
)

// Options configures FindBestMatches.
type Options struct {
	// MaxDeltaE is the largest CIE76 distance a shade may have and still match.
	MaxDeltaE float64 `json:"maxDeltaE" yaml:"max_delta_e"`

	// ColourWeight and UndertoneWeight combine the two partial scores.
	ColourWeight    float64 `json:"colourWeight" yaml:"colour_weight"`
	UndertoneWeight float64 `json:"undertoneWeight" yaml:"undertone_weight"`

	// TopPerCategory is the number of matches kept per category.
	TopPerCategory int `json:"topPerCategory" yaml:"top_per_category"`

	// MaxResults truncates AllMatches. Zero keeps every match.
	MaxResults int `json:"maxResults" yaml:"max_results"`
}

// DefaultOptions returns the standard matching parameters.
func DefaultOptions() Options {
	return Options{
		MaxDeltaE:       DefaultMaxDeltaE,
		ColourWeight:    DefaultColourWeight,
		UndertoneWeight: DefaultUndertoneWeight,
		TopPerCategory:  DefaultTopPerCategory,
		MaxResults:      DefaultMaxResults,
	}
}

// normalised fills unset fields with defaults. MaxResults is left alone
// since zero is meaningful.
func (o Options) normalised() Options {
	if !(o.MaxDeltaE > 0) || math.IsInf(o.MaxDeltaE, 1) {
		o.MaxDeltaE = DefaultMaxDeltaE
	}
	if !validWeight(o.ColourWeight) || !validWeight(o.UndertoneWeight) ||
		o.ColourWeight == 0 && o.UndertoneWeight == 0 {
		o.ColourWeight = DefaultColourWeight
		o.UndertoneWeight = DefaultUndertoneWeight
	}
	if o.TopPerCategory <= 0 {
		o.TopPerCategory = DefaultTopPerCategory
	}
	return o
}

// validWeight rejects negative, NaN and infinite weights.
func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 1)
}

// Match is one shade scored against a skin tone, denormalised with the
// product fields needed for display.
type Match struct {
	ProductID      string           `json:"productId"`
	ShadeID        string           `json:"shadeId"`
	ProductName    string           `json:"productName"`
	Brand          string           `json:"brand"`
	Category       catalog.Category `json:"category"`
	Subcategory    string           `json:"subcategory,omitempty"`
	ShadeName      string           `json:"shadeName"`
	ShadeCode      string           `json:"shadeCode,omitempty"`
	HexColor       string           `json:"hexColor"`
	LAB            colour.LAB       `json:"lab"`
	Undertone      colour.Undertone `json:"undertone"`
	MonkScale      int              `json:"monkScale"`
	Coverage       string           `json:"coverage,omitempty"`
	Finish         string           `json:"finish,omitempty"`
	Price          float64          `json:"price"`
	Currency       string           `json:"currency,omitempty"`
	Popularity     float64          `json:"popularity"`
	DeltaE         float64          `json:"deltaE"`
	MatchScore     float64          `json:"matchScore"`
	UndertoneMatch bool             `json:"undertoneMatch"`
	AdjustedScore  float64          `json:"adjustedScore,omitempty"`
}

// Report is the outcome of matching one skin tone against a catalog.
// BestMatch is nil when no shade is within range; that is not an error.
type Report struct {
	AllMatches []Match                      `json:"allMatches"`
	ByCategory map[catalog.Category][]Match `json:"byCategory"`
	// Categories lists the keys of ByCategory in order of their best score.
	Categories []catalog.Category `json:"categories"`
	BestMatch  *Match             `json:"bestMatch"`
	// Total is the number of matches before AllMatches was truncated.
	Total int `json:"total"`
}

// FindBestMatches scores every in-stock shade in products against tone,
// drops shades beyond MaxDeltaE or without colour data and returns them
// sorted by descending score. Equal scores keep catalog order. Neither
// products nor tone are modified.
func FindBestMatches(tone colour.Tone, products []catalog.Product, opts Options) Report {
	opts = opts.normalised()

	all := []Match{}
	for i := range products {
		p := &products[i]
		for _, s := range p.Shades {
			if m, ok := ScoreShade(tone, p, s, opts); ok {
				all = append(all, m)
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].MatchScore > all[j].MatchScore
	})

	report := Report{
		AllMatches: all,
		ByCategory: make(map[catalog.Category][]Match),
		Categories: []catalog.Category{},
		Total:      len(all),
	}

	for _, m := range all {
		bucket, seen := report.ByCategory[m.Category]
		if !seen {
			report.Categories = append(report.Categories, m.Category)
		}
		if len(bucket) < opts.TopPerCategory {
			report.ByCategory[m.Category] = append(bucket, m)
		}
	}

	if len(all) > 0 {
		best := all[0]
		report.BestMatch = &best
	}

	if opts.MaxResults > 0 && len(all) > opts.MaxResults {
		report.AllMatches = all[:opts.MaxResults]
	}

	return report
}

// ScoreShade scores a single shade. The boolean is false when the shade is
// out of stock, has no usable colour or is further than MaxDeltaE from tone.
func ScoreShade(tone colour.Tone, p *catalog.Product, s catalog.Shade, opts Options) (Match, bool) {
	opts = opts.normalised()

	if !s.InStock {
		return Match{}, false
	}
	lab, ok := s.Colour()
	if !ok {
		return Match{}, false
	}

	deltaE := colour.DeltaE(tone.LAB, lab)
	if !(deltaE <= opts.MaxDeltaE) {
		return Match{}, false
	}

	undertoneMatch := s.Undertone == tone.Undertone
	undertoneScore := 1.0
	if !undertoneMatch {
		undertoneScore = mismatchedUndertoneScore
	}
	colourScore := 1 - deltaE/opts.MaxDeltaE

	return Match{
		ProductID:      p.ID,
		ShadeID:        s.ID,
		ProductName:    p.Name,
		Brand:          p.Brand,
		Category:       p.Category,
		Subcategory:    p.Subcategory,
		ShadeName:      s.Name,
		ShadeCode:      s.Code,
		HexColor:       s.Hex(),
		LAB:            lab,
		Undertone:      s.Undertone,
		MonkScale:      s.MonkScale,
		Coverage:       s.Coverage,
		Finish:         s.Finish,
		Price:          p.Price,
		Currency:       p.Currency,
		Popularity:     s.Popularity,
		DeltaE:         deltaE,
		MatchScore:     colourScore*opts.ColourWeight + undertoneScore*opts.UndertoneWeight,
		UndertoneMatch: undertoneMatch,
	}, true
}
