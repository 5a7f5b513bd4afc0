package session

import (
	"fmt"
	"time"

	"github.com/jmylchreest/shade/internal/catalog"
)

// Favourite is a saved shade.
type Favourite struct {
	ProductID   string           `json:"productId"`
	ShadeID     string           `json:"shadeId"`
	ProductName string           `json:"productName"`
	ShadeName   string           `json:"shadeName"`
	HexColor    string           `json:"hexColor"`
	Price       float64          `json:"price"`
	Category    catalog.Category `json:"category"`
	MatchScore  float64          `json:"matchScore"`
	AddedAt     time.Time        `json:"addedAt"`
}

// FavouritesSummary aggregates the saved shades.
type FavouritesSummary struct {
	Count         int                      `json:"count"`
	Categories    map[catalog.Category]int `json:"categories"`
	AvgMatchScore float64                  `json:"avgMatchScore"`
	Favourites    []Favourite              `json:"favorites"`
}

// ToggleFavourite removes a favourite shade, or adds it when it is among
// the current recommendations. It reports whether the shade is now a
// favourite. New favourites are listed first.
func (s *Session) ToggleFavourite(productID, shadeID string) (bool, error) {
	for i, f := range s.favourites {
		if f.ProductID == productID && f.ShadeID == shadeID {
			s.favourites = append(s.favourites[:i], s.favourites[i+1:]...)
			return false, nil
		}
	}

	m, ok := s.Recommendation(productID, shadeID)
	if !ok {
		return false, fmt.Errorf("%s/%s: %w", productID, shadeID, ErrNotRecommended)
	}

	fav := Favourite{
		ProductID:   m.ProductID,
		ShadeID:     m.ShadeID,
		ProductName: m.ProductName,
		ShadeName:   m.ShadeName,
		HexColor:    m.HexColor,
		Price:       m.Price,
		Category:    m.Category,
		MatchScore:  m.MatchScore,
		AddedAt:     s.now().UTC(),
	}
	s.favourites = append([]Favourite{fav}, s.favourites...)
	return true, nil
}

// IsFavourite reports whether a shade is saved.
func (s *Session) IsFavourite(productID, shadeID string) bool {
	for _, f := range s.favourites {
		if f.ProductID == productID && f.ShadeID == shadeID {
			return true
		}
	}
	return false
}

// Favourites returns the saved shades, newest first. An empty category
// returns every favourite.
func (s *Session) Favourites(category catalog.Category) []Favourite {
	out := []Favourite{}
	for _, f := range s.favourites {
		if category == "" || f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// ClearFavourites removes every saved shade.
func (s *Session) ClearFavourites() {
	s.favourites = nil
}

// Summary aggregates the favourites. The average score is zero when there
// are none.
func (s *Session) Summary() FavouritesSummary {
	summary := FavouritesSummary{
		Count:      len(s.favourites),
		Categories: make(map[catalog.Category]int),
		Favourites: s.Favourites(""),
	}

	var total float64
	for _, f := range s.favourites {
		summary.Categories[f.Category]++
		total += f.MatchScore
	}
	if summary.Count > 0 {
		summary.AvgMatchScore = total / float64(summary.Count)
	}

	return summary
}
