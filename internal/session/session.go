// Package session holds the state of one shopper's visit: the latest
// analysis, the shades on offer, two comparison slots and favourites.
// Nothing here is global; callers create and pass a Session explicitly.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jmylchreest/shade/internal/analysis"
	"github.com/jmylchreest/shade/internal/catalog"
	"github.com/jmylchreest/shade/internal/compare"
	"github.com/jmylchreest/shade/internal/match"
)

var (
	// ErrAlreadyInComparison is returned when a shade is added to a
	// comparison slot it already occupies.
	ErrAlreadyInComparison = errors.New("shade is already in comparison")

	// ErrNotRecommended is returned when favouriting a shade that is not
	// among the current recommendations.
	ErrNotRecommended = errors.New("shade is not among the current recommendations")

	// ErrInvalidSlot is returned for a comparison slot other than 1 or 2.
	ErrInvalidSlot = errors.New("comparison slot must be 1 or 2")
)

// Session is the state of a single visit. A Session is not safe for
// concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	analysis        *analysis.Result
	recommendations []match.Match
	slots           [2]*compare.Candidate
	favourites      []Favourite
	matching        match.Options

	now func() time.Time
}

// New creates an empty session.
func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		matching:  match.DefaultOptions(),
		now:       time.Now,
	}
}

// SetMatchOptions sets the options used to score shades that are not among
// the current recommendations. It should match the options the analysis
// was run with.
func (s *Session) SetMatchOptions(opts match.Options) {
	s.matching = opts
}

// SetAnalysis records the latest analysis and replaces the current
// recommendations with its matches. Comparison slots and favourites are
// kept.
func (s *Session) SetAnalysis(r *analysis.Result) {
	s.analysis = r
	s.recommendations = nil
	if r == nil {
		return
	}

	seen := make(map[string]bool)
	add := func(m match.Match) {
		key := m.ProductID + "/" + m.ShadeID
		if !seen[key] {
			seen[key] = true
			s.recommendations = append(s.recommendations, m)
		}
	}

	for _, m := range r.Matches.AllMatches {
		add(m)
	}
	for _, cat := range r.Matches.Categories {
		for _, m := range r.Matches.ByCategory[cat] {
			add(m)
		}
	}
}

// Analysis returns the latest analysis, or nil.
func (s *Session) Analysis() *analysis.Result {
	return s.analysis
}

// Recommendations returns the shades currently on offer.
func (s *Session) Recommendations() []match.Match {
	return append([]match.Match(nil), s.recommendations...)
}

// Recommendation returns the current recommendation for a shade.
func (s *Session) Recommendation(productID, shadeID string) (match.Match, bool) {
	for _, m := range s.recommendations {
		if m.ProductID == productID && m.ShadeID == shadeID {
			return m, true
		}
	}
	return match.Match{}, false
}

// Candidate resolves a catalog shade for comparison. When the session has
// an analysis the candidate carries the shade's match score: the current
// recommendation if there is one, otherwise a fresh score when the shade is
// within range.
func (s *Session) Candidate(ref catalog.ShadeRef) (compare.Candidate, error) {
	productID := ref.Shade.ProductID
	if ref.Product != nil {
		productID = ref.Product.ID
	}

	if m, ok := s.Recommendation(productID, ref.Shade.ID); ok {
		return compare.FromMatch(m), nil
	}

	if s.analysis != nil && ref.Product != nil {
		if m, ok := match.ScoreShade(s.analysis.SkinTone.Tone, ref.Product, ref.Shade, s.matching); ok {
			return compare.FromMatch(m), nil
		}
	}

	return compare.FromShade(ref)
}

// AddToComparison places c in the first empty slot, or replaces slot 2
// when both are full. It returns the slot used.
func (s *Session) AddToComparison(c compare.Candidate) (int, error) {
	if s.InComparison(c.ProductID, c.ShadeID) {
		return 0, fmt.Errorf("%s/%s: %w", c.ProductID, c.ShadeID, ErrAlreadyInComparison)
	}

	slot := 2
	if s.slots[0] == nil {
		slot = 1
	}
	s.slots[slot-1] = &c
	return slot, nil
}

// InComparison reports whether a shade occupies either slot.
func (s *Session) InComparison(productID, shadeID string) bool {
	for _, c := range s.slots {
		if c != nil && c.ProductID == productID && c.ShadeID == shadeID {
			return true
		}
	}
	return false
}

// RemoveFromComparison empties a slot.
func (s *Session) RemoveFromComparison(slot int) error {
	if slot != 1 && slot != 2 {
		return fmt.Errorf("slot %d: %w", slot, ErrInvalidSlot)
	}
	s.slots[slot-1] = nil
	return nil
}

// ClearComparison empties both slots.
func (s *Session) ClearComparison() {
	s.slots = [2]*compare.Candidate{}
}

// Slot returns the candidate in a slot.
func (s *Session) Slot(slot int) (compare.Candidate, bool) {
	if slot != 1 && slot != 2 || s.slots[slot-1] == nil {
		return compare.Candidate{}, false
	}
	return *s.slots[slot-1], true
}

// Comparison compares the two slotted shades. The boolean is false unless
// both slots are filled.
func (s *Session) Comparison() (compare.Result, bool) {
	if s.slots[0] == nil || s.slots[1] == nil {
		return compare.Result{}, false
	}
	return compare.CompareShades(*s.slots[0], *s.slots[1]), true
}
