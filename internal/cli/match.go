package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/shade/internal/catalog"
	"github.com/jmylchreest/shade/internal/colour"
	"github.com/jmylchreest/shade/internal/match"
	"github.com/spf13/cobra"
)

var (
	// Match command flags
	matchHex      string
	matchLab      string
	matchFormat   string
	matchCategory string
	matchLimit    int
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match catalog shades against a known skin colour",
	Long: `Match catalog shades against a skin colour given as hex or CIELAB,
without analysing a photo.

Examples:
  # Match a hex colour
  shade match --hex "#c8a082"

  # Match a LAB colour and only list concealers
  shade match --lab 70,12,22 --category concealer`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchHex, "hex", "", "skin colour as hex (#rrggbb)")
	matchCmd.Flags().StringVar(&matchLab, "lab", "", "skin colour as L,a,b")
	matchCmd.Flags().StringVarP(&matchFormat, "format", "f", formatTable, "output format (table, json)")
	matchCmd.Flags().StringVar(&matchCategory, "category", "", "only show shades in this category")
	matchCmd.Flags().IntVarP(&matchLimit, "limit", "n", 10, "number of matches to show in table output (0 = all)")
	matchCmd.MarkFlagsMutuallyExclusive("hex", "lab")
	matchCmd.MarkFlagsOneRequired("hex", "lab")
}

// runMatch executes the match command.
func runMatch(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(matchFormat); err != nil {
		return err
	}

	tone, err := parseTone(matchHex, matchLab)
	if err != nil {
		return err
	}

	env, err := newCmdEnv(cmd)
	if err != nil {
		return err
	}
	a, err := env.toneAnalyser(cmd.Context())
	if err != nil {
		return err
	}

	res := a.AnalyseTone(tone)
	matches := res.Matches.AllMatches
	if matchCategory != "" {
		matches = match.FilterMatches(matches, match.Filter{Category: catalog.Category(matchCategory)})
	}

	if matchFormat == formatJSON {
		return writeJSON(env.out, matchOutputJSON{
			SkinTone:        tone,
			Matches:         matches,
			Recommendations: res.Recommendations,
		})
	}

	w := env.out
	fmt.Fprintf(w, "Skin tone    %s  %s\n", swatch(tone.Hex), tone.LAB)
	fmt.Fprintf(w, "Undertone    %s\n", tone.Undertone)
	fmt.Fprintf(w, "Monk scale   %d/10%s\n", tone.MonkScale, colour.MonkBadge(tone))
	fmt.Fprintf(w, "Fitzpatrick  %d/6\n\n", tone.FitzpatrickScale)

	if len(matches) == 0 {
		fmt.Fprintln(w, "No matching shades found.")
		return nil
	}

	shown := matches
	if matchLimit > 0 && len(shown) > matchLimit {
		shown = shown[:matchLimit]
	}
	fmt.Fprint(w, matchTable(shown).Render())
	return nil
}

// matchOutputJSON is the JSON document written by match.
type matchOutputJSON struct {
	SkinTone        colour.Tone           `json:"skinTone"`
	Matches         []match.Match         `json:"matches"`
	Recommendations match.Recommendations `json:"recommendations"`
}

// parseTone classifies a colour supplied as hex or "L,a,b".
func parseTone(hex, lab string) (colour.Tone, error) {
	switch {
	case hex != "":
		rgb, err := colour.ParseHex(hex)
		if err != nil {
			return colour.Tone{}, err
		}
		return colour.Classify(rgb), nil
	case lab != "":
		v, err := parseLab(lab)
		if err != nil {
			return colour.Tone{}, err
		}
		return colour.ClassifyLab(v), nil
	default:
		return colour.Tone{}, errors.New("a colour is required (--hex or --lab)")
	}
}

// parseLab parses "L,a,b" with optional spaces.
func parseLab(s string) (colour.LAB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return colour.LAB{}, fmt.Errorf("invalid LAB %q: expected L,a,b", s)
	}

	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return colour.LAB{}, fmt.Errorf("invalid LAB %q: %w", s, err)
		}
		v[i] = f
	}

	lab := colour.LAB{L: v[0], A: v[1], B: v[2]}
	if !lab.IsValid() {
		return colour.LAB{}, fmt.Errorf("invalid LAB %q: components must be finite", s)
	}
	if lab.L < 0 || lab.L > 100 {
		return colour.LAB{}, fmt.Errorf("invalid LAB %q: L must be between 0 and 100", s)
	}
	return lab, nil
}
