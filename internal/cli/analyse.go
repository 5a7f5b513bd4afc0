package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/jmylchreest/shade/internal/analysis"
	"github.com/jmylchreest/shade/internal/catalog"
	"github.com/jmylchreest/shade/internal/colour"
	imgutil "github.com/jmylchreest/shade/internal/image"
	"github.com/jmylchreest/shade/internal/match"
	"github.com/spf13/cobra"
)

var (
	// Analyse command flags
	analyseFormat         string
	analyseOutput         string
	analyseDetector       string
	analyseSkipValidation bool
	analyseLimit          int
	analyseMinPrice       float64
	analyseMaxPrice       float64
	analyseBrands         []string
	analyseCoverage       string
	analyseUndertone      string
	analyseCategory       string
)

// analyseCmd represents the analyse command
var analyseCmd = &cobra.Command{
	Use:     "analyse <image>",
	Aliases: []string{"analyze"},
	Short:   "Analyse skin tone in a photo and match catalog shades",
	Long: `Analyse a face photo and match the measured skin tone against the catalog.

The image may be a local file, an HTTPS URL or "-" for standard input.
Supported formats: JPEG, PNG, GIF, BMP, WebP.

Examples:
  # Analyse a selfie with the built-in sample catalog
  shade analyse selfie.jpg

  # Output the full result as JSON
  shade analyse --format json selfie.jpg

  # Read the photo from a pipe
  curl -s https://example.com/selfie.jpg | shade analyse -

  # Prefer a brand and a price range when ranking
  shade analyse --brand "Natural Glow" --min-price 20 --max-price 40 selfie.jpg

  # Only show warm foundation shades
  shade analyse --category foundation --undertone warm selfie.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyse,
}

func init() {
	analyseCmd.Flags().StringVarP(&analyseFormat, "format", "f", formatTable, "output format (table, json)")
	analyseCmd.Flags().StringVarP(&analyseOutput, "output", "o", "", "output file (default: stdout)")
	analyseCmd.Flags().StringVar(&analyseDetector, "detector", "", "face detector (centre, gemini; default from config)")
	analyseCmd.Flags().BoolVar(&analyseSkipValidation, "skip-validation", false, "analyse even when the detected face fails validation")
	analyseCmd.Flags().IntVarP(&analyseLimit, "limit", "n", 10, "number of matches to show in table output (0 = all)")
	analyseCmd.Flags().Float64Var(&analyseMinPrice, "min-price", 0, "preferred minimum price")
	analyseCmd.Flags().Float64Var(&analyseMaxPrice, "max-price", 0, "preferred maximum price")
	analyseCmd.Flags().StringSliceVar(&analyseBrands, "brand", nil, "preferred brands (repeatable)")
	analyseCmd.Flags().StringVar(&analyseCoverage, "coverage", "", "preferred coverage (light, medium, full)")
	analyseCmd.Flags().StringVar(&analyseUndertone, "undertone", "", "only show shades with this undertone (cool, warm, neutral)")
	analyseCmd.Flags().StringVar(&analyseCategory, "category", "", "only show shades in this category")
}

// runAnalyse executes the analyse command.
func runAnalyse(cmd *cobra.Command, args []string) error {
	if err := validateFormat(analyseFormat); err != nil {
		return err
	}

	env, err := newCmdEnv(cmd)
	if err != nil {
		return err
	}
	if analyseDetector != "" {
		env.cfg.Face.Detector = analyseDetector
	}
	if analyseSkipValidation {
		env.cfg.Face.SkipValidation = true
	}

	prefs, filter, err := analysePreferences(cmd)
	if err != nil {
		return err
	}

	if src := args[0]; src != imgutil.StdinPath && !imgutil.IsURL(src) {
		format, w, h, err := imgutil.ReadHeader(src)
		if err != nil {
			return fmt.Errorf("%s: %w", analysis.UserMessage(err), err)
		}
		env.logger.Debug("photo", "format", format, "width", w, "height", h)
	}

	ctx := cmd.Context()
	a, err := env.analyser(ctx)
	if err != nil {
		return err
	}

	env.logger.Debug("analysing image", "source", args[0])
	res, err := a.AnalyseFile(ctx, env.loader(), args[0])
	if err != nil {
		env.logger.Debug("analysis failed", "error", err)
		return fmt.Errorf("%s: %w", analysis.UserMessage(err), err)
	}
	env.logger.Debug("analysis complete", "id", res.ID, "duration", res.Duration, "matches", res.Matches.Total)

	refined := cmd.Flags().Changed("undertone") || cmd.Flags().Changed("category") || !prefs.IsZero()
	var ranked []match.Match
	if refined {
		ranked = match.FilterMatches(match.RankMatches(res.Matches.AllMatches, prefs), filter)
	}

	w := env.out
	if analyseOutput != "" {
		f, err := os.Create(analyseOutput) // #nosec G304 - output path is user-provided
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if analyseFormat == formatJSON {
		return writeJSON(w, analyseOutputJSON{Result: res, RankedMatches: ranked})
	}

	matches := res.Matches.AllMatches
	if refined {
		matches = ranked
	}
	printAnalysis(w, res, matches, analyseLimit)
	return nil
}

// analyseOutputJSON is the JSON document written by analyse.
type analyseOutputJSON struct {
	*analysis.Result
	RankedMatches []match.Match `json:"rankedMatches,omitempty"`
}

// analysePreferences builds ranking preferences and filters from flags.
func analysePreferences(cmd *cobra.Command) (match.Preferences, match.Filter, error) {
	var (
		prefs  match.Preferences
		filter match.Filter
	)

	if cmd.Flags().Changed("min-price") || cmd.Flags().Changed("max-price") {
		r := &match.PriceRange{Min: analyseMinPrice, Max: analyseMaxPrice}
		if !cmd.Flags().Changed("max-price") {
			r.Max = 1e9
		}
		if r.Min > r.Max {
			return prefs, filter, fmt.Errorf("--min-price %.2f is above --max-price %.2f", r.Min, r.Max)
		}
		prefs.PriceRange = r
	}
	prefs.PreferredBrands = analyseBrands
	prefs.Coverage = analyseCoverage

	if analyseUndertone != "" {
		u, err := colour.ParseUndertone(analyseUndertone)
		if err != nil {
			return prefs, filter, err
		}
		filter.Undertone = u
	}
	filter.Category = catalog.Category(analyseCategory)

	return prefs, filter, nil
}

// printAnalysis writes a human-readable analysis report.
func printAnalysis(w io.Writer, res *analysis.Result, matches []match.Match, limit int) {
	tone := res.SkinTone

	fmt.Fprintf(w, "Analysis     %s\n", res.ID)
	if res.Source != "" {
		fmt.Fprintf(w, "Source       %s\n", res.Source)
	}
	fmt.Fprintf(w, "Skin tone    %s  %s\n", swatch(tone.Hex), tone.LAB)
	fmt.Fprintf(w, "Undertone    %s\n", tone.Undertone)
	fmt.Fprintf(w, "Monk scale   %d/10%s\n", tone.MonkScale, colour.MonkBadge(tone.Tone))
	fmt.Fprintf(w, "Fitzpatrick  %d/6\n", tone.FitzpatrickScale)
	fmt.Fprintf(w, "Quality      %.2f (%d/%d samples, %d outliers removed)\n",
		tone.SampleQuality, tone.ValidSamples, tone.TotalSamples, tone.OutliersRemoved)

	lighting := "ok"
	if res.Lighting.Issue != "" {
		lighting = string(res.Lighting.Issue)
	}
	if tone.CorrectionApplied {
		lighting += ", corrected"
	}
	fmt.Fprintf(w, "Lighting     %s (brightness %.0f)\n", lighting, res.Lighting.Brightness)
	fmt.Fprintf(w, "Confidence   %.0f%%\n", res.Confidence*100)
	if tone.Fallback {
		fmt.Fprintln(w, "Note         no pixels passed the skin check; colour is an unfiltered average")
	}

	fmt.Fprintln(w)
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matching shades found.")
		return
	}

	shown := matches
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	fmt.Fprint(w, matchTable(shown).Render())
	if len(shown) < len(matches) {
		fmt.Fprintf(w, "... %d more (use --limit 0 to show all)\n", len(matches)-len(shown))
	}

	if len(res.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, recommendationTable(res).Render())
	}
}

// matchTable lays out scored matches.
func matchTable(matches []match.Match) *Table {
	t := NewTable([]string{"#", "Category", "Brand", "Product", "Shade", "Colour", "Undertone", "ΔE", "Score"})
	for _, c := range []int{0, 7, 8} {
		t.SetColumnAlign(c, AlignRight)
	}
	t.SetColumnMaxWidth(3, 28)

	for i, m := range matches {
		score := m.MatchScore
		if m.AdjustedScore > 0 {
			score = m.AdjustedScore
		}
		t.AddRow([]string{
			strconv.Itoa(i + 1),
			string(m.Category),
			m.Brand,
			m.ProductName,
			m.ShadeName,
			swatch(m.HexColor),
			string(m.Undertone),
			fmt.Sprintf("%.2f", m.DeltaE),
			fmt.Sprintf("%.0f%%", score*100),
		})
	}
	return t
}

// recommendationTable lays out per-category recommendations sorted by
// category name.
func recommendationTable(res *analysis.Result) *Table {
	t := NewTable([]string{"Category", "Suggestion", "Reason"})
	t.SetColumnMaxWidth(2, 40)

	categories := make([]catalog.Category, 0, len(res.Recommendations))
	for c := range res.Recommendations {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	for _, c := range categories {
		for _, rec := range res.Recommendations[c] {
			suggestion := rec.Suggestion
			if rec.ShadeID != "" {
				suggestion = shadeLabel(res, rec.ProductID, rec.ShadeID)
			}
			t.AddRow([]string{string(c), suggestion, rec.Reason})
		}
	}
	return t
}

// shadeLabel names a recommended shade from the analysis matches.
func shadeLabel(res *analysis.Result, productID, shadeID string) string {
	for _, list := range res.Matches.ByCategory {
		for _, m := range list {
			if m.ProductID == productID && m.ShadeID == shadeID {
				return fmt.Sprintf("%s %s (%s)", m.ProductName, m.ShadeName, shadeID)
			}
		}
	}
	return shadeID
}
