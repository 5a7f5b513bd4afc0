package cli

import (
	"fmt"
	"io"

	"github.com/jmylchreest/shade/internal/analysis"
	"github.com/jmylchreest/shade/internal/compare"
	"github.com/jmylchreest/shade/internal/face"
	"github.com/jmylchreest/shade/internal/session"
	"github.com/spf13/cobra"
)

var (
	// Compare command flags
	compareImage  string
	compareHex    string
	compareLab    string
	compareFormat string
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <shade-id> <shade-id>",
	Short: "Compare two catalog shades",
	Long: `Compare two catalog shades side by side.

The comparison reports the CIE76 colour difference, a CIEDE2000 reference
value, undertone agreement and the Monk scale gap. When a photo or skin
colour is supplied both shades are also scored against it and the better
match is called out.

Use "shade catalog show <product-id>" to list shade IDs.

Examples:
  # Compare two foundation shades
  shade compare found-1-8 found-2-8

  # Compare against the skin tone in a photo
  shade compare --image selfie.jpg found-1-8 found-1-9

  # Compare against a known skin colour
  shade compare --hex "#c8a082" found-1-8 found-3-8`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareImage, "image", "", "photo to score both shades against")
	compareCmd.Flags().StringVar(&compareHex, "hex", "", "skin colour to score both shades against, as hex")
	compareCmd.Flags().StringVar(&compareLab, "lab", "", "skin colour to score both shades against, as L,a,b")
	compareCmd.Flags().StringVarP(&compareFormat, "format", "f", formatTable, "output format (table, json)")
	compareCmd.MarkFlagsMutuallyExclusive("image", "hex", "lab")
}

// runCompare executes the compare command.
func runCompare(cmd *cobra.Command, args []string) error {
	if err := validateFormat(compareFormat); err != nil {
		return err
	}

	env, err := newCmdEnv(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	sess := session.New()
	env.logger.Debug("session started", "id", sess.ID)

	cat, err := env.catalog(ctx)
	if err != nil {
		return err
	}

	sess.SetMatchOptions(env.cfg.Matching)

	switch {
	case compareImage != "":
		det, err := env.detector(ctx)
		if err != nil {
			return err
		}
		res, err := env.newAnalyser(det, cat).AnalyseFile(ctx, env.loader(), compareImage)
		if err != nil {
			return fmt.Errorf("%s: %w", analysis.UserMessage(err), err)
		}
		sess.SetAnalysis(res)
	case compareHex != "" || compareLab != "":
		tone, err := parseTone(compareHex, compareLab)
		if err != nil {
			return err
		}
		sess.SetAnalysis(env.newAnalyser(face.NewCentreDetector(), cat).AnalyseTone(tone))
	}

	for _, id := range args {
		ref, err := cat.Shade(id)
		if err != nil {
			return err
		}
		c, err := sess.Candidate(ref)
		if err != nil {
			return err
		}
		if _, err := sess.AddToComparison(c); err != nil {
			return err
		}
	}

	result, _ := sess.Comparison()
	first, _ := sess.Slot(1)
	second, _ := sess.Slot(2)

	if compareFormat == formatJSON {
		return writeJSON(env.out, compareOutputJSON{
			Shades: [2]compare.Candidate{first, second},
			Result: result,
		})
	}

	printComparison(env.out, first, second, result)
	return nil
}

// compareOutputJSON is the JSON document written by compare.
type compareOutputJSON struct {
	Shades [2]compare.Candidate `json:"shades"`
	Result compare.Result       `json:"comparison"`
}

// printComparison writes the two shades side by side followed by the
// comparison summary.
func printComparison(w io.Writer, a, b compare.Candidate, r compare.Result) {
	t := NewTable([]string{"", "Shade 1", "Shade 2"})
	t.SetColumnMaxWidth(1, 32)
	t.SetColumnMaxWidth(2, 32)

	t.AddRow([]string{"Product", a.ProductName, b.ProductName})
	t.AddRow([]string{"Shade", a.ShadeName, b.ShadeName})
	t.AddRow([]string{"ID", a.ShadeID, b.ShadeID})
	t.AddRow([]string{"Colour", swatch(a.HexColor), swatch(b.HexColor)})
	t.AddRow([]string{"LAB", a.LAB.String(), b.LAB.String()})
	t.AddRow([]string{"Undertone", string(a.Undertone), string(b.Undertone)})
	t.AddRow([]string{"Monk scale", fmt.Sprintf("%d", a.MonkScale), fmt.Sprintf("%d", b.MonkScale)})
	if a.MatchScore > 0 || b.MatchScore > 0 {
		t.AddRow([]string{"Match", scoreText(a.MatchScore), scoreText(b.MatchScore)})
	}
	fmt.Fprint(w, t.Render())

	same := "no"
	if r.SameUndertone {
		same = "yes"
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "ΔE (CIE76)      %.2f\n", r.ColourDifference)
	fmt.Fprintf(w, "ΔE (CIEDE2000)  %.2f\n", r.CIEDE2000)
	fmt.Fprintf(w, "Same undertone  %s\n", same)
	fmt.Fprintf(w, "Monk difference %d\n", r.MonkDifference)
	fmt.Fprintf(w, "\n%s\n", r.Recommendation)
}

func scoreText(score float64) string {
	if score <= 0 {
		return "out of range"
	}
	return fmt.Sprintf("%.0f%%", score*100)
}
