package cli

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/shade/internal/colour"
	"github.com/spf13/cobra"
)

// Convert command flags
var convertFormat string

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <colour>",
	Short: "Convert and classify a colour",
	Long: `Convert a colour between sRGB hex and CIELAB and classify it as a skin
tone: undertone, Monk Skin Tone scale and Fitzpatrick scale.

The colour may be hex ("#c8a082", "c8a082", "#ca8") or LAB ("70,12,22").

Examples:
  shade convert "#c8a082"
  shade convert 70,12,22
  shade convert --format json "#8d5524"`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", formatTable, "output format (table, json)")
}

// runConvert executes the convert command.
func runConvert(cmd *cobra.Command, args []string) error {
	if err := validateFormat(convertFormat); err != nil {
		return err
	}

	var tone colour.Tone
	var err error
	if strings.Contains(args[0], ",") {
		tone, err = parseTone("", args[0])
	} else {
		tone, err = parseTone(args[0], "")
	}
	if err != nil {
		return err
	}

	env, err := newCmdEnv(cmd)
	if err != nil {
		return err
	}

	if convertFormat == formatJSON {
		return writeJSON(env.out, tone)
	}

	w := env.out
	fmt.Fprintf(w, "Hex          %s\n", swatch(tone.Hex))
	fmt.Fprintf(w, "RGB          %s\n", tone.RGB)
	fmt.Fprintf(w, "LAB          %s\n", tone.LAB)
	fmt.Fprintf(w, "Undertone    %s\n", tone.Undertone)
	fmt.Fprintf(w, "Monk scale   %d/10%s\n", tone.MonkScale, colour.MonkBadge(tone))
	fmt.Fprintf(w, "Fitzpatrick  %d/6\n", tone.FitzpatrickScale)
	return nil
}
