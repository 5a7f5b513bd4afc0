package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jmylchreest/shade/internal/analysis"
	imgutil "github.com/jmylchreest/shade/internal/image"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	// Batch command flags
	batchFormat      string
	batchConcurrency int
	batchNoProgress  bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <directory>",
	Short: "Analyse every image in a directory",
	Long: `Analyse every supported image in a directory concurrently.

A failure on one image is reported against that image and does not stop
the rest. The command exits non-zero only when every image failed or the
run was interrupted.

Examples:
  # Analyse a folder of photos with a progress bar
  shade batch ./photos

  # Eight workers, JSON output
  shade batch --concurrency 8 --format json ./photos > results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", formatTable, "output format (table, json)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "j", 0, "images analysed at once (default from config)")
	batchCmd.Flags().BoolVar(&batchNoProgress, "no-progress", false, "disable the progress bar")
}

// runBatch executes the batch command.
func runBatch(cmd *cobra.Command, args []string) error {
	if err := validateFormat(batchFormat); err != nil {
		return err
	}

	env, err := newCmdEnv(cmd)
	if err != nil {
		return err
	}

	paths, err := imgutil.ScanDirectory(args[0])
	if err != nil {
		return err
	}
	env.logger.Debug("found images", "dir", args[0], "count", len(paths))

	ctx := cmd.Context()
	a, err := env.analyser(ctx)
	if err != nil {
		return err
	}

	opts := analysis.BatchOptions{Concurrency: env.cfg.Batch.Concurrency}
	if batchConcurrency > 0 {
		opts.Concurrency = batchConcurrency
	}

	if !batchNoProgress && !env.quiet {
		bar := progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(env.errOut),
			progressbar.OptionSetDescription("Analysing images"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("img"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(env.errOut) }),
		)
		opts.Progress = func(analysis.BatchItem) {
			_ = bar.Add(1)
		}
	}

	items, runErr := a.AnalyseBatch(ctx, env.loader(), paths, opts)

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
		}
	}

	if batchFormat == formatJSON {
		if err := writeJSON(env.out, items); err != nil {
			return err
		}
	} else {
		printBatch(env.out, args[0], items)
	}

	env.infof("%d analysed, %d failed\n", len(items)-failed, failed)

	if runErr != nil {
		return fmt.Errorf("batch interrupted: %w", runErr)
	}
	if failed == len(items) {
		return errors.New("every image failed analysis")
	}
	return nil
}

// printBatch writes one row per image.
func printBatch(w io.Writer, dir string, items []analysis.BatchItem) {
	t := NewTable([]string{"Image", "Skin", "Undertone", "Monk", "Best match", "Confidence"})
	t.SetColumnAlign(3, AlignRight)
	t.SetColumnAlign(5, AlignRight)
	t.SetColumnMaxWidth(4, 36)

	for _, item := range items {
		name := item.Path
		if rel, err := filepath.Rel(dir, item.Path); err == nil {
			name = rel
		}

		if item.Result == nil {
			msg := item.Error
			if item.Err != nil {
				msg = analysis.UserMessage(item.Err)
			}
			t.AddRow([]string{name, "-", "-", "-", msg, "-"})
			continue
		}

		res := item.Result
		best := "none in range"
		if b := res.Matches.BestMatch; b != nil {
			best = fmt.Sprintf("%s %s (%.0f%%)", b.ProductName, b.ShadeName, b.MatchScore*100)
		}
		t.AddRow([]string{
			name,
			swatch(res.SkinTone.Hex),
			string(res.SkinTone.Undertone),
			fmt.Sprintf("%d", res.SkinTone.MonkScale),
			best,
			fmt.Sprintf("%.0f%%", res.Confidence*100),
		})
	}

	fmt.Fprint(w, t.Render())
}
