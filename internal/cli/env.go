package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/jmylchreest/shade/internal/analysis"
	"github.com/jmylchreest/shade/internal/catalog"
	"github.com/jmylchreest/shade/internal/colour"
	"github.com/jmylchreest/shade/internal/config"
	"github.com/jmylchreest/shade/internal/face"
	imgutil "github.com/jmylchreest/shade/internal/image"
	"github.com/spf13/cobra"
)

// Output formats shared by the commands.
const (
	formatTable = "table"
	formatJSON  = "json"
)

// cmdEnv carries what a command needs once flags are parsed.
type cmdEnv struct {
	cfg    *config.Config
	logger hclog.Logger
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	quiet  bool
}

// newCmdEnv loads configuration and builds the logger for cmd.
func newCmdEnv(cmd *cobra.Command) (*cmdEnv, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	level := hclog.Warn
	switch {
	case quiet:
		level = hclog.Off
	case verbose:
		level = hclog.Debug
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "shade",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})

	cfg, err := config.Load(globalConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if f, ok := cmd.OutOrStdout().(*os.File); !ok || !colour.SupportsANSIColours(f) {
		colour.DisableColourOutput = true
	}

	return &cmdEnv{
		cfg:    cfg,
		logger: logger,
		in:     cmd.InOrStdin(),
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		quiet:  quiet,
	}, nil
}

// catalog loads the configured catalog, or the built-in sample when no
// path is set.
func (r *cmdEnv) catalog(ctx context.Context) (*catalog.Catalog, error) {
	if r.cfg.Catalog.Path == "" {
		r.logger.Debug("using built-in sample catalog")
		return catalog.Sample()
	}

	r.logger.Debug("loading catalog", "source", r.cfg.Catalog.Path)
	cat, err := catalog.Load(ctx, r.cfg.Catalog.Path, r.cfg.CatalogLoadOptions())
	if err != nil {
		return nil, err
	}
	r.logger.Debug("catalog loaded", "products", len(cat.Products), "shades", cat.ShadeCount())
	return cat, nil
}

// detector builds the configured face detector.
func (r *cmdEnv) detector(ctx context.Context) (face.Detector, error) {
	switch r.cfg.Face.Detector {
	case config.DetectorGemini:
		return face.NewGeminiDetector(ctx, face.GeminiOptions{
			APIKey:  r.cfg.Face.GeminiAPIKey,
			Backend: r.cfg.Face.GeminiBackend,
			Model:   r.cfg.Face.GeminiModel,
		}, r.logger)
	case config.DetectorCentre, "":
		return face.NewCentreDetector(), nil
	default:
		return nil, fmt.Errorf("unknown face detector: %q", r.cfg.Face.Detector)
	}
}

// loader returns a photo loader for local paths, URLs and stdin.
func (r *cmdEnv) loader() imgutil.Loader {
	l := imgutil.NewSmartLoader()
	l.AllowInsecure = r.cfg.Image.AllowInsecure
	l.FetchOptions = r.cfg.FetchOptions()
	l.Stdin = r.in
	return l
}

// analyser wires the detector and catalog into an analysis pipeline.
func (r *cmdEnv) analyser(ctx context.Context) (*analysis.Analyser, error) {
	cat, err := r.catalog(ctx)
	if err != nil {
		return nil, err
	}
	det, err := r.detector(ctx)
	if err != nil {
		return nil, err
	}
	return r.newAnalyser(det, cat), nil
}

// toneAnalyser returns a pipeline for matching known colours. It never
// detects faces, so the configured detector is not built.
func (r *cmdEnv) toneAnalyser(ctx context.Context) (*analysis.Analyser, error) {
	cat, err := r.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return r.newAnalyser(face.NewCentreDetector(), cat), nil
}

func (r *cmdEnv) newAnalyser(det face.Detector, cat *catalog.Catalog) *analysis.Analyser {
	return analysis.New(det, cat, r.cfg.AnalysisOptions(), r.logger)
}

// infof writes progress text to stderr unless --quiet is set.
func (r *cmdEnv) infof(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.errOut, format, args...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (valid: table, json)", format)
	}
}

// swatch renders hex with a colour block in front when the terminal
// supports it.
func swatch(hex string) string {
	rgb, err := colour.ParseHex(hex)
	if err != nil {
		return hex
	}
	return colour.FormatColourWithPreview(rgb, 2)
}
