// Package analysis runs the skin tone pipeline for a single image: face
// detection, validation, lighting assessment, skin sampling, correction and
// shade matching.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/shade/internal/catalog"
	"github.com/jmylchreest/shade/internal/colour"
	"github.com/jmylchreest/shade/internal/face"
	imgutil "github.com/jmylchreest/shade/internal/image"
	"github.com/jmylchreest/shade/internal/match"
	"github.com/jmylchreest/shade/internal/skin"
)

// ErrUnsuitableFace is returned when a face was found but failed validation.
var ErrUnsuitableFace = errors.New("face not suitable for analysis")

// Confidence bounds for an analysis.
const (
	MinConfidence = 0.5
	MaxConfidence = 0.95
)

// Options configures an Analyser.
type Options struct {
	// Sampler extracts the skin colour. Nil uses skin.NewSampler().
	Sampler *skin.Sampler

	// Matching configures shade matching.
	Matching match.Options

	// MaxWidth and MaxHeight bound the image before analysis. Zero uses
	// the image package defaults.
	MaxWidth  int
	MaxHeight int

	// SkipValidation analyses faces that fail the size and confidence checks.
	SkipValidation bool

	// SkipCorrection disables lighting correction.
	SkipCorrection bool
}

// DefaultOptions returns the standard analysis options.
func DefaultOptions() Options {
	return Options{
		Sampler:   skin.NewSampler(),
		Matching:  match.DefaultOptions(),
		MaxWidth:  imgutil.DefaultMaxWidth,
		MaxHeight: imgutil.DefaultMaxHeight,
	}
}

// Result is the outcome of analysing one image. It is never modified after
// Analyse returns.
type Result struct {
	ID              string                `json:"analysisId"`
	Timestamp       time.Time             `json:"timestamp"`
	Source          string                `json:"source,omitempty"`
	Confidence      float64               `json:"confidence"`
	SkinTone        skin.Result           `json:"skinTone"`
	Lighting        skin.Lighting         `json:"lighting"`
	Face            *face.Detection       `json:"faceDetection"`
	Validation      face.Validation       `json:"validation"`
	Matches         match.Report          `json:"matches"`
	Recommendations match.Recommendations `json:"recommendations"`
	Duration        time.Duration         `json:"duration"`
}

// Analyser runs the analysis pipeline. It holds no per-analysis state and
// is safe for concurrent use as long as its detector is.
type Analyser struct {
	detector face.Detector
	catalog  *catalog.Catalog
	opts     Options
	logger   hclog.Logger
}

// New creates an Analyser. A nil catalog matches against nothing and a nil
// logger discards output.
func New(detector face.Detector, cat *catalog.Catalog, opts Options, logger hclog.Logger) *Analyser {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Sampler == nil {
		opts.Sampler = skin.NewSampler()
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = imgutil.DefaultMaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = imgutil.DefaultMaxHeight
	}
	if cat == nil {
		cat = &catalog.Catalog{}
	}

	return &Analyser{
		detector: detector,
		catalog:  cat,
		opts:     opts,
		logger:   logger.Named("analysis"),
	}
}

// Analyse runs the full pipeline on img.
func (a *Analyser) Analyse(ctx context.Context, img image.Image) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("analyse: nil image")
	}
	start := time.Now()
	id := uuid.NewString()
	log := a.logger.With("analysis_id", id)

	img = imgutil.Resize(img, a.opts.MaxWidth, a.opts.MaxHeight)

	detection, err := a.detector.Detect(ctx, img)
	if err == nil && detection == nil {
		err = face.ErrNoFace
	}
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	if detection.FaceCount > 1 {
		log.Warn("multiple faces detected, using the largest", "faces", detection.FaceCount)
	}
	log.Debug("face detected", "detector", detection.Detector, "confidence", detection.Confidence, "regions", len(detection.Regions))

	validation := face.Validate(detection)
	if !validation.Valid {
		if !a.opts.SkipValidation {
			return nil, fmt.Errorf("%w: %s", ErrUnsuitableFace, validation.Reason)
		}
		log.Warn("analysing face that failed validation", "reason", validation.Reason)
	}

	lighting := skin.AssessLighting(img, detection.Box.Rect())
	if lighting.Issue != skin.LightingOK {
		log.Info("lighting issue detected", "issue", lighting.Issue, "brightness", lighting.Brightness)
	}

	tone, err := a.opts.Sampler.Sample(img, detection.Regions)
	if err != nil {
		return nil, fmt.Errorf("skin sampling failed: %w", err)
	}
	if tone.Fallback {
		log.Warn("no skin-coloured samples, using the plain average")
	}

	skinTone := *tone
	if !a.opts.SkipCorrection {
		skinTone = skin.Correct(skinTone, lighting)
	}
	log.Debug("skin tone extracted",
		"hex", skinTone.Hex,
		"undertone", skinTone.Undertone,
		"monk", skinTone.MonkScale,
		"quality", skinTone.SampleQuality,
		"outliers", skinTone.OutliersRemoved)

	report := match.FindBestMatches(skinTone.Tone, a.catalog.Products, a.opts.Matching)
	if report.BestMatch == nil {
		log.Info("no shade within range")
	}

	result := &Result{
		ID:              id,
		Timestamp:       start.UTC(),
		Confidence:      Confidence(detection.Confidence, lighting.Quality, skinTone.SampleQuality),
		SkinTone:        skinTone,
		Lighting:        lighting,
		Face:            detection,
		Validation:      validation,
		Matches:         report,
		Recommendations: match.GenerateRecommendations(report),
		Duration:        time.Since(start),
	}

	log.Debug("analysis complete", "matches", report.Total, "duration", result.Duration)
	return result, nil
}

// AnalyseTone matches a known skin colour without face detection or
// sampling. Sample quality is reported as 1 and no lighting check runs.
func (a *Analyser) AnalyseTone(tone colour.Tone) *Result {
	start := time.Now()
	report := match.FindBestMatches(tone, a.catalog.Products, a.opts.Matching)

	return &Result{
		ID:              uuid.NewString(),
		Timestamp:       start.UTC(),
		Confidence:      Confidence(),
		SkinTone:        skin.Result{Tone: tone, SampleQuality: 1, RawQuality: 1},
		Validation:      face.Validation{Valid: true},
		Matches:         report,
		Recommendations: match.GenerateRecommendations(report),
		Duration:        time.Since(start),
	}
}

// AnalyseFile loads path with loader and analyses it.
func (a *Analyser) AnalyseFile(ctx context.Context, loader imgutil.Loader, path string) (*Result, error) {
	img, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	result, err := a.Analyse(ctx, img)
	if err != nil {
		return nil, err
	}
	result.Source = path
	return result, nil
}

// Confidence multiplies the supplied quality factors and clamps the product
// to [MinConfidence, MaxConfidence]. Non-positive or NaN factors are
// treated as absent.
func Confidence(factors ...float64) float64 {
	c := 1.0
	for _, f := range factors {
		if f > 0 {
			c *= f
		}
	}
	return math.Max(MinConfidence, math.Min(MaxConfidence, c))
}
