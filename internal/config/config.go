// Package config loads shade's settings from defaults, an optional YAML
// file, an optional .env file and SHADE_* environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/shade/internal/analysis"
	"github.com/jmylchreest/shade/internal/catalog"
	imgutil "github.com/jmylchreest/shade/internal/image"
	"github.com/jmylchreest/shade/internal/match"
	"github.com/jmylchreest/shade/internal/skin"
	"github.com/jmylchreest/shade/internal/util/filecache"
	httputil "github.com/jmylchreest/shade/internal/util/http"
)

// Supported face detectors.
const (
	DetectorCentre = "centre"
	DetectorGemini = "gemini"
)

// Config holds every tunable setting.
type Config struct {
	Sampling SamplingConfig `yaml:"sampling"`
	Matching match.Options  `yaml:"matching"`
	Face     FaceConfig     `yaml:"face"`
	Image    ImageConfig    `yaml:"image"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Batch    BatchConfig    `yaml:"batch"`
}

// SamplingConfig configures skin sampling.
type SamplingConfig struct {
	SamplesPerRegion int     `yaml:"samples_per_region"`
	OutlierThreshold float64 `yaml:"outlier_threshold"`
	MinQuality       float64 `yaml:"min_quality"`
}

// FaceConfig selects and configures the face detector.
type FaceConfig struct {
	Detector       string `yaml:"detector"`
	GeminiAPIKey   string `yaml:"gemini_api_key"`
	GeminiBackend  string `yaml:"gemini_backend"`
	GeminiModel    string `yaml:"gemini_model"`
	SkipValidation bool   `yaml:"skip_validation"`
}

// ImageConfig configures image loading.
type ImageConfig struct {
	MaxWidth      int           `yaml:"max_width"`
	MaxHeight     int           `yaml:"max_height"`
	AllowInsecure bool          `yaml:"allow_insecure"`
	Timeout       time.Duration `yaml:"timeout"`
}

// CatalogConfig locates the product catalog. An empty path selects the
// built-in sample catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`

	// CacheDir holds downloaded remote catalogs. Default:
	// $XDG_CACHE_HOME/shade/catalogs.
	CacheDir string `yaml:"cache_dir"`

	// CacheTTL is how long a downloaded catalog is reused before it is
	// fetched again.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// NoCache disables the remote catalog cache.
	NoCache bool `yaml:"no_cache"`
}

// DefaultCatalogCacheTTL is the default lifetime of a cached remote catalog.
const DefaultCatalogCacheTTL = 24 * time.Hour

// BatchConfig configures batch analysis.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Default returns the built-in configuration.
func Default() *Config {
	sampler := skin.NewSampler()
	return &Config{
		Sampling: SamplingConfig{
			SamplesPerRegion: sampler.SamplesPerRegion,
			OutlierThreshold: sampler.OutlierThreshold,
			MinQuality:       sampler.MinQuality,
		},
		Matching: match.DefaultOptions(),
		Face: FaceConfig{
			Detector: DetectorCentre,
		},
		Image: ImageConfig{
			MaxWidth:  imgutil.DefaultMaxWidth,
			MaxHeight: imgutil.DefaultMaxHeight,
			Timeout:   httputil.DefaultTimeout,
		},
		Catalog: CatalogConfig{
			CacheTTL: DefaultCatalogCacheTTL,
		},
		Batch: BatchConfig{
			Concurrency: analysis.DefaultConcurrency,
		},
	}
}

// DefaultPath returns the per-user config file location,
// $XDG_CONFIG_HOME/shade/config.yaml on Linux.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "shade", "config.yaml")
}

// Load builds the configuration. An explicit path must exist; when path is
// empty the default location is read if present. A .env file in the working
// directory is loaded into the environment before SHADE_* overrides are
// applied. Variables already set are not overwritten by .env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	} else if def := DefaultPath(); def != "" {
		if _, err := os.Stat(def); err == nil {
			if err := cfg.LoadFile(def); err != nil {
				return nil, err
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile merges a YAML file over the current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 - config path is user-provided
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides values from SHADE_* environment variables. The Gemini
// API key also falls back to GEMINI_API_KEY and GOOGLE_API_KEY.
func (c *Config) ApplyEnv() error {
	var errs []error

	envString("SHADE_CATALOG", &c.Catalog.Path)
	envString("SHADE_CATALOG_CACHE_DIR", &c.Catalog.CacheDir)
	envString("SHADE_DETECTOR", &c.Face.Detector)
	envString("SHADE_GEMINI_BACKEND", &c.Face.GeminiBackend)
	envString("SHADE_GEMINI_MODEL", &c.Face.GeminiModel)
	for _, key := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "SHADE_GEMINI_API_KEY"} {
		envString(key, &c.Face.GeminiAPIKey)
	}

	errs = append(errs,
		envInt("SHADE_SAMPLES_PER_REGION", &c.Sampling.SamplesPerRegion),
		envFloat("SHADE_OUTLIER_THRESHOLD", &c.Sampling.OutlierThreshold),
		envFloat("SHADE_MIN_QUALITY", &c.Sampling.MinQuality),
		envFloat("SHADE_MAX_DELTA_E", &c.Matching.MaxDeltaE),
		envInt("SHADE_TOP_PER_CATEGORY", &c.Matching.TopPerCategory),
		envInt("SHADE_MAX_RESULTS", &c.Matching.MaxResults),
		envInt("SHADE_MAX_WIDTH", &c.Image.MaxWidth),
		envInt("SHADE_MAX_HEIGHT", &c.Image.MaxHeight),
		envBool("SHADE_ALLOW_INSECURE", &c.Image.AllowInsecure),
		envDuration("SHADE_TIMEOUT", &c.Image.Timeout),
		envDuration("SHADE_CATALOG_CACHE_TTL", &c.Catalog.CacheTTL),
		envBool("SHADE_CATALOG_NO_CACHE", &c.Catalog.NoCache),
		envInt("SHADE_CONCURRENCY", &c.Batch.Concurrency),
	)

	return errors.Join(errs...)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if c.Sampling.SamplesPerRegion < 1 {
		errs = append(errs, fmt.Errorf("sampling.samples_per_region must be at least 1"))
	}
	if !(c.Sampling.OutlierThreshold > 0) || math.IsInf(c.Sampling.OutlierThreshold, 1) {
		errs = append(errs, fmt.Errorf("sampling.outlier_threshold must be a positive finite number"))
	}
	if !(c.Sampling.MinQuality >= 0 && c.Sampling.MinQuality <= 1) {
		errs = append(errs, fmt.Errorf("sampling.min_quality must be between 0 and 1"))
	}

	m := c.Matching
	if !(m.MaxDeltaE > 0) || math.IsInf(m.MaxDeltaE, 1) {
		errs = append(errs, fmt.Errorf("matching.max_delta_e must be a positive finite number"))
	}
	if !(m.ColourWeight >= 0) || !(m.UndertoneWeight >= 0) {
		errs = append(errs, fmt.Errorf("matching weights must not be negative or NaN"))
	}
	if !(math.Abs(m.ColourWeight+m.UndertoneWeight-1) <= 1e-6) {
		errs = append(errs, fmt.Errorf("matching.colour_weight and matching.undertone_weight must sum to 1 (got %g)", m.ColourWeight+m.UndertoneWeight))
	}
	if m.TopPerCategory < 1 {
		errs = append(errs, fmt.Errorf("matching.top_per_category must be at least 1"))
	}
	if m.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("matching.max_results must not be negative"))
	}

	switch c.Face.Detector {
	case DetectorCentre, DetectorGemini:
	default:
		errs = append(errs, fmt.Errorf("face.detector must be %q or %q (got %q)", DetectorCentre, DetectorGemini, c.Face.Detector))
	}
	switch c.Face.GeminiBackend {
	case "", "gemini-api", "vertex-ai":
	default:
		errs = append(errs, fmt.Errorf("face.gemini_backend must be gemini-api or vertex-ai (got %q)", c.Face.GeminiBackend))
	}

	if c.Image.MaxWidth < 1 || c.Image.MaxHeight < 1 {
		errs = append(errs, fmt.Errorf("image.max_width and image.max_height must be positive"))
	}
	if c.Image.Timeout < 0 {
		errs = append(errs, fmt.Errorf("image.timeout must not be negative"))
	}
	if c.Catalog.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("catalog.cache_ttl must not be negative"))
	}
	if c.Batch.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("batch.concurrency must be at least 1"))
	}

	return errors.Join(errs...)
}

// Sampler returns a skin sampler configured from c.
func (c *Config) Sampler() *skin.Sampler {
	return &skin.Sampler{
		SamplesPerRegion: c.Sampling.SamplesPerRegion,
		OutlierThreshold: c.Sampling.OutlierThreshold,
		MinQuality:       c.Sampling.MinQuality,
	}
}

// AnalysisOptions returns pipeline options configured from c.
func (c *Config) AnalysisOptions() analysis.Options {
	return analysis.Options{
		Sampler:        c.Sampler(),
		Matching:       c.Matching,
		MaxWidth:       c.Image.MaxWidth,
		MaxHeight:      c.Image.MaxHeight,
		SkipValidation: c.Face.SkipValidation,
	}
}

// CatalogLoadOptions returns catalog loading options configured from c.
func (c *Config) CatalogLoadOptions() catalog.LoadOptions {
	opts := catalog.LoadOptions{
		AllowInsecure: c.Image.AllowInsecure,
		FetchOptions:  c.FetchOptions(),
	}
	if !c.Catalog.NoCache {
		opts.Cache = &filecache.Options{Dir: c.Catalog.CacheDir, TTL: c.Catalog.CacheTTL}
	}
	return opts
}

// FetchOptions returns HTTP options for remote images and catalogs.
func (c *Config) FetchOptions() httputil.FetchOptions {
	return httputil.FetchOptions{Timeout: c.Image.Timeout}
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", key, v)
	}
	*dst = f
	return nil
}

func envBool(key string, dst *bool) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", key, v)
	}
	*dst = d
	return nil
}
