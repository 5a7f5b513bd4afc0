package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/shade/internal/match"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.Matching != match.DefaultOptions() {
		t.Errorf("Matching = %+v, want defaults", cfg.Matching)
	}
	if cfg.Sampling.SamplesPerRegion != 25 || cfg.Sampling.OutlierThreshold != 2.5 || cfg.Sampling.MinQuality != 0.7 {
		t.Errorf("Sampling = %+v", cfg.Sampling)
	}
	if cfg.Face.Detector != DetectorCentre {
		t.Errorf("Detector = %q, want centre", cfg.Face.Detector)
	}

	opts := cfg.AnalysisOptions()
	if opts.Sampler.SamplesPerRegion != 25 || opts.MaxWidth != 1920 || opts.MaxHeight != 1080 {
		t.Errorf("AnalysisOptions() = %+v", opts)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
matching:
  max_delta_e: 8
  max_results: 0
face:
  detector: gemini
  gemini_model: gemini-2.5-pro
image:
  timeout: 30s
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.Matching.MaxDeltaE != 8 || cfg.Matching.MaxResults != 0 {
		t.Errorf("Matching = %+v", cfg.Matching)
	}
	if cfg.Matching.TopPerCategory != 3 || cfg.Matching.ColourWeight != 0.7 {
		t.Errorf("unset matching fields lost their defaults: %+v", cfg.Matching)
	}
	if cfg.Face.Detector != DetectorGemini || cfg.Face.GeminiModel != "gemini-2.5-pro" {
		t.Errorf("Face = %+v", cfg.Face)
	}
	if cfg.Image.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Image.Timeout)
	}

	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile() of missing file expected error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SHADE_CATALOG", "/tmp/catalog.json")
	t.Setenv("SHADE_MAX_DELTA_E", "12.5")
	t.Setenv("SHADE_CONCURRENCY", "8")
	t.Setenv("SHADE_ALLOW_INSECURE", "true")
	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("SHADE_GEMINI_API_KEY", "shade")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}

	if cfg.Catalog.Path != "/tmp/catalog.json" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
	if cfg.Matching.MaxDeltaE != 12.5 {
		t.Errorf("MaxDeltaE = %v, want 12.5", cfg.Matching.MaxDeltaE)
	}
	if cfg.Batch.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Batch.Concurrency)
	}
	if !cfg.Image.AllowInsecure {
		t.Error("AllowInsecure = false, want true")
	}
	if cfg.Face.GeminiAPIKey != "shade" {
		t.Errorf("GeminiAPIKey = %q, want the SHADE_ value", cfg.Face.GeminiAPIKey)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("SHADE_MAX_RESULTS", "lots")
	t.Setenv("SHADE_TIMEOUT", "soon")

	err := Default().ApplyEnv()
	if err == nil {
		t.Fatal("ApplyEnv() expected error")
	}
	for _, key := range []string{"SHADE_MAX_RESULTS", "SHADE_TIMEOUT"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "weights do not sum to 1", modify: func(c *Config) { c.Matching.ColourWeight = 0.5 }, wantErr: "sum to 1"},
		{name: "negative weight", modify: func(c *Config) { c.Matching.ColourWeight = 1.3; c.Matching.UndertoneWeight = -0.3 }, wantErr: "negative"},
		{name: "zero max delta e", modify: func(c *Config) { c.Matching.MaxDeltaE = 0 }, wantErr: "max_delta_e"},
		{name: "zero top per category", modify: func(c *Config) { c.Matching.TopPerCategory = 0 }, wantErr: "top_per_category"},
		{name: "unknown detector", modify: func(c *Config) { c.Face.Detector = "opencv" }, wantErr: "face.detector"},
		{name: "unknown backend", modify: func(c *Config) { c.Face.GeminiBackend = "local" }, wantErr: "gemini_backend"},
		{name: "min quality above 1", modify: func(c *Config) { c.Sampling.MinQuality = 1.5 }, wantErr: "min_quality"},
		{name: "zero concurrency", modify: func(c *Config) { c.Batch.Concurrency = 0 }, wantErr: "concurrency"},
		{name: "zero width", modify: func(c *Config) { c.Image.MaxWidth = 0 }, wantErr: "max_width"},
		{name: "NaN max delta e", modify: func(c *Config) { c.Matching.MaxDeltaE = math.NaN() }, wantErr: "max_delta_e"},
		{name: "infinite max delta e", modify: func(c *Config) { c.Matching.MaxDeltaE = math.Inf(1) }, wantErr: "max_delta_e"},
		{name: "NaN colour weight", modify: func(c *Config) { c.Matching.ColourWeight = math.NaN() }, wantErr: "sum to 1"},
		{name: "NaN min quality", modify: func(c *Config) { c.Sampling.MinQuality = math.NaN() }, wantErr: "min_quality"},
		{name: "NaN outlier threshold", modify: func(c *Config) { c.Sampling.OutlierThreshold = math.NaN() }, wantErr: "outlier_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsNaNFromEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	tests := []struct {
		key     string
		wantErr string
	}{
		{key: "SHADE_MAX_DELTA_E", wantErr: "max_delta_e"},
		{key: "SHADE_MIN_QUALITY", wantErr: "min_quality"},
		{key: "SHADE_OUTLIER_THRESHOLD", wantErr: "outlier_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, "NaN")
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() with %s=NaN error = %v, want mention of %q", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(dir)

	envFile := "SHADE_TOP_PER_CATEGORY=5\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(envFile), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("SHADE_TOP_PER_CATEGORY") })

	cfgPath := filepath.Join(dir, "shade", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cfgPath, []byte("batch:\n  concurrency: 2\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Matching.TopPerCategory != 5 {
		t.Errorf("TopPerCategory = %d, want 5 from .env", cfg.Matching.TopPerCategory)
	}
	if cfg.Batch.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2 from the default config file", cfg.Batch.Concurrency)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() with missing explicit path expected error")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("matching:\n  max_delta_e: -1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load() with invalid settings expected error")
	}
}

func TestCatalogLoadOptions(t *testing.T) {
	cfg := Default()
	cfg.Catalog.CacheDir = "/var/cache/shade"
	cfg.Image.AllowInsecure = true

	opts := cfg.CatalogLoadOptions()
	if !opts.AllowInsecure {
		t.Error("AllowInsecure not carried over")
	}
	if opts.Cache == nil {
		t.Fatal("Cache = nil, want enabled by default")
	}
	if opts.Cache.Dir != "/var/cache/shade" || opts.Cache.TTL != DefaultCatalogCacheTTL {
		t.Errorf("Cache = %+v", *opts.Cache)
	}

	t.Setenv("SHADE_CATALOG_NO_CACHE", "1")
	t.Setenv("SHADE_CATALOG_CACHE_TTL", "2h")
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}
	if cfg.Catalog.CacheTTL != 2*time.Hour {
		t.Errorf("CacheTTL = %v, want 2h", cfg.Catalog.CacheTTL)
	}
	if cfg.CatalogLoadOptions().Cache != nil {
		t.Error("Cache set with SHADE_CATALOG_NO_CACHE")
	}
}
