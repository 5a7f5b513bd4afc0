// Package filecache keeps downloaded files on disk, keyed by URL, so remote
// catalogs survive restarts and outages.
package filecache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	httputil "github.com/jmylchreest/shade/internal/util/http"
)

// Options configures Fetch.
type Options struct {
	// Dir is the cache directory. If empty, DefaultDir is used.
	Dir string

	// TTL is how long a cached copy is served without refetching. Zero
	// always refetches; the cached copy is then only a fallback.
	TTL time.Duration

	// FetchOptions configures the download.
	FetchOptions httputil.FetchOptions
}

// Result is the outcome of Fetch.
type Result struct {
	Data []byte
	Path string

	// Cached is set when Data came from disk rather than the network.
	Cached bool

	// Stale is set when the download failed and an expired copy was used.
	Stale bool
}

// DefaultDir returns the default cache directory,
// $XDG_CACHE_HOME/shade/catalogs on Linux.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "shade", "catalogs"), nil
	}
	return filepath.Join(cacheDir, "shade", "catalogs"), nil
}

// Key returns the cache file name for rawURL: a hash of the full URL
// followed by the last path element, so compression and format extensions
// survive.
func Key(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	prefix := fmt.Sprintf("%x", hash[:16])

	base := ""
	if u, err := url.Parse(rawURL); err == nil {
		base = path.Base(u.Path)
	}
	if base == "" || base == "/" || base == "." || len(base) > 64 {
		return prefix
	}
	return prefix + "-" + base
}

// Fetch returns the body of rawURL, from disk when a copy younger than TTL
// exists and from the network otherwise. An expired copy is revalidated
// with If-Modified-Since and kept when the remote is unchanged. Successful
// downloads replace the cached copy. When a download fails any cached copy
// is returned instead, with Stale set.
func Fetch(ctx context.Context, rawURL string, opts Options) (Result, error) {
	dir := opts.Dir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return Result{}, err
		}
		dir = d
	}
	cachedPath := filepath.Join(dir, Key(rawURL))

	info, statErr := os.Stat(cachedPath)
	cached := statErr == nil
	if cached && opts.TTL > 0 && time.Since(info.ModTime()) < opts.TTL {
		if data, err := readCached(cachedPath); err == nil {
			return Result{Data: data, Path: cachedPath, Cached: true}, nil
		}
	}

	fetchOpts := opts.FetchOptions
	if cached {
		fetchOpts.IfModifiedSince = info.ModTime()
	}

	data, fetchErr := httputil.Fetch(ctx, rawURL, fetchOpts)
	switch {
	case fetchErr == nil:
		if err := write(dir, cachedPath, data); err != nil {
			return Result{}, err
		}
		return Result{Data: data, Path: cachedPath}, nil

	case errors.Is(fetchErr, httputil.ErrNotModified) && cached:
		data, err := readCached(cachedPath)
		if err != nil {
			return Result{}, err
		}
		now := time.Now()
		_ = os.Chtimes(cachedPath, now, now)
		return Result{Data: data, Path: cachedPath, Cached: true}, nil

	case cached && ctx.Err() == nil:
		if data, err := readCached(cachedPath); err == nil {
			return Result{Data: data, Path: cachedPath, Cached: true, Stale: true}, nil
		}
	}
	return Result{}, fetchErr
}

func readCached(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is derived from a hash inside the cache directory
	if err != nil {
		return nil, fmt.Errorf("failed to read cached copy: %w", err)
	}
	return data, nil
}

// write replaces path atomically so readers never see a partial file.
func write(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store cache file: %w", err)
	}
	return nil
}
