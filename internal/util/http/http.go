// Package http fetches remote photos and catalogs.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jmylchreest/shade/internal/security"
	"github.com/jmylchreest/shade/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBytes caps the size of a fetched body.
	DefaultMaxBytes = 50 * 1024 * 1024
)

// ErrNotModified is returned when a conditional fetch finds the remote
// unchanged since FetchOptions.IfModifiedSince.
var ErrNotModified = errors.New("not modified")

// StatusError is returned for responses other than 200 and 304.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return "HTTP " + e.Status
}

// FetchOptions configures HTTP fetch behavior.
type FetchOptions struct {
	// Timeout specifies the HTTP request timeout.
	// If zero, DefaultTimeout is used.
	Timeout time.Duration

	// MaxBytes limits the response body size. If zero, DefaultMaxBytes is used.
	MaxBytes int64

	// IfModifiedSince makes the request conditional. A 304 response yields
	// ErrNotModified.
	IfModifiedSince time.Time

	// Headers specifies additional HTTP headers to send with the request.
	Headers map[string]string
}

// Fetch retrieves the body of url. Bodies larger than MaxBytes fail with
// security.ErrSizeLimit.
func Fetch(ctx context.Context, url string, opts FetchOptions) ([]byte, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	maxBytes := opts.MaxBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if !opts.IfModifiedSince.IsZero() {
		req.Header.Set("If-Modified-Since", opts.IfModifiedSince.UTC().Format(http.TimeFormat))
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		return nil, ErrNotModified
	default:
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(security.NewLimitedReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}
