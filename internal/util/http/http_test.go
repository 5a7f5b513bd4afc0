package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/shade/internal/security"
)

func TestFetch(t *testing.T) {
	modified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/catalog.json":
			if !strings.HasPrefix(r.Header.Get("User-Agent"), "shade/") {
				http.Error(w, "missing user agent", http.StatusBadRequest)
				return
			}
			if since, err := http.ParseTime(r.Header.Get("If-Modified-Since")); err == nil && !modified.After(since) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			_, _ = w.Write([]byte(`{"products":[]}`))
		case "/large":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		data, err := Fetch(ctx, srv.URL+"/catalog.json", FetchOptions{})
		if err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
		if string(data) != `{"products":[]}` {
			t.Errorf("Fetch() = %q", data)
		}
	})

	t.Run("not modified", func(t *testing.T) {
		_, err := Fetch(ctx, srv.URL+"/catalog.json", FetchOptions{IfModifiedSince: modified.Add(time.Hour)})
		if !errors.Is(err, ErrNotModified) {
			t.Errorf("Fetch() error = %v, want ErrNotModified", err)
		}
	})

	t.Run("modified since", func(t *testing.T) {
		if _, err := Fetch(ctx, srv.URL+"/catalog.json", FetchOptions{IfModifiedSince: modified.Add(-time.Hour)}); err != nil {
			t.Errorf("Fetch() error: %v", err)
		}
	})

	t.Run("status error", func(t *testing.T) {
		_, err := Fetch(ctx, srv.URL+"/missing", FetchOptions{})
		var se *StatusError
		if !errors.As(err, &se) || se.Code != http.StatusNotFound {
			t.Errorf("Fetch() error = %v, want 404 StatusError", err)
		}
	})

	t.Run("size limit", func(t *testing.T) {
		_, err := Fetch(ctx, srv.URL+"/large", FetchOptions{MaxBytes: 16})
		if !errors.Is(err, security.ErrSizeLimit) {
			t.Errorf("Fetch() error = %v, want ErrSizeLimit", err)
		}
	})
}
