// Package security guards remote fetches of photos and catalogs and caps
// how much untrusted data is read.
package security

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

var (
	// ErrSizeLimit is returned by LimitedReader once its budget is spent.
	ErrSizeLimit = errors.New("size limit exceeded")

	// ErrInsecureURL is returned for URLs refused by CheckRemoteURL.
	ErrInsecureURL = errors.New("insecure URL")
)

// CheckRemoteURL reports whether rawURL may be fetched. The URL must be
// http or https and name a host. Unless allowInsecure is set, plain HTTP
// and loopback, private or link-local hosts are refused with
// ErrInsecureURL.
func CheckRemoteURL(rawURL string, allowInsecure bool) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "https" && scheme != "http" {
		return fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("URL must have a hostname")
	}
	if allowInsecure {
		return nil
	}

	if scheme != "https" {
		return fmt.Errorf("%w: only HTTPS is allowed (got %s)", ErrInsecureURL, u.Scheme)
	}
	if host := strings.ToLower(u.Hostname()); isLocalOrPrivateHost(host) {
		return fmt.Errorf("%w: local or private host %s", ErrInsecureURL, host)
	}
	return nil
}

// LimitedReader reads at most a fixed number of bytes from an underlying
// reader. Unlike io.LimitReader it fails with ErrSizeLimit when the source
// holds more, so oversized photos and catalogs are rejected rather than
// truncated.
type LimitedReader struct {
	r         io.Reader
	limit     int64
	remaining int64
}

// NewLimitedReader returns a LimitedReader allowing maxBytes from r.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{r: r, limit: maxBytes, remaining: maxBytes}
}

// Read implements io.Reader.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		// A source that ends exactly at the limit is fine.
		var next [1]byte
		if n, err := l.r.Read(next[:]); n == 0 && err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("%w: more than %d bytes", ErrSizeLimit, l.limit)
	}

	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}

func isLocalOrPrivateHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
