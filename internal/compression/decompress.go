// Package compression decompresses single-file gzip, xz and bzip2 payloads,
// such as compressed product catalogs, under a size limit.
package compression

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/shade/internal/security"
)

// DefaultMaxBytes is the default limit on decompressed output.
const DefaultMaxBytes = 100 * 1024 * 1024

// Format identifies a compression format.
type Format string

const (
	FormatNone  Format = ""
	FormatGzip  Format = "gzip"
	FormatXz    Format = "xz"
	FormatBzip2 Format = "bzip2"
)

var extensions = []struct {
	suffix string
	format Format
}{
	{".gz", FormatGzip},
	{".xz", FormatXz},
	{".bz2", FormatBzip2},
}

// Magic numbers at the start of each format.
var (
	gzipMagic  = []byte{0x1f, 0x8b}
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	bzip2Magic = []byte{'B', 'Z', 'h'}
)

// DetectFormat determines the compression format from the file name, falling
// back to the leading bytes of data when the name has no known extension.
func DetectFormat(name string, data []byte) Format {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext.suffix) {
			return ext.format
		}
	}

	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return FormatGzip
	case bytes.HasPrefix(data, xzMagic):
		return FormatXz
	case bytes.HasPrefix(data, bzip2Magic):
		return FormatBzip2
	default:
		return FormatNone
	}
}

// StripExtension removes a trailing compression extension from name.
// For example: "catalog.yaml.xz" -> "catalog.yaml".
func StripExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext.suffix) {
			return name[:len(name)-len(ext.suffix)]
		}
	}
	return name
}

// NewReader wraps r in a decompressing reader for format. FormatNone
// returns r unchanged apart from the size limit.
func NewReader(r io.Reader, format Format, maxBytes int64) (io.Reader, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	var dr io.Reader
	switch format {
	case FormatNone:
		dr = r
	case FormatGzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		dr = gzr
	case FormatXz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		dr = xzr
	case FormatBzip2:
		dr = bzip2.NewReader(r)
	default:
		return nil, fmt.Errorf("unsupported compression format: %s", format)
	}

	return security.NewLimitedReader(dr, maxBytes), nil
}

// Decompress detects the format of data from name and its content and
// returns the decompressed bytes along with name minus any compression
// extension. Uncompressed data is returned as-is.
func Decompress(data []byte, name string, maxBytes int64) ([]byte, string, error) {
	format := DetectFormat(name, data)
	if format == FormatNone {
		return data, name, nil
	}

	r, err := NewReader(bytes.NewReader(data), format, maxBytes)
	if err != nil {
		return nil, "", err
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress %s: %w", format, err)
	}

	return out, StripExtension(name), nil
}
