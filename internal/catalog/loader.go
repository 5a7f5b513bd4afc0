package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/shade/internal/compression"
	"github.com/jmylchreest/shade/internal/security"
	"github.com/jmylchreest/shade/internal/util/filecache"
	httputil "github.com/jmylchreest/shade/internal/util/http"
)

// Format identifies a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// LoadOptions configures Load.
type LoadOptions struct {
	// AllowInsecure permits plain HTTP and private hosts for remote catalogs.
	AllowInsecure bool

	// MaxBytes caps the decompressed catalog size. Zero uses
	// compression.DefaultMaxBytes.
	MaxBytes int64

	// FetchOptions configures remote fetches.
	FetchOptions httputil.FetchOptions

	// Cache, when set, keeps remote catalogs on disk. A cached copy is
	// used when the remote is unreachable.
	Cache *filecache.Options
}

// Load reads a catalog from a local path or an HTTP(S) URL. Files may be
// JSON or YAML, optionally compressed with gzip, xz or bzip2.
func Load(ctx context.Context, src string, opts LoadOptions) (*Catalog, error) {
	var (
		data []byte
		name = src
		err  error
	)

	if isURL(src) {
		if err := security.CheckRemoteURL(src, opts.AllowInsecure); err != nil {
			return nil, fmt.Errorf("refusing to fetch catalog: %w", err)
		}
		data, err = fetch(ctx, src, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch catalog: %w", err)
		}
		if u, perr := url.Parse(src); perr == nil {
			name = path.Base(u.Path)
		}
	} else {
		data, err = os.ReadFile(src) // #nosec G304 - catalog path is user-provided
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		name = filepath.Base(src)
	}

	data, name, err = compression.Decompress(data, name, opts.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress catalog: %w", err)
	}

	cat, err := Parse(data, DetectFormat(name, data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", src, err)
	}

	return cat, nil
}

// DetectFormat picks JSON or YAML from the file extension, falling back to
// the first non-space byte of data.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a catalog. The document may be an object with a products
// key or a bare list of products. Shades are linked to their products and
// IDs are checked for uniqueness.
func Parse(data []byte, format Format) (*Catalog, error) {
	cat := &Catalog{}

	switch format {
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &cat.Products); err != nil {
				return nil, err
			}
		} else if err := json.Unmarshal(trimmed, cat); err != nil {
			return nil, err
		}
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, err
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			if err := node.Content[0].Decode(&cat.Products); err != nil {
				return nil, err
			}
		} else if len(node.Content) > 0 {
			if err := node.Content[0].Decode(cat); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format: %q", format)
	}

	cat.Link()
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	return cat, nil
}

func fetch(ctx context.Context, src string, opts LoadOptions) ([]byte, error) {
	if opts.Cache == nil {
		return httputil.Fetch(ctx, src, opts.FetchOptions)
	}

	cacheOpts := *opts.Cache
	cacheOpts.FetchOptions = opts.FetchOptions
	res, err := filecache.Fetch(ctx, src, cacheOpts)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
