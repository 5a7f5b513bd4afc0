// Package image loads face photos and prepares them for analysis.
package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/shade/internal/security"
	httputil "github.com/jmylchreest/shade/internal/util/http"
)

// StdinPath is the photo path that reads from standard input.
const StdinPath = "-"

// ErrNoImages is returned by ScanDirectory when a directory holds no photos.
var ErrNoImages = errors.New("no supported image files found")

// Extensions lists the photo file extensions recognised when scanning a
// directory.
var Extensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

// Loader loads a photo for analysis.
type Loader interface {
	// Load loads an image from the given path or URL.
	Load(ctx context.Context, path string) (image.Image, error)
}

// FileLoader loads photos from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load decodes the photo at path.
// Supported formats: JPEG, PNG, GIF, WebP, BMP.
func (l *FileLoader) Load(_ context.Context, path string) (image.Image, error) {
	f, err := openPhoto(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decode(f, path)
}

// ReadHeader reads the header of the photo at path and returns its format and
// dimensions without decoding pixels.
func ReadHeader(path string) (format string, width, height int, err error) {
	f, err := openPhoto(path)
	if err != nil {
		return "", 0, 0, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", 0, 0, fmt.Errorf("unsupported or invalid photo %s: %w", path, err)
	}
	return format, cfg.Width, cfg.Height, nil
}

// IsURL reports whether path is an HTTP(S) URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// ScanDirectory returns the photos directly inside dir in name order.
// Subdirectories are skipped; symlinks to files are followed.
func ScanDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var photos []string
	for _, entry := range entries {
		if !slices.Contains(Extensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}

		fullPath := filepath.Join(dir, entry.Name())
		info, err := os.Stat(fullPath)
		if err != nil || info.IsDir() {
			continue
		}
		photos = append(photos, fullPath)
	}

	if len(photos) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, dir)
	}

	sort.Strings(photos)
	return photos, nil
}

// SmartLoader loads photos from local files, HTTP(S) URLs and standard
// input.
type SmartLoader struct {
	files *FileLoader

	// AllowInsecure permits plain HTTP and private hosts for remote photos.
	AllowInsecure bool

	// FetchOptions configures remote fetches. FetchOptions.MaxBytes also
	// caps photos read from Stdin.
	FetchOptions httputil.FetchOptions

	// Stdin is read for StdinPath. If nil, os.Stdin is used.
	Stdin io.Reader
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader() *SmartLoader {
	return &SmartLoader{files: NewFileLoader()}
}

// Load loads a photo from a local path, an HTTP(S) URL or, for StdinPath,
// standard input.
func (l *SmartLoader) Load(ctx context.Context, path string) (image.Image, error) {
	switch {
	case path == StdinPath:
		return l.loadStdin()
	case IsURL(path):
		return l.loadURL(ctx, path)
	default:
		return l.files.Load(ctx, path)
	}
}

func (l *SmartLoader) loadStdin() (image.Image, error) {
	r := l.Stdin
	if r == nil {
		r = os.Stdin
	}
	maxBytes := l.FetchOptions.MaxBytes
	if maxBytes == 0 {
		maxBytes = httputil.DefaultMaxBytes
	}
	data, err := io.ReadAll(security.NewLimitedReader(r, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo from stdin: %w", err)
	}
	return decode(bytes.NewReader(data), "stdin")
}

func (l *SmartLoader) loadURL(ctx context.Context, url string) (image.Image, error) {
	if err := security.CheckRemoteURL(url, l.AllowInsecure); err != nil {
		return nil, fmt.Errorf("refusing to fetch photo: %w", err)
	}

	data, err := httputil.Fetch(ctx, url, l.FetchOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo from URL: %w", err)
	}
	return decode(bytes.NewReader(data), url)
}

// openPhoto opens path for reading. Missing files wrap os.ErrNotExist.
func openPhoto(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("image file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	f, err := os.Open(path) // #nosec G304 - User-specified photo path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	return f, nil
}

func decode(r io.Reader, source string) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo %s: %w", source, err)
	}
	return img, nil
}
