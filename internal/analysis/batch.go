package analysis

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	imgutil "github.com/jmylchreest/shade/internal/image"
)

// DefaultConcurrency is the default number of images analysed at once.
const DefaultConcurrency = 4

// BatchItem is the outcome for one image of a batch.
type BatchItem struct {
	Path   string  `json:"path"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
	Error  string  `json:"error,omitempty"`
}

// BatchOptions configures AnalyseBatch.
type BatchOptions struct {
	// Concurrency bounds the number of images in flight. Zero uses
	// DefaultConcurrency.
	Concurrency int

	// Progress, when set, is called after each image completes. Calls are
	// serialised.
	Progress func(item BatchItem)
}

// AnalyseBatch analyses every path concurrently. A failure on one image is
// recorded in its item and does not stop the others. Items are returned in
// the order of paths. The returned error is non-nil only when ctx ends
// before every image was processed.
func (a *Analyser) AnalyseBatch(ctx context.Context, loader imgutil.Loader, paths []string, opts BatchOptions) ([]BatchItem, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	items := make([]BatchItem, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			item := BatchItem{Path: path}
			item.Result, item.Err = a.AnalyseFile(gctx, loader, path)
			if item.Err != nil {
				item.Error = item.Err.Error()
				a.logger.Debug("image failed", "path", path, "error", item.Err)
			}
			items[i] = item

			if opts.Progress != nil {
				mu.Lock()
				opts.Progress(item)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		for i := range items {
			if items[i].Path == "" {
				items[i] = BatchItem{Path: paths[i], Err: err, Error: err.Error()}
			}
		}
		return items, err
	}

	return items, nil
}
