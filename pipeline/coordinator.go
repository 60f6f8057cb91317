// Package pipeline drives response sampling over a full image corpus
// with a bounded worker pool and persists one batch artifact per image.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/time/rate"

	"github.com/visionkit/bovw/blobstore"
	"github.com/visionkit/bovw/filterbank"
	"github.com/visionkit/bovw/manifest"
	"github.com/visionkit/bovw/sampler"
)

// LoadFunc loads one corpus image by its manifest path.
type LoadFunc func(ctx context.Context, path string) (*filterbank.Image, error)

// FailurePolicy decides what a single failed image does to the run.
type FailurePolicy int

const (
	// FailFast stops dispatching on the first failure, lets in-flight
	// items finish, and fails the run.
	FailFast FailurePolicy = iota
	// ContinueOnError records the failure, leaves the index out of the
	// completed set, and keeps going.
	ContinueOnError
)

// ItemError reports the failure of a single corpus item.
type ItemError struct {
	Index int
	Path  string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Result summarizes a sampling run.
type Result struct {
	// Completed holds the indices whose batch artifact was written.
	Completed *roaring.Bitmap
	// TotalSamples is the final progress counter value.
	TotalSamples int64
	// Failures lists per-item errors. Under FailFast the first entry
	// triggered the abort; in-flight items cancelled by it may add more.
	Failures []*ItemError
}

// Config holds coordinator parameters. The zero value picks the
// defaults below.
type Config struct {
	// Alpha is the number of samples drawn per image. Default 50.
	Alpha int
	// Workers is the pool size. Default 2.
	Workers int
	// Seed derives each image's sampling stream. Batches depend only
	// on (Seed, index), never on worker count or completion order.
	Seed int64
	// Compression selects the batch artifact compression.
	Compression sampler.Compression
	// Policy decides how item failures affect the run. Default FailFast.
	Policy FailurePolicy
	// Limiter, when set, throttles dispatch. Useful against remote
	// stores with request budgets.
	Limiter *rate.Limiter
	// Logger receives progress and failure records. Default discards.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Alpha <= 0 {
		c.Alpha = 50
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// BatchKey returns the blob key of image index i. Keys are zero padded
// so lexicographic listing order equals index order.
func BatchKey(i int) string {
	return fmt.Sprintf("batches/%06d.bin", i)
}

// Coordinator fans the response sampler out across a corpus.
type Coordinator struct {
	store blobstore.BlobStore
	load  LoadFunc
	cfg   Config
}

// NewCoordinator creates a coordinator writing batches to store.
func NewCoordinator(store blobstore.BlobStore, load LoadFunc, cfg Config) *Coordinator {
	return &Coordinator{store: store, load: load, cfg: cfg.withDefaults()}
}

// Run samples every corpus image and blocks until all dispatched items
// have finished, success or failure. Under FailFast the first item
// error is returned after the join; under ContinueOnError item errors
// are only reported in the Result.
func (c *Coordinator) Run(ctx context.Context, corpus *manifest.Corpus) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := NewWorkerPool(c.cfg.Workers)
	defer pool.Close()

	prog := newProgress(c.cfg.Logger)

	var (
		mu        sync.Mutex
		completed = roaring.New()
		failures  []*ItemError
		wg        sync.WaitGroup
	)

	fail := func(index int, path string, err error) {
		c.cfg.Logger.Error("sampling failed", "index", index, "path", path, "error", err)
		mu.Lock()
		failures = append(failures, &ItemError{Index: index, Path: path, Err: err})
		mu.Unlock()
		if c.cfg.Policy == FailFast {
			cancel()
		}
	}

	for i, entry := range corpus.Entries {
		if c.cfg.Limiter != nil {
			if err := c.cfg.Limiter.Wait(ctx); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		index, path := i, entry.Path
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := c.processItem(ctx, index, path, prog); err != nil {
				fail(index, path, err)
				return
			}
			mu.Lock()
			completed.Add(uint32(index))
			mu.Unlock()
		}
		if err := pool.Submit(ctx, task); err != nil {
			wg.Done()
			break
		}
	}

	// Full join before reporting anything.
	wg.Wait()

	res := &Result{
		Completed:    completed,
		TotalSamples: prog.totalSamples(),
		Failures:     failures,
	}

	if c.cfg.Policy == FailFast && len(failures) > 0 {
		return res, failures[0]
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// processItem is one unit of work: load, sample, persist.
func (c *Coordinator) processItem(ctx context.Context, index int, path string, prog *progress) error {
	img, err := c.load(ctx, path)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	// Per-image stream seeded by (Seed, index) keeps batches identical
	// across pool sizes.
	rng := rand.New(rand.NewSource(c.cfg.Seed + int64(index)))
	batch, err := sampler.Sample(img, c.cfg.Alpha, rng)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	batch.Index = index

	data, err := sampler.EncodeBatch(batch, c.cfg.Compression)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := c.store.Put(ctx, BatchKey(index), data); err != nil {
		return fmt.Errorf("persist: %w", err)
	}

	prog.record(batch.Alpha(), index, path)
	return nil
}
