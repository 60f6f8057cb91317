package bovw

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/visionkit/bovw/blobstore"
	"github.com/visionkit/bovw/cluster"
	"github.com/visionkit/bovw/filterbank"
	"github.com/visionkit/bovw/manifest"
	"github.com/visionkit/bovw/pipeline"
	"github.com/visionkit/bovw/sampler"
	"github.com/visionkit/bovw/wordmap"
)

// Pipeline ties the sampling coordinator, the clustering capability and
// the artifact store into the dictionary-building workflow.
type Pipeline struct {
	store blobstore.BlobStore
	load  pipeline.LoadFunc
	opts  options
}

// New creates a Pipeline writing artifacts to store and loading corpus
// images through load (see imageio.Loader for the filesystem case).
func New(store blobstore.BlobStore, load pipeline.LoadFunc, optFns ...Option) *Pipeline {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Pipeline{store: store, load: load, opts: opts}
}

// BuildDictionary samples the whole corpus, stacks every persisted
// batch in index order and clusters the result into K visual words.
// The dictionary and the run manifest are persisted before returning.
//
// The builder never returns a partial dictionary: a missing batch
// artifact fails with ErrMissingBatch, and too few (distinct) sample
// points fail with ErrInsufficientData.
func (p *Pipeline) BuildDictionary(ctx context.Context, corpus *manifest.Corpus) (*cluster.Dictionary, error) {
	logger := p.opts.logger.WithAlpha(p.opts.alpha).WithK(p.opts.k).WithWorkers(p.opts.workers)
	logger.Info("sampling corpus", "images", corpus.Len())

	coord := pipeline.NewCoordinator(p.store, p.load, pipeline.Config{
		Alpha:       p.opts.alpha,
		Workers:     p.opts.workers,
		Seed:        p.opts.seed,
		Compression: p.opts.compression,
		Policy:      p.opts.policy,
		Limiter:     p.opts.limiter,
		Logger:      logger.Logger,
	})
	res, err := coord.Run(ctx, corpus)
	if err != nil {
		return nil, fmt.Errorf("bovw: sampling run: %w", err)
	}
	for _, f := range res.Failures {
		logger.Warn("image skipped", "index", f.Index, "path", f.Path, "error", f.Err)
	}

	points, err := p.collectSamples(ctx, res)
	if err != nil {
		return nil, err
	}

	rows, _ := points.Dims()
	if rows < p.opts.k {
		return nil, fmt.Errorf("%w: %d sample points for %d centroids", ErrInsufficientData, rows, p.opts.k)
	}

	logger.Info("clustering samples", "points", rows)
	centroids, err := p.opts.clusterer.Cluster(ctx, points, p.opts.k)
	if err != nil {
		return nil, fmt.Errorf("bovw: clustering: %w", err)
	}
	dict := &cluster.Dictionary{Centroids: centroids}

	if err := dict.Save(ctx, p.store, p.opts.codec); err != nil {
		return nil, fmt.Errorf("bovw: persist dictionary: %w", err)
	}

	run := manifest.NewRun(corpus.Len(), p.opts.alpha, p.opts.k, p.opts.workers, p.opts.seed)
	if err := run.SetCompleted(res.Completed); err != nil {
		return nil, err
	}
	if err := run.Save(ctx, p.store, p.opts.codec); err != nil {
		return nil, fmt.Errorf("bovw: persist run manifest: %w", err)
	}

	logger.Info("dictionary built", "words", dict.K(), "samples", res.TotalSamples)
	return dict, nil
}

// collectSamples reads every completed batch back in index order and
// stacks them into one (N*alpha) x C matrix.
func (p *Pipeline) collectSamples(ctx context.Context, res *pipeline.Result) (*mat.Dense, error) {
	indices := res.Completed.ToArray()
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no images produced samples", ErrInsufficientData)
	}

	batches := make([]*sampler.Batch, len(indices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.workers)
	for pos, index := range indices {
		g.Go(func() error {
			data, err := blobstore.ReadAll(gctx, p.store, pipeline.BatchKey(int(index)))
			if err != nil {
				if errors.Is(err, blobstore.ErrNotFound) {
					return fmt.Errorf("%w: index %d", ErrMissingBatch, index)
				}
				return fmt.Errorf("bovw: read batch %d: %w", index, err)
			}
			batch, err := sampler.DecodeBatch(data)
			if err != nil {
				return fmt.Errorf("bovw: decode batch %d: %w", index, err)
			}
			if batch.Index != int(index) {
				return fmt.Errorf("bovw: batch %d claims index %d", index, batch.Index)
			}
			if batch.Channels != filterbank.Channels {
				return fmt.Errorf("bovw: batch %d has %d channels, want %d", index, batch.Channels, filterbank.Channels)
			}
			batches[pos] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, b := range batches {
		total += b.Alpha()
	}
	points := mat.NewDense(total, filterbank.Channels, nil)
	row := 0
	for _, b := range batches {
		for i := 0; i < b.Alpha(); i++ {
			points.SetRow(row, b.Row(i))
			row++
		}
	}
	return points, nil
}

// Quantize maps every pixel of an image to its nearest visual word.
func (p *Pipeline) Quantize(img *filterbank.Image, dict *cluster.Dictionary) (*wordmap.WordMap, error) {
	return wordmap.Quantize(img, dict)
}

// LoadDictionary reads the dictionary a previous run persisted to the
// pipeline's store.
func (p *Pipeline) LoadDictionary(ctx context.Context) (*cluster.Dictionary, error) {
	return cluster.LoadDictionary(ctx, p.store, p.opts.codec)
}
