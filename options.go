package bovw

import (
	"golang.org/x/time/rate"

	"github.com/visionkit/bovw/cluster"
	"github.com/visionkit/bovw/codec"
	"github.com/visionkit/bovw/pipeline"
	"github.com/visionkit/bovw/sampler"
)

type options struct {
	alpha       int
	workers     int
	k           int
	seed        int64
	compression sampler.Compression
	policy      pipeline.FailurePolicy
	limiter     *rate.Limiter
	clusterer   cluster.Clusterer
	codec       codec.Codec
	logger      *Logger
}

func defaultOptions() options {
	return options{
		alpha:     50,
		workers:   2,
		k:         200,
		seed:      1,
		policy:    pipeline.FailFast,
		clusterer: cluster.KMeans{},
		codec:     codec.Default,
		logger:    NoopLogger(),
	}
}

// Option configures a Pipeline.
type Option func(*options)

// WithAlpha sets the number of response vectors sampled per image.
func WithAlpha(alpha int) Option {
	return func(o *options) { o.alpha = alpha }
}

// WithWorkers sets the sampling worker pool size.
func WithWorkers(workers int) Option {
	return func(o *options) { o.workers = workers }
}

// WithDictionarySize sets K, the number of visual words to learn.
func WithDictionarySize(k int) Option {
	return func(o *options) { o.k = k }
}

// WithSeed sets the base seed of the per-image sampling streams. Runs
// with equal seed and corpus produce identical batch artifacts
// regardless of worker count.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithCompression selects the batch artifact compression.
func WithCompression(c sampler.Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithFailurePolicy decides whether one bad image aborts the run
// (pipeline.FailFast, the default) or is skipped with a warning and a
// correspondingly smaller sample set (pipeline.ContinueOnError).
func WithFailurePolicy(p pipeline.FailurePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithDispatchLimit throttles how fast items are handed to workers.
// Useful when the batch store has request budgets.
func WithDispatchLimit(l *rate.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithClusterer replaces the default k-means clustering capability.
func WithClusterer(c cluster.Clusterer) Option {
	return func(o *options) {
		if c != nil {
			o.clusterer = c
		}
	}
}

// WithCodec sets the codec for the dictionary and run manifest.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
