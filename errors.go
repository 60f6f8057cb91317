package bovw

import (
	"errors"

	"github.com/visionkit/bovw/cluster"
	"github.com/visionkit/bovw/filterbank"
	"github.com/visionkit/bovw/pipeline"
)

var (
	// ErrInvalidInput indicates a malformed or empty image tensor.
	ErrInvalidInput = filterbank.ErrInvalidInput

	// ErrInsufficientData indicates fewer usable sample points than
	// requested centroids.
	ErrInsufficientData = cluster.ErrInsufficientData

	// ErrPoolClosed indicates work submitted to a closed worker pool.
	ErrPoolClosed = pipeline.ErrPoolClosed

	// ErrMissingBatch indicates an expected per-image sample artifact
	// was not found during dictionary building. The builder fails
	// rather than producing a dictionary from partial data.
	ErrMissingBatch = errors.New("missing sample batch artifact")
)
