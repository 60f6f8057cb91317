package pipeline

import (
	"log/slog"
	"sync/atomic"
)

// progress tracks the total number of samples produced across all
// workers. It exists for operator-visible logging only; nothing in the
// pipeline gates on it. The counter is a single atomic, so concurrent
// updates never lose increments, and slog serializes the log records
// themselves.
type progress struct {
	total  atomic.Int64
	logger *slog.Logger
}

func newProgress(logger *slog.Logger) *progress {
	return &progress{logger: logger}
}

// record adds the samples of one finished image and logs the running
// total together with the item's index and source path.
func (p *progress) record(samples, index int, path string) {
	total := p.total.Add(int64(samples))
	p.logger.Info("image sampled",
		"progress", total,
		"index", index,
		"path", path,
	)
}

func (p *progress) totalSamples() int64 { return p.total.Load() }
