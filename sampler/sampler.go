// Package sampler draws random filter responses from single images.
// Each image contributes one immutable Batch of alpha response vectors,
// persisted under the image's index and later stacked into the
// clustering input by the dictionary builder.
package sampler

import (
	"fmt"
	"math/rand"

	"github.com/visionkit/bovw/filterbank"
)

// Batch holds the alpha response vectors sampled from one image.
// Rows are in draw order. Index identifies the source image within the
// corpus; it is set by the caller, not by Sample.
type Batch struct {
	Index    int
	Channels int
	Data     []float64
}

// Alpha returns the number of sampled vectors.
func (b *Batch) Alpha() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Row returns the i-th sampled response vector. The slice aliases the
// batch data.
func (b *Batch) Row(i int) []float64 {
	return b.Data[i*b.Channels : (i+1)*b.Channels]
}

// Sample extracts the filter responses of img and draws alpha pixel
// locations independently and uniformly at random, with replacement.
// Failures from extraction propagate unchanged; there are no retries.
func Sample(img *filterbank.Image, alpha int, rng *rand.Rand) (*Batch, error) {
	if alpha < 1 {
		return nil, fmt.Errorf("%w: alpha must be at least 1, got %d", filterbank.ErrInvalidInput, alpha)
	}

	resp, err := filterbank.Extract(img)
	if err != nil {
		return nil, err
	}

	b := &Batch{
		Index:    -1,
		Channels: resp.C,
		Data:     make([]float64, alpha*resp.C),
	}
	for i := 0; i < alpha; i++ {
		y := rng.Intn(resp.H)
		x := rng.Intn(resp.W)
		copy(b.Data[i*resp.C:(i+1)*resp.C], resp.At(y, x))
	}
	return b, nil
}
