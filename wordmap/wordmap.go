// Package wordmap assigns every pixel of an image to its nearest visual
// word, turning an H x W image into an H x W grid of dictionary
// indices.
//
// Assignment uses Euclidean distance over the 60-length response
// vector, the same metric k-means used to learn the dictionary, with
// ties broken toward the lowest centroid index so quantization is
// deterministic.
package wordmap

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/visionkit/bovw/cluster"
	"github.com/visionkit/bovw/filterbank"
)

// ErrDimensionMismatch indicates the response depth and the dictionary
// dimension disagree.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: dictionary expects %d, response has %d", e.Expected, e.Actual)
}

// WordMap is the per-pixel visual word assignment of one image. Values
// are centroid indices in [0, K).
type WordMap struct {
	H, W  int
	Words []uint32
}

// At returns the word index of the pixel at row y, column x.
func (m *WordMap) At(y, x int) uint32 { return m.Words[y*m.W+x] }

// Quantize extracts the filter responses of img and maps every pixel to
// its nearest visual word.
func Quantize(img *filterbank.Image, dict *cluster.Dictionary) (*WordMap, error) {
	resp, err := filterbank.Extract(img)
	if err != nil {
		return nil, err
	}
	return Assign(resp, dict)
}

// Assign maps every pixel of an already computed response tensor to its
// nearest visual word.
func Assign(resp *filterbank.Response, dict *cluster.Dictionary) (*WordMap, error) {
	if err := dict.Validate(); err != nil {
		return nil, err
	}
	if dict.Dim() != resp.C {
		return nil, &ErrDimensionMismatch{Expected: dict.Dim(), Actual: resp.C}
	}

	m := &WordMap{H: resp.H, W: resp.W, Words: make([]uint32, resp.Pixels())}
	for i := 0; i < resp.Pixels(); i++ {
		m.Words[i] = nearest(resp.Row(i), dict)
	}
	return m, nil
}

// nearest returns the index of the closest centroid. The strict "<"
// keeps the lowest index on exact ties, and a vector equal to centroid
// j yields distance zero and therefore j.
func nearest(v []float64, dict *cluster.Dictionary) uint32 {
	best := 0
	bestDist := floats.Distance(v, dict.Centroid(0), 2)
	for j := 1; j < dict.K(); j++ {
		if d := floats.Distance(v, dict.Centroid(j), 2); d < bestDist {
			best, bestDist = j, d
		}
	}
	return uint32(best)
}
