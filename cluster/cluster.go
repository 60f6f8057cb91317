// Package cluster defines the clustering capability used to learn the
// dictionary of visual words, plus the dictionary artifact itself.
//
// Clustering is treated as a black box: any implementation that maps an
// N x C point matrix to exactly k representative C-length vectors
// satisfies the contract. The default is Lloyd's algorithm from
// github.com/muesli/kmeans.
package cluster

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrInsufficientData is returned when fewer distinct points than the
// requested number of centroids are available.
var ErrInsufficientData = errors.New("insufficient data for clustering")

// Clusterer clusters N points of dimension C into k centroids.
type Clusterer interface {
	Cluster(ctx context.Context, points mat.Matrix, k int) ([][]float64, error)
}

// distinctRows counts the distinct rows of m, stopping early once the
// count reaches limit.
func distinctRows(m mat.Matrix, limit int) int {
	n, c := m.Dims()
	seen := make([][]float64, 0, limit)

rows:
	for i := 0; i < n; i++ {
		row := make([]float64, c)
		mat.Row(row, i, m)
		for _, s := range seen {
			equal := true
			for j := range s {
				if s[j] != row[j] {
					equal = false
					break
				}
			}
			if equal {
				continue rows
			}
		}
		seen = append(seen, row)
		if len(seen) >= limit {
			break
		}
	}
	return len(seen)
}
