package cluster

import (
	"context"
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/mat"
)

// KMeans is the default Clusterer, backed by github.com/muesli/kmeans
// (Lloyd's algorithm with random initialization).
type KMeans struct {
	// DeltaThreshold stops iterating once fewer than this fraction of
	// points change cluster. Zero means the library default (0.01).
	DeltaThreshold float64
}

// Cluster partitions the points into k centroids.
//
// Degenerate inputs fail fast: k below 1, fewer rows than k, or fewer
// distinct rows than k all return ErrInsufficientData rather than a
// partial dictionary.
func (km KMeans) Cluster(ctx context.Context, points mat.Matrix, k int) ([][]float64, error) {
	n, c := points.Dims()
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", ErrInsufficientData, k)
	}
	if n < k {
		return nil, fmt.Errorf("%w: %d points for %d centroids", ErrInsufficientData, n, k)
	}
	if distinctRows(points, k) < k {
		return nil, fmt.Errorf("%w: fewer than %d distinct points", ErrInsufficientData, k)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dataset := make(clusters.Observations, n)
	for i := 0; i < n; i++ {
		row := make([]float64, c)
		mat.Row(row, i, points)
		dataset[i] = clusters.Coordinates(row)
	}

	var (
		km2 kmeans.Kmeans
		err error
	)
	if km.DeltaThreshold > 0 {
		km2, err = kmeans.NewWithOptions(km.DeltaThreshold, nil)
		if err != nil {
			return nil, fmt.Errorf("cluster: kmeans options: %w", err)
		}
	} else {
		km2 = kmeans.New()
	}

	partition, err := km2.Partition(dataset, k)
	if err != nil {
		return nil, fmt.Errorf("cluster: partition: %w", err)
	}
	if len(partition) != k {
		return nil, fmt.Errorf("%w: clustering produced %d of %d centroids", ErrInsufficientData, len(partition), k)
	}

	centroids := make([][]float64, k)
	for i, cl := range partition {
		centroid := make([]float64, len(cl.Center))
		copy(centroid, cl.Center)
		centroids[i] = centroid
	}
	return centroids, nil
}
