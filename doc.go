// Package bovw builds dictionaries of visual words for bag-of-visual-
// words image classification.
//
// The pipeline computes a fixed 60-channel filter bank response per
// image, samples random per-pixel response vectors across a corpus with
// a bounded worker pool, clusters the samples into K centroids (the
// dictionary), and quantizes images into per-pixel word maps against
// that dictionary.
//
// Artifacts (per-image sample batches, the dictionary, and the run
// manifest) live in a pluggable blob store so runs can span machines.
package bovw
