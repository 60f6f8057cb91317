// Package filterbank computes the fixed multi-scale filter bank used to
// characterize local texture and color.
//
// The bank is 5 scales x 4 filter types x 3 Lab channels = 60 response
// planes per image. The set is fixed: Gaussian smoothing, Laplacian of
// Gaussian, and first-order Gaussian derivatives along each axis, at
// sigma 1, 2, 4, 8 and 8*sqrt(2).
//
// Extract is pure and safe to call concurrently on independent images.
package filterbank
