package filterbank

import "math"

// 1-D Gaussian kernels truncated at 4 sigma, the same cutoff
// scipy.ndimage uses. order selects the plain kernel or its first or
// second analytic derivative.

func kernelRadius(sigma float64) int {
	return int(4*sigma + 0.5)
}

// gaussKernel returns the sampled Gaussian of the given derivative
// order, indexed from -r to r. The order-0 kernel is normalized to sum
// to one; derivative kernels reuse that normalization so smoothing and
// differentiation stay consistent across scales.
func gaussKernel(sigma float64, order int) []float64 {
	r := kernelRadius(sigma)
	k := make([]float64, 2*r+1)

	sum := 0.0
	for i := -r; i <= r; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+r] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}

	s2 := sigma * sigma
	switch order {
	case 0:
	case 1:
		for i := -r; i <= r; i++ {
			k[i+r] *= -float64(i) / s2
		}
	case 2:
		for i := -r; i <= r; i++ {
			k[i+r] *= (float64(i*i) - s2) / (s2 * s2)
		}
	default:
		panic("filterbank: unsupported kernel order")
	}
	return k
}

// reflect maps an out-of-range index into [0,n) by mirroring at the
// borders with edge duplication (scipy's "reflect" mode).
func reflect(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}

// convolveRows correlates every row of the h x w plane with the kernel.
func convolveRows(src []float64, h, w int, k []float64) []float64 {
	r := len(k) / 2
	dst := make([]float64, len(src))
	for y := 0; y < h; y++ {
		row := src[y*w : (y+1)*w]
		out := dst[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			acc := 0.0
			for j := -r; j <= r; j++ {
				acc += row[reflect(x+j, w)] * k[j+r]
			}
			out[x] = acc
		}
	}
	return dst
}

// convolveCols correlates every column of the h x w plane with the kernel.
func convolveCols(src []float64, h, w int, k []float64) []float64 {
	r := len(k) / 2
	dst := make([]float64, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for j := -r; j <= r; j++ {
				acc += src[reflect(y+j, h)*w+x] * k[j+r]
			}
			dst[y*w+x] = acc
		}
	}
	return dst
}

// sepConvolve applies kx along rows and ky along columns.
func sepConvolve(src []float64, h, w int, kx, ky []float64) []float64 {
	return convolveCols(convolveRows(src, h, w, kx), h, w, ky)
}
