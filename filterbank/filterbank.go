package filterbank

import "math"

// Scales are the five Gaussian sigmas of the bank.
var Scales = [5]float64{1, 2, 4, 8, 8 * math.Sqrt2}

const (
	// FiltersPerScale is the number of filter types applied at each scale.
	FiltersPerScale = 4
	// ColorChannels is the number of Lab channels each filter runs over.
	ColorChannels = 3
	// Channels is the total response depth: 5 scales x 4 filters x 3 channels.
	Channels = len(Scales) * FiltersPerScale * ColorChannels
)

// Response is the H x W x Channels filter response tensor of one image.
// It is immutable after Extract returns.
type Response struct {
	H, W, C int
	Data    []float64
}

// At returns the C-length response vector of the pixel at row y, column
// x. The returned slice aliases the tensor; callers must not modify it.
func (r *Response) At(y, x int) []float64 {
	base := (y*r.W + x) * r.C
	return r.Data[base : base+r.C]
}

// Pixels returns the number of pixels H*W.
func (r *Response) Pixels() int { return r.H * r.W }

// Row returns the response vector of pixel i in row-major order,
// equivalent to reshaping the tensor to (H*W) x C.
func (r *Response) Row(i int) []float64 {
	return r.Data[i*r.C : (i+1)*r.C]
}

// Extract computes the 60-channel filter bank response of an image.
//
// The image is coerced to 3 channels and converted to Lab first. For
// each scale the per-scale ordering is: 3 Gaussian responses, 3
// Laplacian-of-Gaussian responses, 3 x-derivative responses, 3
// y-derivative responses, each over the L, a, b channels in turn.
//
// Empty images are rejected with ErrInvalidInput.
func Extract(im *Image) (*Response, error) {
	if err := im.validate(); err != nil {
		return nil, err
	}

	h, w := im.H, im.W
	lab := toLab(im)

	resp := &Response{H: h, W: w, C: Channels, Data: make([]float64, h*w*Channels)}

	planes := make([][]float64, 0, Channels)
	for _, sigma := range Scales {
		g0 := gaussKernel(sigma, 0)
		g1 := gaussKernel(sigma, 1)
		g2 := gaussKernel(sigma, 2)

		for c := 0; c < ColorChannels; c++ {
			planes = append(planes, sepConvolve(lab[c], h, w, g0, g0))
		}
		for c := 0; c < ColorChannels; c++ {
			// gaussian_laplace: second derivative along each axis,
			// smoothed along the other, summed.
			dxx := sepConvolve(lab[c], h, w, g2, g0)
			dyy := sepConvolve(lab[c], h, w, g0, g2)
			log := make([]float64, h*w)
			for i := range log {
				log[i] = dxx[i] + dyy[i]
			}
			planes = append(planes, log)
		}
		for c := 0; c < ColorChannels; c++ {
			planes = append(planes, sepConvolve(lab[c], h, w, g1, g0))
		}
		for c := 0; c < ColorChannels; c++ {
			planes = append(planes, sepConvolve(lab[c], h, w, g0, g1))
		}
	}

	// Interleave the planes into the channel-contiguous layout so a
	// pixel's full response vector is one contiguous slice.
	for p, plane := range planes {
		for i, v := range plane {
			resp.Data[i*Channels+p] = v
		}
	}
	return resp, nil
}
