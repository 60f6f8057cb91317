package filterbank

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidInput is returned for malformed image tensors (zero rows,
// columns or channels, or a 2-channel layout that cannot be coerced).
var ErrInvalidInput = errors.New("invalid input image")

// Image is a dense H x W x Ch pixel tensor in row-major order.
// Values are expected to be normalized to [0,1] by the caller.
type Image struct {
	H, W, Ch int
	Data     []float64
}

// NewImage allocates a zeroed image tensor.
func NewImage(h, w, ch int) *Image {
	return &Image{H: h, W: w, Ch: ch, Data: make([]float64, h*w*ch)}
}

// At returns the value of channel c at row y, column x.
func (im *Image) At(y, x, c int) float64 {
	return im.Data[(y*im.W+x)*im.Ch+c]
}

// Set stores v into channel c at row y, column x.
func (im *Image) Set(y, x, c int, v float64) {
	im.Data[(y*im.W+x)*im.Ch+c] = v
}

func (im *Image) validate() error {
	if im == nil || im.H <= 0 || im.W <= 0 || im.Ch <= 0 {
		return fmt.Errorf("%w: empty image tensor", ErrInvalidInput)
	}
	if im.Ch == 2 {
		return fmt.Errorf("%w: 2-channel tensor is ambiguous, provide 1 (grayscale) or 3+ channels",
			ErrInvalidInput)
	}
	if len(im.Data) != im.H*im.W*im.Ch {
		return fmt.Errorf("%w: data length %d does not match %dx%dx%d",
			ErrInvalidInput, len(im.Data), im.H, im.W, im.Ch)
	}
	return nil
}

// toLab coerces the image to exactly 3 channels (grayscale replicated,
// surplus channels dropped) and converts sRGB to CIE Lab (D65). It
// returns one plane per Lab channel.
func toLab(im *Image) [3][]float64 {
	n := im.H * im.W

	var planes [3][]float64
	for c := range planes {
		planes[c] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		base := i * im.Ch
		var r, g, b float64
		if im.Ch == 1 {
			r = im.Data[base]
			g, b = r, r
		} else {
			// Channels beyond the first three are ignored.
			r = im.Data[base]
			g = im.Data[base+1]
			b = im.Data[base+2]
		}
		// Color.Lab handles the sRGB companding and uses the D65 white
		// point. Scaled by 100 so L lands in [0,100] like the usual
		// CIE convention, which keeps the channels comparable in
		// magnitude for clustering.
		l, a, bb := colorful.Color{R: r, G: g, B: b}.Lab()
		planes[0][i] = l * 100
		planes[1][i] = a * 100
		planes[2][i] = bb * 100
	}
	return planes
}
