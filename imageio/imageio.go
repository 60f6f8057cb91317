// Package imageio decodes corpus images from disk into normalized
// float tensors. Decoding itself is delegated to the standard image
// decoders; this package only owns the boundary conversion to the
// [0,1] tensor the filter bank expects.
package imageio

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/visionkit/bovw/filterbank"
)

// Load reads and decodes one image file into an H x W x 3 tensor with
// values normalized to [0,1]. The alpha channel, if any, is dropped.
func Load(path string) (*filterbank.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// FromImage converts a decoded image into a normalized 3-channel tensor.
func FromImage(img image.Image) *filterbank.Image {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()

	out := filterbank.NewImage(h, w, 3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out.Data[i] = float64(r) / 65535
			out.Data[i+1] = float64(g) / 65535
			out.Data[i+2] = float64(bl) / 65535
			i += 3
		}
	}
	return out
}

// Loader returns a load function rooted at dir, suitable for the
// sampling coordinator. Relative manifest paths are resolved against
// the data root.
func Loader(root string) func(ctx context.Context, relpath string) (*filterbank.Image, error) {
	return func(_ context.Context, relpath string) (*filterbank.Image, error) {
		return Load(filepath.Join(root, relpath))
	}
}
