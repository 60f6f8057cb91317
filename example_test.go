package bovw_test

import (
	"context"
	"fmt"
	"log"

	"github.com/visionkit/bovw"
	"github.com/visionkit/bovw/blobstore"
	"github.com/visionkit/bovw/filterbank"
	"github.com/visionkit/bovw/manifest"
	"github.com/visionkit/bovw/pipeline"
)

func Example() {
	ctx := context.Background()

	// In-memory store for the example. Production runs use
	// blobstore.NewLocalStore, or the minio/s3 stores for object storage.
	store := blobstore.NewMemoryStore()

	// A tiny synthetic corpus: one dark image, one bright image.
	images := map[string]*filterbank.Image{
		"dark.png":   newGray(8, 8, 0.1),
		"bright.png": newGray(8, 8, 0.9),
	}
	load := pipeline.LoadFunc(func(_ context.Context, path string) (*filterbank.Image, error) {
		img, ok := images[path]
		if !ok {
			return nil, fmt.Errorf("no such image: %s", path)
		}
		return img, nil
	})

	p := bovw.New(store, load,
		bovw.WithAlpha(10),
		bovw.WithDictionarySize(2),
		bovw.WithWorkers(2),
		bovw.WithSeed(7),
	)

	dict, err := p.BuildDictionary(ctx, manifest.NewCorpus("dark.png", "bright.png"))
	if err != nil {
		log.Fatal(err)
	}

	wm, err := p.Quantize(images["dark.png"], dict)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("words:", dict.K())
	fmt.Println("word map:", wm.H, "x", wm.W)
	// Output:
	// words: 2
	// word map: 8 x 8
}

func newGray(h, w int, v float64) *filterbank.Image {
	im := filterbank.NewImage(h, w, 3)
	for i := range im.Data {
		im.Data[i] = v
	}
	return im
}
