package bovw_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionkit/bovw"
	"github.com/visionkit/bovw/blobstore"
	"github.com/visionkit/bovw/filterbank"
	"github.com/visionkit/bovw/manifest"
	"github.com/visionkit/bovw/pipeline"
	"github.com/visionkit/bovw/sampler"
)

func constantImage(h, w int, v float64) *filterbank.Image {
	im := filterbank.NewImage(h, w, 3)
	for i := range im.Data {
		im.Data[i] = v
	}
	return im
}

// mapLoader serves fixed images by path.
func mapLoader(images map[string]*filterbank.Image) pipeline.LoadFunc {
	return func(_ context.Context, path string) (*filterbank.Image, error) {
		img, ok := images[path]
		if !ok {
			return nil, fmt.Errorf("no such image: %s", path)
		}
		return img, nil
	}
}

func TestBuildDictionary_ConstantCorpus(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	img := constantImage(4, 4, 0.5)
	load := mapLoader(map[string]*filterbank.Image{
		"a.png": img,
		"b.png": img,
	})

	p := bovw.New(store, load, bovw.WithAlpha(5), bovw.WithDictionarySize(1))
	dict, err := p.BuildDictionary(ctx, manifest.NewCorpus("a.png", "b.png"))
	require.NoError(t, err)

	require.Equal(t, 1, dict.K())
	assert.Equal(t, filterbank.Channels, dict.Dim())

	// Quantizing either image yields a word map of all zeros.
	m, err := p.Quantize(img, dict)
	require.NoError(t, err)
	require.Len(t, m.Words, 16)
	for _, w := range m.Words {
		assert.Equal(t, uint32(0), w)
	}

	// Dictionary and run manifest were persisted.
	loaded, err := p.LoadDictionary(ctx)
	require.NoError(t, err)
	assert.Equal(t, dict.Centroids, loaded.Centroids)

	run, err := manifest.LoadRun(ctx, store, nil)
	require.NoError(t, err)
	set, err := run.CompletedSet()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), set.GetCardinality())
}

func TestBuildDictionary_SeparatesExtremes(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	dark := constantImage(6, 6, 0)
	bright := constantImage(6, 6, 1)
	load := mapLoader(map[string]*filterbank.Image{
		"dark.png":   dark,
		"bright.png": bright,
	})

	p := bovw.New(store, load, bovw.WithAlpha(10), bovw.WithDictionarySize(2))
	dict, err := p.BuildDictionary(ctx, manifest.NewCorpus("dark.png", "bright.png"))
	require.NoError(t, err)
	require.Equal(t, 2, dict.K())

	wordOf := func(img *filterbank.Image) uint32 {
		m, err := p.Quantize(img, dict)
		require.NoError(t, err)
		first := m.Words[0]
		for _, w := range m.Words {
			require.Equal(t, first, w, "expected a constant word map")
		}
		return first
	}

	// The two images are far apart in filter-response space, so each
	// maps to its own word.
	assert.NotEqual(t, wordOf(dark), wordOf(bright))
}

func TestBuildDictionary_InsufficientData(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	load := mapLoader(map[string]*filterbank.Image{
		"a.png": constantImage(4, 4, 0.5),
	})

	p := bovw.New(store, load, bovw.WithAlpha(5), bovw.WithDictionarySize(10))
	_, err := p.BuildDictionary(ctx, manifest.NewCorpus("a.png"))
	require.ErrorIs(t, err, bovw.ErrInsufficientData)
}

func TestBuildDictionary_FailFastOnBadImage(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	load := mapLoader(map[string]*filterbank.Image{
		"a.png": constantImage(4, 4, 0.5),
	})

	p := bovw.New(store, load, bovw.WithAlpha(5), bovw.WithDictionarySize(1))
	_, err := p.BuildDictionary(ctx, manifest.NewCorpus("a.png", "missing.png"))
	require.Error(t, err)

	var itemErr *pipeline.ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 1, itemErr.Index)
}

func TestBuildDictionary_ContinueOnError(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	img := constantImage(4, 4, 0.5)
	load := mapLoader(map[string]*filterbank.Image{
		"a.png": img,
		"c.png": img,
	})

	p := bovw.New(store, load,
		bovw.WithAlpha(5),
		bovw.WithDictionarySize(1),
		bovw.WithFailurePolicy(pipeline.ContinueOnError),
	)
	dict, err := p.BuildDictionary(ctx, manifest.NewCorpus("a.png", "missing.png", "c.png"))
	require.NoError(t, err)
	assert.Equal(t, 1, dict.K())

	run, err := manifest.LoadRun(ctx, store, nil)
	require.NoError(t, err)
	set, err := run.CompletedSet()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), set.GetCardinality())
	assert.False(t, set.Contains(1))
}

// droppingStore silently discards writes for one key to simulate an
// artifact lost between sampling and aggregation.
type droppingStore struct {
	blobstore.BlobStore
	drop string
}

func (s *droppingStore) Put(ctx context.Context, name string, data []byte) error {
	if name == s.drop {
		return nil
	}
	return s.BlobStore.Put(ctx, name, data)
}

func TestBuildDictionary_MissingBatchArtifact(t *testing.T) {
	ctx := context.Background()
	store := &droppingStore{
		BlobStore: blobstore.NewMemoryStore(),
		drop:      pipeline.BatchKey(1),
	}

	img := constantImage(4, 4, 0.5)
	load := mapLoader(map[string]*filterbank.Image{
		"a.png": img,
		"b.png": img,
	})

	p := bovw.New(store, load, bovw.WithAlpha(5), bovw.WithDictionarySize(1))
	_, err := p.BuildDictionary(ctx, manifest.NewCorpus("a.png", "b.png"))
	require.ErrorIs(t, err, bovw.ErrMissingBatch)
}

func TestBuildDictionary_CompressionDoesNotChangeResult(t *testing.T) {
	ctx := context.Background()

	img := constantImage(5, 5, 0.3)
	load := mapLoader(map[string]*filterbank.Image{"a.png": img})

	build := func(c sampler.Compression) [][]float64 {
		store := blobstore.NewMemoryStore()
		p := bovw.New(store, load,
			bovw.WithAlpha(8),
			bovw.WithDictionarySize(1),
			bovw.WithCompression(c),
		)
		dict, err := p.BuildDictionary(ctx, manifest.NewCorpus("a.png"))
		require.NoError(t, err)
		return dict.Centroids
	}

	none := build(sampler.CompressionNone)
	assert.Equal(t, none, build(sampler.CompressionLZ4))
	assert.Equal(t, none, build(sampler.CompressionZSTD))
}

func TestErrMissingBatchIsDistinct(t *testing.T) {
	assert.False(t, errors.Is(bovw.ErrMissingBatch, bovw.ErrInsufficientData))
}
