package manifest

import (
	"context"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionkit/bovw/blobstore"
	"github.com/visionkit/bovw/codec"
)

func TestCorpus(t *testing.T) {
	c := NewCorpus("aquarium/sun_a.jpg", "desert/sun_b.jpg")
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "desert/sun_b.jpg", c.Entries[1].Path)
}

func TestCorpus_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	c := NewCorpus("aquarium/sun_a.jpg", "desert/sun_b.jpg")
	c.Entries[0].Label = 3
	require.NoError(t, c.Save(ctx, store, nil))

	got, err := LoadCorpus(ctx, store, nil)
	require.NoError(t, err)
	assert.Equal(t, c.Entries, got.Entries)

	_, err = LoadCorpus(ctx, blobstore.NewMemoryStore(), nil)
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestRun_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	r := NewRun(1440, 50, 200, 4, 7)
	bm := roaring.New()
	bm.AddRange(0, 1440)
	bm.Remove(17)
	require.NoError(t, r.SetCompleted(bm))
	require.NoError(t, r.Save(ctx, store, codec.JSON{}))

	got, err := LoadRun(ctx, store, codec.JSON{})
	require.NoError(t, err)
	assert.Equal(t, 1440, got.NumImages)
	assert.Equal(t, 50, got.Alpha)
	assert.Equal(t, 200, got.K)
	assert.Equal(t, int64(7), got.Seed)

	set, err := got.CompletedSet()
	require.NoError(t, err)
	assert.Equal(t, uint64(1439), set.GetCardinality())
	assert.False(t, set.Contains(17))
	assert.True(t, set.Contains(1439))
}

func TestRun_EmptyCompletedSet(t *testing.T) {
	r := NewRun(10, 50, 5, 2, 1)
	set, err := r.CompletedSet()
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

func TestLoadRun_BadVersion(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	r := NewRun(10, 50, 5, 2, 1)
	r.Version = 99
	require.NoError(t, r.Save(ctx, store, nil))

	_, err := LoadRun(ctx, store, nil)
	require.ErrorContains(t, err, "unsupported version")
}
