package sampler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionkit/bovw/filterbank"
)

func randomImage(t *testing.T, h, w int, seed int64) *filterbank.Image {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	im := filterbank.NewImage(h, w, 3)
	for i := range im.Data {
		im.Data[i] = rng.Float64()
	}
	return im
}

func TestSample_Shape(t *testing.T) {
	img := randomImage(t, 9, 7, 1)

	for _, alpha := range []int{1, 5, 50} {
		b, err := Sample(img, alpha, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		assert.Equal(t, alpha, b.Alpha())
		assert.Equal(t, filterbank.Channels, b.Channels)
		assert.Len(t, b.Data, alpha*filterbank.Channels)
	}
}

func TestSample_VectorsTraceableToPixels(t *testing.T) {
	img := randomImage(t, 6, 8, 2)

	resp, err := filterbank.Extract(img)
	require.NoError(t, err)

	b, err := Sample(img, 25, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	// Every sampled vector must equal some row of the reshaped
	// response tensor.
	for i := 0; i < b.Alpha(); i++ {
		row := b.Row(i)
		found := false
		for p := 0; p < resp.Pixels() && !found; p++ {
			found = assert.ObjectsAreEqual(resp.Row(p), row)
		}
		assert.True(t, found, "sampled vector %d not traceable to a pixel", i)
	}
}

func TestSample_DeterministicPerSeed(t *testing.T) {
	img := randomImage(t, 10, 10, 4)

	a, err := Sample(img, 20, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := Sample(img, 20, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.Equal(t, a.Data, b.Data)
}

func TestSample_InvalidAlpha(t *testing.T) {
	img := randomImage(t, 4, 4, 5)

	for _, alpha := range []int{0, -3} {
		_, err := Sample(img, alpha, rand.New(rand.NewSource(1)))
		require.ErrorIs(t, err, filterbank.ErrInvalidInput)
	}
}

func TestSample_PropagatesExtractionFailure(t *testing.T) {
	_, err := Sample(&filterbank.Image{}, 5, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, filterbank.ErrInvalidInput)
}

func TestBatchEncoding_RoundTrip(t *testing.T) {
	img := randomImage(t, 8, 8, 6)
	b, err := Sample(img, 50, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	b.Index = 42

	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(compression.String(), func(t *testing.T) {
			data, err := EncodeBatch(b, compression)
			require.NoError(t, err)

			got, err := DecodeBatch(data)
			require.NoError(t, err)
			assert.Equal(t, 42, got.Index)
			assert.Equal(t, b.Channels, got.Channels)
			assert.Equal(t, b.Data, got.Data)
		})
	}
}

func TestEncodeBatch_RejectsInvalidBatches(t *testing.T) {
	cases := map[string]*Batch{
		"unset index":    {Index: -1, Channels: 2, Data: []float64{1, 2}},
		"zero channels":  {Index: 0, Channels: 0, Data: []float64{1, 2}},
		"empty data":     {Index: 0, Channels: 2},
		"ragged data":    {Index: 0, Channels: 2, Data: []float64{1, 2, 3}},
		"index overflow": {Index: 1 << 33, Channels: 2, Data: []float64{1, 2}},
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := EncodeBatch(b, CompressionNone)
			require.ErrorIs(t, err, filterbank.ErrInvalidInput)
		})
	}
}

func TestDecodeBatch_Malformed(t *testing.T) {
	b := &Batch{Index: 0, Channels: 2, Data: []float64{1, 2, 3, 4}}
	data, err := EncodeBatch(b, CompressionNone)
	require.NoError(t, err)

	_, err = DecodeBatch(data[:10])
	require.ErrorIs(t, err, ErrBadArtifact)

	bad := append([]byte("XXXX"), data[4:]...)
	_, err = DecodeBatch(bad)
	require.ErrorIs(t, err, ErrBadArtifact)

	_, err = DecodeBatch(data[:len(data)-3])
	require.ErrorIs(t, err, ErrBadArtifact)
}
