package cluster

import (
	"context"
	"fmt"

	"github.com/visionkit/bovw/blobstore"
	"github.com/visionkit/bovw/codec"
)

// DictionaryFileName is the blob key the dictionary is stored under.
const DictionaryFileName = "dictionary.json"

// Dictionary is the learned set of visual words: K centroid vectors of
// equal dimension. It is written once by the builder and treated as
// read-only configuration by every consumer.
type Dictionary struct {
	Centroids [][]float64 `json:"centroids"`
}

// K returns the number of visual words.
func (d *Dictionary) K() int { return len(d.Centroids) }

// Dim returns the dimension of each visual word, 0 for an empty
// dictionary.
func (d *Dictionary) Dim() int {
	if len(d.Centroids) == 0 {
		return 0
	}
	return len(d.Centroids[0])
}

// Centroid returns the j-th visual word. The slice aliases the
// dictionary and must not be modified.
func (d *Dictionary) Centroid(j int) []float64 { return d.Centroids[j] }

// Validate checks that the dictionary is non-empty and rectangular.
func (d *Dictionary) Validate() error {
	if d.K() == 0 {
		return fmt.Errorf("%w: empty dictionary", ErrInsufficientData)
	}
	dim := d.Dim()
	for j, c := range d.Centroids {
		if len(c) != dim {
			return fmt.Errorf("dictionary centroid %d has dimension %d, want %d", j, len(c), dim)
		}
	}
	return nil
}

// Save persists the dictionary to the store.
func (d *Dictionary) Save(ctx context.Context, store blobstore.BlobStore, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}
	data, err := c.Marshal(d)
	if err != nil {
		return fmt.Errorf("dictionary: marshal: %w", err)
	}
	return store.Put(ctx, DictionaryFileName, data)
}

// LoadDictionary reads a previously saved dictionary from the store.
func LoadDictionary(ctx context.Context, store blobstore.BlobStore, c codec.Codec) (*Dictionary, error) {
	if c == nil {
		c = codec.Default
	}
	data, err := blobstore.ReadAll(ctx, store, DictionaryFileName)
	if err != nil {
		return nil, fmt.Errorf("dictionary: read: %w", err)
	}
	var d Dictionary
	if err := c.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("dictionary: unmarshal: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
