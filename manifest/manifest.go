// Package manifest describes a dictionary-building run: the ordered
// image corpus going in and, once sampling finishes, which image
// indices produced a batch. The completed set is what lets the builder
// distinguish "skipped by policy" from "artifact went missing".
package manifest

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/visionkit/bovw/blobstore"
	"github.com/visionkit/bovw/codec"
)

// RunFileName is the blob key the run manifest is stored under.
const RunFileName = "MANIFEST"

// CurrentVersion is the run manifest format version.
const CurrentVersion = 1

// Entry is one corpus image: a path relative to the data root and an
// optional ground-truth label for downstream training.
type Entry struct {
	Path  string `json:"path"`
	Label int    `json:"label,omitempty"`
}

// Corpus is the ordered list of images a run samples from. Order
// defines each image's index and never changes after the run starts.
type Corpus struct {
	Entries []Entry `json:"entries"`
}

// NewCorpus builds a corpus from relative image paths, in order.
func NewCorpus(paths ...string) *Corpus {
	c := &Corpus{Entries: make([]Entry, len(paths))}
	for i, p := range paths {
		c.Entries[i] = Entry{Path: p}
	}
	return c
}

// Len returns the number of images.
func (c *Corpus) Len() int { return len(c.Entries) }

// CorpusFileName is the blob key the corpus manifest is stored under.
const CorpusFileName = "corpus.json"

// Save persists the corpus manifest to the store.
func (c *Corpus) Save(ctx context.Context, store blobstore.BlobStore, cc codec.Codec) error {
	if cc == nil {
		cc = codec.Default
	}
	data, err := cc.Marshal(c)
	if err != nil {
		return fmt.Errorf("manifest: marshal corpus: %w", err)
	}
	return store.Put(ctx, CorpusFileName, data)
}

// LoadCorpus reads a corpus manifest back from the store.
func LoadCorpus(ctx context.Context, store blobstore.BlobStore, cc codec.Codec) (*Corpus, error) {
	if cc == nil {
		cc = codec.Default
	}
	data, err := blobstore.ReadAll(ctx, store, CorpusFileName)
	if err != nil {
		return nil, fmt.Errorf("manifest: read corpus: %w", err)
	}
	var c Corpus
	if err := cc.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("manifest: unmarshal corpus: %w", err)
	}
	return &c, nil
}

// Run records the parameters and outcome of one sampling run.
type Run struct {
	Version   int   `json:"version"`
	NumImages int   `json:"num_images"`
	Alpha     int   `json:"alpha"`
	K         int   `json:"k"`
	Workers   int   `json:"workers"`
	Seed      int64 `json:"seed"`

	// Completed holds the image indices whose batch artifact was
	// written, serialized as a roaring bitmap.
	Completed []byte `json:"completed"`
}

// NewRun creates a run manifest with an empty completed set.
func NewRun(numImages, alpha, k, workers int, seed int64) *Run {
	return &Run{
		Version:   CurrentVersion,
		NumImages: numImages,
		Alpha:     alpha,
		K:         k,
		Workers:   workers,
		Seed:      seed,
	}
}

// SetCompleted stores the set of completed image indices.
func (r *Run) SetCompleted(bm *roaring.Bitmap) error {
	data, err := bm.MarshalBinary()
	if err != nil {
		return fmt.Errorf("manifest: marshal completed set: %w", err)
	}
	r.Completed = data
	return nil
}

// CompletedSet returns the set of completed image indices.
func (r *Run) CompletedSet() (*roaring.Bitmap, error) {
	bm := roaring.New()
	if len(r.Completed) == 0 {
		return bm, nil
	}
	if err := bm.UnmarshalBinary(r.Completed); err != nil {
		return nil, fmt.Errorf("manifest: unmarshal completed set: %w", err)
	}
	return bm, nil
}

// Save persists the run manifest to the store.
func (r *Run) Save(ctx context.Context, store blobstore.BlobStore, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}
	data, err := c.Marshal(r)
	if err != nil {
		return fmt.Errorf("manifest: marshal: %w", err)
	}
	return store.Put(ctx, RunFileName, data)
}

// LoadRun reads the run manifest back from the store.
func LoadRun(ctx context.Context, store blobstore.BlobStore, c codec.Codec) (*Run, error) {
	if c == nil {
		c = codec.Default
	}
	data, err := blobstore.ReadAll(ctx, store, RunFileName)
	if err != nil {
		return nil, fmt.Errorf("manifest: read: %w", err)
	}
	var r Run
	if err := c.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("manifest: unmarshal: %w", err)
	}
	if r.Version != CurrentVersion {
		return nil, fmt.Errorf("manifest: unsupported version %d", r.Version)
	}
	return &r, nil
}
