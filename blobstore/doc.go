// Package blobstore abstracts durable storage for pipeline artifacts.
//
// Every per-image sample batch is written exactly once under a key
// derived from its image index, read back exactly once by the
// dictionary builder, and never mutated. That access pattern keeps the
// interface small:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)      // Random-access read
//	    Put(ctx, name, data) error         // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// MemoryStore backs tests, LocalStore backs single-machine runs, and
// the minio and s3 subpackages back object-storage deployments.
package blobstore
