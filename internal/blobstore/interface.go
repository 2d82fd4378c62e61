package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrNoSpace reports that the backing storage has no room for a blob.
var ErrNoSpace = errors.New("blob storage is full")

// ErrNotFound reports a key with no stored content.
var ErrNotFound = errors.New("blob not found")

// BlobPutResult describes one persisted blob payload.
type BlobPutResult struct {
	SHA256    string
	SizeBytes int64
	BlobKey   string
}

// BlobStore is the byte-storage abstraction for media payloads and thumbnails.
type BlobStore interface {
	Put(ctx context.Context, r io.Reader) (BlobPutResult, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
