// Package storage abstracts the object store that owns uploaded
// document files. The core only ever holds the locator string.
package storage

import (
	"context"
	"io"
)

// PutOptions carries optional upload parameters. Size should be the
// exact byte count when known; -1 lets the backend chunk as it sees fit.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Storage is the object-store contract. All methods are streaming and
// context-bound; nothing touches local disk.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
