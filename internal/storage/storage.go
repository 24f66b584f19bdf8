// Package storage persists named byte blobs. Every backend replaces a blob atomically:
// a reader sees either the previous version or the new one, never a partial write.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotFound is returned by Read when no blob exists under the name.
var ErrNotFound = errors.New("blob not found")

// Backend names accepted by New.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
)

// BlobStore reads and writes whole blobs by name.
type BlobStore interface {
	// Read returns the blob's bytes, or an error wrapping ErrNotFound if it does not exist.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the blob atomically, creating it if needed.
	Write(ctx context.Context, name string, data []byte) error
	// Location describes where the named blob lives, for status output.
	Location(name string) string
	// Backend returns the backend name.
	Backend() string
	Close() error
}

// Options selects and configures a BlobStore.
type Options struct {
	Backend      string
	Root         string // file backend directory; also the parent of the default sqlite database
	DatabasePath string // sqlite backend
	S3           S3Options
}

// New opens the BlobStore named by opts.Backend. An empty backend means "file".
func New(ctx context.Context, opts Options) (BlobStore, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Root)
	case BackendSQLite:
		path := opts.DatabasePath
		if path == "" {
			path = filepath.Join(opts.Root, "blobs.db")
		}
		return NewSQLiteStore(path)
	case BackendS3:
		return NewS3Store(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
