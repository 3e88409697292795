// Package storage stores uploaded objects (avatars) and hands back the
// public URL they are served from.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned for keys that would escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore is a flat key/value blob store with public URLs.
type ObjectStore interface {
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// KeyOf maps a URL produced by Put back to its key.
	KeyOf(url string) (string, bool)
}
