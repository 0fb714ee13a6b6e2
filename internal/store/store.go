// Package store persists sealed archives by user key.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing is stored under the key
var ErrNotFound = errors.New("archived user info not found")

// Store keeps opaque archive blobs. Implementations never inspect them.
type Store interface {
	Put(ctx context.Context, key string, blob []byte) error
	// Get returns ErrNotFound for unknown keys
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is a no-op for unknown keys
	Delete(ctx context.Context, key string) error
}
