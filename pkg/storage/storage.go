package storage

import (
	"context"
	"io"
)

// AssetStorage is a read-mostly store of document assets addressed by key.
// Keys are validated document IDs; backends never see raw user input.
type AssetStorage interface {
	// Location returns the fully qualified place a key would be read from.
	// It is deterministic and does not touch the backend.
	Location(key string) string

	// Get returns the full content stored under key
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns every key in the store root, unsorted
	List(ctx context.Context) ([]string, error)

	// Put creates or replaces the content stored under key
	Put(ctx context.Context, key string, content io.Reader) error

	// Ping checks if the storage backend is available
	Ping(ctx context.Context) error

	// Backend names the implementation, used as a metric label
	Backend() string
}

// ErrNotFound is returned when a key, or the store root itself, does not exist
type ErrNotFound struct {
	Key      string
	Location string
}

func (e *ErrNotFound) Error() string {
	if e.Key == "" {
		return "storage root not found: " + e.Location
	}
	return "asset not found: " + e.Location
}
