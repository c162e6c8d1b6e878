// Package settings persists application settings as JSON values keyed by name.
package settings

import "context"

// Storer defines the interface for persisting raw setting values in a storage backend.
// Values are opaque JSON documents, typed access goes through Save and Load.
type Storer interface {
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Get retrieves the value stored under key. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error

	// Keys returns all stored keys in sorted order.
	Keys(ctx context.Context) ([]string, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ErrNotFound is returned when a key doesn't exist in the store.
type ErrNotFound struct {
	Key string
}

func (e ErrNotFound) Error() string {
	if e.Key == "" {
		return "setting not found"
	}

	return "setting not found: " + e.Key
}
