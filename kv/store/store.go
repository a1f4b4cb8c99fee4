package store

import "errors"

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("key not found")

// ErrEmptyKey is returned when setting an empty key.
var ErrEmptyKey = errors.New("empty key")

// Store is the storage interface used by the kv service. It should be
// goroutine-safe.
type Store interface {
	// Get returns the value of key, or ErrNotFound.
	Get(key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys returns the sorted keys that start with prefix.
	Keys(prefix string) ([]string, error)

	// Close shuts down the store.
	Close() error
}
