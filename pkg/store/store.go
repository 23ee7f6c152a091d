package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no value exists for the key (or it has expired)
	ErrNotFound = errors.New("store.not_found")

	// ErrInvalidKey indicates an empty or otherwise unusable key
	ErrInvalidKey = errors.New("store.invalid_key")
)

// Store defines the interface for durable session record persistence.
// A value saved with a positive ttl becomes unreadable once the ttl
// elapses; implementations report both "never saved" and "expired"
// uniformly as ErrNotFound so callers fail open.
type Store interface {
	// Save writes the value under key with the given retention horizon.
	// A ttl <= 0 means no expiry.
	Save(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Load returns the value stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Remove deletes the value stored under key. Removing an absent
	// key is not an error.
	Remove(ctx context.Context, key string) error
}
