package shared

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Storage.Load for a key that was never saved.
	ErrNotFound = errors.New("shared value not found")
	// ErrSave wraps every failure to persist a value in WithLock.
	ErrSave = errors.New("failed to save shared value")
	// ErrInvalidKey is returned for key names a storage cannot address.
	ErrInvalidKey = errors.New("invalid shared key")
)

// Storage is the persistence contract a Backend needs.
type Storage interface {
	// Load returns the bytes last saved under key or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save durably stores data under key before returning.
	Save(ctx context.Context, key string, data []byte) error
	// Subscribe calls fn, from any goroutine, whenever key may have changed,
	// including by this process. The returned func stops the subscription.
	Subscribe(key string, fn func()) (unsubscribe func())
}
