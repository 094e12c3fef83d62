// Package snapshot defines the durable single-slot storage a session
// persists its principal into, and the codecs that serialize the principal.
package snapshot

import (
	"context"
	"errors"
)

// DefaultKey is the slot name sessions use unless configured otherwise.
const DefaultKey = "session-identity"

// ErrNotFound is returned by Load when the slot is empty.
var ErrNotFound = errors.New("snapshot: not found")

// Store is a key-value store of serialized snapshots.
type Store interface {
	// LoadSnapshot returns the bytes stored under key, or ErrNotFound.
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)

	// SaveSnapshot overwrites the value stored under key.
	SaveSnapshot(ctx context.Context, key string, data []byte) error

	// DeleteSnapshot removes key. Deleting a missing key is not an error.
	DeleteSnapshot(ctx context.Context, key string) error
}
