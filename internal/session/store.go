// Package session provides the typed key-value façade owning all locally
// persisted state: session identity, preferences, favorites, the cart
// snapshot and recent searches.
package session

import "errors"

// ErrStoreIO indicates the underlying key-value store failed a read or
// write. The façade surfaces it without retrying.
var ErrStoreIO = errors.New("session: store i/o failure")

// Store is the key-value backend behind LocalSession. Implementations must
// provide per-key atomic writes and snapshot reads; composite operations
// built on top are serialised by the caller.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(key string) (string, bool, error)
	// Set writes the value for the key.
	Set(key, value string) error
	// Delete removes the key; deleting an absent key is a no-op.
	Delete(key string) error
	// Clear removes every key.
	Clear() error
}
