// internal/domain/state/store.go
package state

import "context"

// Store is the persistence port for per-scope engine state. Values are
// opaque serialized strings keyed by scope-derived keys. Callers treat any
// absent or unreadable value as empty; a Store never has to distinguish
// "never written" from "corrupted".
type Store interface {
	// Get returns the stored value for key and whether one was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes the value for key, replacing any previous value.
	Set(ctx context.Context, key string, value string) error
}
