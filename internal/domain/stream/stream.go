// internal/domain/stream/stream.go
package stream

import "context"

// ChangeType classifies an incremental document change.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Document is one record snapshot as delivered by the transport. Fields are
// loosely typed; the complaint package owns the mapping onto Record.
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Change is one entry in a snapshot's incremental change list.
type Change struct {
	Type ChangeType `json:"type"`
	Doc  Document   `json:"document"`
}

// Snapshot is a single delivery from the stream: the full matching document
// set plus the typed changes since the previous delivery. On the first
// delivery after subscribing, Changes lists every document as added.
type Snapshot struct {
	Docs    []Document
	Changes []Change
}

// Filter restricts a subscription to matching documents. A zero Field means
// unfiltered. OrderBy/Descending only affect unfiltered subscriptions.
type Filter struct {
	Field      string
	Value      string
	OrderBy    string
	Descending bool
}

// Unsubscribe tears down a subscription. Implementations must make it safe
// to call multiple times.
type Unsubscribe func()

// SnapshotHandler receives snapshot deliveries. The transport delivers
// serially: a handler invocation completes before the next begins.
type SnapshotHandler func(Snapshot)

// ErrorHandler receives transport-level delivery errors.
type ErrorHandler func(error)

// Source is the live document stream port. Implementations never invoke
// onSnapshot synchronously from inside Subscribe; deliveries come from a
// separate goroutine or a later caller.
type Source interface {
	Subscribe(ctx context.Context, f Filter, onSnapshot SnapshotHandler, onError ErrorHandler) (Unsubscribe, error)
}
