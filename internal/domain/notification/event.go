// internal/domain/notification/event.go
package notification

import "fmt"

// Kind identifies what a notification event is about.
type Kind string

const (
	KindNew        Kind = "new"        // record entered the system
	KindStatus     Kind = "status"     // record status changed
	KindFeedback   Kind = "feedback"   // feedback was added
	KindAssignment Kind = "assignment" // record was assigned to the viewer
)

// Event is a single derived notification. Events are value objects: the ID
// is a pure function of (RecordID, Kind, token), so re-deriving the same
// change always yields the same ID.
type Event struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	RecordID   string `json:"recordId"`
	Category   string `json:"category"`
	Title      string `json:"title"`
	OccurredAt int64  `json:"occurredAt"` // epoch milliseconds
}

// EventID builds the deterministic id for an event. The token disambiguates
// repeated events of the same kind on one record (a timestamp, a counter,
// or a combination).
func EventID(recordID string, kind Kind, token string) string {
	return fmt.Sprintf("%s::%s::%s", recordID, kind, token)
}
