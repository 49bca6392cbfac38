// internal/domain/notification/ledger.go
package notification

import (
	"encoding/json"
	"sort"
)

// Ledger is an ordered, deduplicated, size-bounded collection of events for
// one viewer scope. The externally observable order is always newest-first
// by OccurredAt, regardless of insertion order.
type Ledger struct {
	events []Event
	cap    int
}

// NewLedger returns an empty ledger bounded at cap entries. A cap of zero
// or less means unbounded.
func NewLedger(cap int) *Ledger {
	return &Ledger{cap: cap}
}

// DecodeLedger rebuilds a ledger from its persisted JSON form. Malformed
// input is treated as an empty ledger, never as an error.
func DecodeLedger(raw string, cap int) *Ledger {
	l := NewLedger(cap)
	if raw == "" {
		return l
	}
	var events []Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return l
	}
	l.Merge(events...)
	return l
}

// Merge unions the given events into the ledger by id, re-sorts and re-caps.
// Re-adding an existing id is a no-op. Returns true if the ledger changed.
func (l *Ledger) Merge(events ...Event) bool {
	changed := false
	index := make(map[string]struct{}, len(l.events))
	for _, e := range l.events {
		index[e.ID] = struct{}{}
	}
	for _, e := range events {
		if e.ID == "" {
			continue
		}
		if _, exists := index[e.ID]; exists {
			continue
		}
		index[e.ID] = struct{}{}
		l.events = append(l.events, e)
		changed = true
	}
	if !changed {
		return false
	}

	sort.SliceStable(l.events, func(i, j int) bool {
		if l.events[i].OccurredAt != l.events[j].OccurredAt {
			return l.events[i].OccurredAt > l.events[j].OccurredAt
		}
		return l.events[i].ID < l.events[j].ID
	})
	if l.cap > 0 && len(l.events) > l.cap {
		l.events = l.events[:l.cap]
	}
	return true
}

// List returns the events newest-first. The returned slice is a copy.
func (l *Ledger) List() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of events currently held.
func (l *Ledger) Len() int {
	return len(l.events)
}

// Encode serializes the ledger for persistence. The round trip through
// Encode and DecodeLedger preserves every event field.
func (l *Ledger) Encode() (string, error) {
	events := l.events
	if events == nil {
		events = []Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
