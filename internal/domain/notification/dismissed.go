// internal/domain/notification/dismissed.go
package notification

import "encoding/json"

// DismissedSet holds locally tombstoned event ids. It only controls
// visibility of the feed; ledger and seen-state content are unaffected.
type DismissedSet struct {
	ids   []string
	index map[string]struct{}
}

// NewDismissedSet returns an empty tombstone set.
func NewDismissedSet() *DismissedSet {
	return &DismissedSet{index: make(map[string]struct{})}
}

// DecodeDismissedSet rebuilds a tombstone set from its persisted JSON form.
// Malformed input is treated as empty.
func DecodeDismissedSet(raw string) *DismissedSet {
	d := NewDismissedSet()
	if raw == "" {
		return d
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return d
	}
	for _, id := range ids {
		d.Add(id)
	}
	return d
}

// Add tombstones one id. Returns true if it was not already present.
func (d *DismissedSet) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := d.index[id]; ok {
		return false
	}
	d.ids = append(d.ids, id)
	d.index[id] = struct{}{}
	return true
}

// Remove drops the given ids from the set.
func (d *DismissedSet) Remove(ids []string) bool {
	changed := false
	for _, id := range ids {
		if _, ok := d.index[id]; !ok {
			continue
		}
		delete(d.index, id)
		changed = true
	}
	if !changed {
		return false
	}
	kept := d.ids[:0]
	for _, id := range d.ids {
		if _, ok := d.index[id]; ok {
			kept = append(kept, id)
		}
	}
	d.ids = kept
	return true
}

// Has reports whether an id is tombstoned.
func (d *DismissedSet) Has(id string) bool {
	_, ok := d.index[id]
	return ok
}

// Len returns the number of tombstoned ids.
func (d *DismissedSet) Len() int {
	return len(d.ids)
}

// Encode serializes the set for persistence.
func (d *DismissedSet) Encode() (string, error) {
	ids := d.ids
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
