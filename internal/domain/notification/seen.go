// internal/domain/notification/seen.go
package notification

import "encoding/json"

// SeenSet is the bounded set of event ids a viewer has acknowledged.
// Insertion order is retained so the oldest ids are evicted when the cap
// is exceeded.
type SeenSet struct {
	ids   []string
	index map[string]struct{}
	cap   int
}

// NewSeenSet returns an empty seen-set bounded at cap ids. A cap of zero
// or less means unbounded.
func NewSeenSet(cap int) *SeenSet {
	return &SeenSet{index: make(map[string]struct{}), cap: cap}
}

// DecodeSeenSet rebuilds a seen-set from its persisted JSON form.
// Malformed input is treated as empty.
func DecodeSeenSet(raw string, cap int) *SeenSet {
	s := NewSeenSet(cap)
	if raw == "" {
		return s
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return s
	}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts one id. Adding a present id is a no-op. Returns true if the
// set changed.
func (s *SeenSet) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.ids = append(s.ids, id)
	s.index[id] = struct{}{}
	s.evict()
	return true
}

// AddAll inserts every given id, evicting oldest entries past the cap.
// Returns true if any id was new.
func (s *SeenSet) AddAll(ids []string) bool {
	changed := false
	for _, id := range ids {
		if s.Add(id) {
			changed = true
		}
	}
	return changed
}

func (s *SeenSet) evict() {
	if s.cap <= 0 || len(s.ids) <= s.cap {
		return
	}
	drop := s.ids[:len(s.ids)-s.cap]
	for _, id := range drop {
		delete(s.index, id)
	}
	s.ids = append([]string(nil), s.ids[len(s.ids)-s.cap:]...)
}

// Has reports membership.
func (s *SeenSet) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns the ids in insertion order. The returned slice is a copy.
func (s *SeenSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of ids held.
func (s *SeenSet) Len() int {
	return len(s.ids)
}

// Encode serializes the set for persistence.
func (s *SeenSet) Encode() (string, error) {
	ids := s.ids
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
