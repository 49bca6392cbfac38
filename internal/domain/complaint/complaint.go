// internal/domain/complaint/complaint.go
package complaint

// FeedbackEntry is one item in a complaint's ordered feedback history.
type FeedbackEntry struct {
	AuthorID   string
	AuthorRole string
	Text       string
	At         int64 // milliseconds; 0 when the stored value was missing or malformed
}

// Record is the read-only view of a complaint document as delivered by the
// live document stream. All timestamps are epoch milliseconds, already
// coerced; a zero value means "not recorded".
type Record struct {
	ID                  string
	Status              string
	Category            string
	OwnerID             string
	OwnerEmail          string
	AssignedRole        string
	AssignedTo          string
	SubmittedAt         int64
	AssignmentUpdatedAt int64
	StatusUpdatedAt     int64
	StatusUpdatedBy     string
	StatusUpdatedByRole string
	FeedbackHistory     []FeedbackEntry
	Feedback            string // legacy single feedback text field
	FeedbackUpdatedAt   int64
}

// FeedbackCount returns the length of the feedback history.
func (r Record) FeedbackCount() int {
	return len(r.FeedbackHistory)
}

// LastFeedback returns the newest feedback history entry, if any.
func (r Record) LastFeedback() (FeedbackEntry, bool) {
	if len(r.FeedbackHistory) == 0 {
		return FeedbackEntry{}, false
	}
	return r.FeedbackHistory[len(r.FeedbackHistory)-1], true
}

// HasFeedback reports whether the record carries any feedback at all,
// through the history or the legacy text field.
func (r Record) HasFeedback() bool {
	return len(r.FeedbackHistory) > 0 || r.Feedback != ""
}

// LatestFeedbackAt returns the best known time of the most recent feedback:
// the newer of the last history entry's time and the legacy update time.
func (r Record) LatestFeedbackAt() int64 {
	var lastMs int64
	if last, ok := r.LastFeedback(); ok {
		lastMs = last.At
	}
	if r.FeedbackUpdatedAt > lastMs {
		return r.FeedbackUpdatedAt
	}
	return lastMs
}
