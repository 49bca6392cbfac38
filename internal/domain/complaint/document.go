// internal/domain/complaint/document.go
package complaint

import (
	"math"
	"time"
)

// Known layouts for stringly-typed timestamps stored by older writers.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToMillis coerces a loosely typed document value to epoch milliseconds.
// Numbers are taken as milliseconds, strings are parsed against the known
// layouts. Anything missing or malformed coerces to 0.
func ToMillis(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int64(t)
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UnixMilli()
			}
		}
		return 0
	default:
		return 0
	}
}

func docString(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

// FromDocument maps a raw stream document onto a Record. Absent and
// malformed fields degrade to zero values rather than failing.
func FromDocument(id string, fields map[string]any) Record {
	r := Record{
		ID:                  id,
		Status:              docString(fields, "status"),
		Category:            docString(fields, "category"),
		OwnerID:             docString(fields, "userId"),
		OwnerEmail:          docString(fields, "userEmail"),
		AssignedRole:        docString(fields, "assignedRole"),
		AssignedTo:          docString(fields, "assignedTo"),
		SubmittedAt:         ToMillis(fields["submissionDate"]),
		AssignmentUpdatedAt: ToMillis(fields["assignmentUpdatedAt"]),
		StatusUpdatedAt:     ToMillis(fields["statusUpdatedAt"]),
		StatusUpdatedBy:     docString(fields, "statusUpdatedBy"),
		StatusUpdatedByRole: docString(fields, "statusUpdatedByRole"),
		Feedback:            docString(fields, "Feedback"),
		FeedbackUpdatedAt:   ToMillis(fields["feedbackUpdatedAt"]),
	}

	if raw, ok := fields["feedbackHistory"].([]any); ok {
		for _, item := range raw {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			r.FeedbackHistory = append(r.FeedbackHistory, FeedbackEntry{
				AuthorID:   docString(entry, "adminId"),
				AuthorRole: docString(entry, "adminRole"),
				Text:       docString(entry, "text"),
				At:         ToMillis(entry["date"]),
			})
		}
	}

	return r
}
