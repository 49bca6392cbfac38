// internal/domain/viewer/visibility.go
package viewer

import (
	"strings"

	"complaint_notification_engine/internal/domain/complaint"
	"complaint_notification_engine/internal/domain/notification"
)

// Visibility decides, per role, whether a record is in-scope and whether a
// detected change is eventable for the viewer (in particular, whether it
// was self-authored and must be suppressed).
type Visibility struct {
	scope Scope
	// Administrators observe globally and by default are notified of all
	// handler-class status/feedback changes, their own included. The
	// stricter policy is available behind this switch.
	adminSuppressSelfAuthored bool
}

// NewVisibility builds the predicate set for a resolved scope.
func NewVisibility(scope Scope, adminSuppressSelfAuthored bool) Visibility {
	return Visibility{scope: scope, adminSuppressSelfAuthored: adminSuppressSelfAuthored}
}

// InScope reports whether the record is visible to the viewer at all.
// Records that leave scope have their memo entries dropped by the engine.
func (v Visibility) InScope(r complaint.Record) bool {
	switch v.scope.Kind {
	case RoleOwner:
		if v.scope.UID != "" && r.OwnerID == v.scope.UID {
			return true
		}
		return v.scope.Email != "" && strings.ToLower(r.OwnerEmail) == v.scope.Email
	case RoleHandler:
		return strings.ToLower(r.AssignedRole) == v.scope.RoleLabel &&
			strings.ToLower(r.AssignedTo) == v.scope.Email
	default:
		return true
	}
}

// statusSelfAuthored reports whether the record's last status update was
// made by the viewer's identity or role.
func (v Visibility) statusSelfAuthored(r complaint.Record) bool {
	by := r.StatusUpdatedBy
	byUser := by != "" && (by == v.scope.UID || strings.ToLower(by) == v.scope.Email)
	byRole := v.scope.RoleLabel != "" && strings.ToLower(r.StatusUpdatedByRole) == v.scope.RoleLabel
	return byUser || byRole
}

// feedbackSelfAuthored reports whether the newest feedback entry was
// written by the viewer's identity.
func (v Visibility) feedbackSelfAuthored(r complaint.Record) bool {
	last, ok := r.LastFeedback()
	if !ok || last.AuthorID == "" {
		return false
	}
	return last.AuthorID == v.scope.UID || strings.ToLower(last.AuthorID) == v.scope.Email
}

// StatusEventable reports whether the record's current status state may
// produce a status-changed event for this viewer. The caller supplies the
// "did it actually change" check.
func (v Visibility) StatusEventable(r complaint.Record) bool {
	switch v.scope.Kind {
	case RoleOwner:
		// An owner's own writes don't route through this role.
		return r.Status != ""
	case RoleHandler:
		return r.Status != "" && !v.statusSelfAuthored(r)
	default:
		if !IsHandlerClass(r.AssignedRole) {
			return false
		}
		return !v.adminSuppressSelfAuthored || !v.statusSelfAuthored(r)
	}
}

// FeedbackEventable reports whether the record's latest feedback may
// produce a feedback-added event for this viewer.
func (v Visibility) FeedbackEventable(r complaint.Record) bool {
	switch v.scope.Kind {
	case RoleOwner:
		return true
	case RoleHandler:
		return !v.feedbackSelfAuthored(r)
	default:
		last, ok := r.LastFeedback()
		if !ok || !IsHandlerClass(last.AuthorRole) {
			return false
		}
		return !v.adminSuppressSelfAuthored || !v.feedbackSelfAuthored(r)
	}
}

// CreationKind returns the event kind emitted when a record enters the
// viewer's scope, and whether that is eventable at all for this role.
// Owners are not notified of their own submissions.
func (v Visibility) CreationKind() (notification.Kind, bool) {
	switch v.scope.Kind {
	case RoleHandler:
		return notification.KindAssignment, true
	case RoleAdministrator:
		return notification.KindNew, true
	default:
		return "", false
	}
}

// CreationBackfillAt returns the record's stored timestamp qualifying a
// backfilled creation/assignment event. Zero means "do not backfill".
func (v Visibility) CreationBackfillAt(r complaint.Record) int64 {
	switch v.scope.Kind {
	case RoleHandler:
		return r.AssignmentUpdatedAt
	case RoleAdministrator:
		return r.SubmittedAt
	default:
		return 0
	}
}
