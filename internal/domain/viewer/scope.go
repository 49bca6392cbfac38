// internal/domain/viewer/scope.go
package viewer

import (
	"strings"

	"complaint_notification_engine/internal/domain/stream"
)

// RoleKind classifies a viewer for visibility and event-kind purposes.
type RoleKind string

const (
	RoleOwner         RoleKind = "owner"
	RoleHandler       RoleKind = "handler"
	RoleAdministrator RoleKind = "administrator"
)

// Role labels as stored on records and identity profiles.
const (
	labelStudent = "student"
	labelStaff   = "staff"
	labelKasama  = "kasama"
	labelAdmin   = "admin"
)

// IsHandlerClass reports whether a stored role label names a handler-class
// role. Administrator status events are gated on this.
func IsHandlerClass(label string) bool {
	switch strings.ToLower(label) {
	case labelStaff, labelKasama:
		return true
	}
	return false
}

// Identity is the injected identity context. Any field may be empty.
type Identity struct {
	UID   string
	Email string
	Role  string
}

// Scope is a resolved viewer scope: the role classification plus the stable
// identity key used as both the stream-query parameter and the persistence
// namespace.
type Scope struct {
	Kind      RoleKind
	Key       string
	UID       string
	Email     string // normalized: trimmed, lowercased
	RoleLabel string // normalized: lowercased
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// Resolve derives a viewer scope from the identity context, falling back to
// the cached profile per field. It returns false when the role is
// unrecognized or the fields the role requires are missing; the engine
// stays idle in that case.
//
// Key construction prefers uid, then email, then role label, then a guest
// sentinel, and is stable for the same logical viewer.
func Resolve(current, fallback Identity) (Scope, bool) {
	uid := firstNonEmpty(current.UID, fallback.UID)
	email := strings.ToLower(strings.TrimSpace(firstNonEmpty(current.Email, fallback.Email)))
	label := strings.ToLower(strings.TrimSpace(firstNonEmpty(current.Role, fallback.Role)))

	switch {
	case label == labelStudent:
		var key string
		switch {
		case uid != "":
			key = "uid:" + uid
		case email != "":
			key = "email:" + email
		default:
			return Scope{}, false
		}
		return Scope{Kind: RoleOwner, Key: key, UID: uid, Email: email, RoleLabel: label}, true

	case IsHandlerClass(label):
		if email == "" {
			return Scope{}, false
		}
		return Scope{
			Kind:      RoleHandler,
			Key:       "role:" + label + "::" + email,
			UID:       uid,
			Email:     email,
			RoleLabel: label,
		}, true

	case label == labelAdmin:
		var key string
		switch {
		case uid != "":
			key = "uid:" + uid
		case email != "":
			key = "email:" + email
		default:
			key = "role:" + label
		}
		return Scope{Kind: RoleAdministrator, Key: key, UID: uid, Email: email, RoleLabel: label}, true
	}

	return Scope{}, false
}

// StreamFilter returns the subscription filter for this scope: owners watch
// their own records, handlers watch their assignment role, administrators
// watch everything ordered by submission time.
func (s Scope) StreamFilter() stream.Filter {
	switch s.Kind {
	case RoleOwner:
		if s.UID != "" {
			return stream.Filter{Field: "userId", Value: s.UID}
		}
		return stream.Filter{Field: "userEmail", Value: s.Email}
	case RoleHandler:
		return stream.Filter{Field: "assignedRole", Value: s.RoleLabel}
	default:
		return stream.Filter{OrderBy: "submissionDate", Descending: true}
	}
}

// Persistence key namespaces, one per concern, all scoped by role kind and
// identity key so state never leaks across identities.

func (s Scope) LedgerKey() string {
	return string(s.Kind) + "_notifications_items_" + s.Key
}

func (s Scope) SeenKey() string {
	return string(s.Kind) + "_notifications_seen_" + s.Key
}

func (s Scope) DismissedKey() string {
	return string(s.Kind) + "_notifications_dismissed_" + s.Key
}
