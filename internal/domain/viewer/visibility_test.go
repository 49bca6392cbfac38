package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaint_notification_engine/internal/domain/complaint"
	"complaint_notification_engine/internal/domain/notification"
)

func ownerVis(t *testing.T) Visibility {
	t.Helper()
	scope, ok := Resolve(Identity{UID: "u-1", Email: "owner@example.com", Role: "student"}, Identity{})
	require.True(t, ok)
	return NewVisibility(scope, false)
}

func handlerVis(t *testing.T) Visibility {
	t.Helper()
	scope, ok := Resolve(Identity{UID: "h-1", Email: "handler@example.com", Role: "staff"}, Identity{})
	require.True(t, ok)
	return NewVisibility(scope, false)
}

func adminVis(t *testing.T, suppressSelf bool) Visibility {
	t.Helper()
	scope, ok := Resolve(Identity{UID: "a-1", Email: "admin@example.com", Role: "admin"}, Identity{})
	require.True(t, ok)
	return NewVisibility(scope, suppressSelf)
}

func TestOwner_InScopeByUIDOrEmail(t *testing.T) {
	v := ownerVis(t)
	assert.True(t, v.InScope(complaint.Record{OwnerID: "u-1"}))
	assert.True(t, v.InScope(complaint.Record{OwnerEmail: "Owner@Example.com"}))
	assert.False(t, v.InScope(complaint.Record{OwnerID: "u-2", OwnerEmail: "other@example.com"}))
}

func TestHandler_InScopeRequiresRoleAndAssignee(t *testing.T) {
	v := handlerVis(t)
	assert.True(t, v.InScope(complaint.Record{AssignedRole: "Staff", AssignedTo: "Handler@Example.com"}))
	assert.False(t, v.InScope(complaint.Record{AssignedRole: "kasama", AssignedTo: "handler@example.com"}))
	assert.False(t, v.InScope(complaint.Record{AssignedRole: "staff", AssignedTo: "someone@example.com"}))
}

func TestAdministrator_AllRecordsInScope(t *testing.T) {
	v := adminVis(t, false)
	assert.True(t, v.InScope(complaint.Record{}))
	assert.True(t, v.InScope(complaint.Record{AssignedRole: "staff"}))
}

func TestHandler_StatusSelfAuthorshipSuppressed(t *testing.T) {
	v := handlerVis(t)

	// Authored by the same identity.
	byUID := complaint.Record{Status: "resolved", StatusUpdatedBy: "h-1"}
	assert.False(t, v.StatusEventable(byUID))

	byEmail := complaint.Record{Status: "resolved", StatusUpdatedBy: "handler@example.com"}
	assert.False(t, v.StatusEventable(byEmail))

	// Authored by the same role.
	byRole := complaint.Record{Status: "resolved", StatusUpdatedBy: "other", StatusUpdatedByRole: "staff"}
	assert.False(t, v.StatusEventable(byRole))

	// Authored elsewhere.
	other := complaint.Record{Status: "resolved", StatusUpdatedBy: "a-9", StatusUpdatedByRole: "admin"}
	assert.True(t, v.StatusEventable(other))

	// Handlers are not notified about records with no status at all.
	assert.False(t, v.StatusEventable(complaint.Record{}))
}

func TestHandler_FeedbackSelfAuthorshipSuppressed(t *testing.T) {
	v := handlerVis(t)

	own := complaint.Record{FeedbackHistory: []complaint.FeedbackEntry{{AuthorID: "h-1", At: 100}}}
	assert.False(t, v.FeedbackEventable(own))

	foreign := complaint.Record{FeedbackHistory: []complaint.FeedbackEntry{{AuthorID: "a-9", At: 100}}}
	assert.True(t, v.FeedbackEventable(foreign))
}

func TestOwner_NoSelfSuppression(t *testing.T) {
	v := ownerVis(t)
	r := complaint.Record{Status: "resolved", StatusUpdatedBy: "u-1"}
	assert.True(t, v.StatusEventable(r))
	assert.True(t, v.FeedbackEventable(complaint.Record{}))
}

func TestAdministrator_StatusRequiresHandlerClassAssignment(t *testing.T) {
	v := adminVis(t, false)
	assert.True(t, v.StatusEventable(complaint.Record{Status: "resolved", AssignedRole: "staff"}))
	assert.True(t, v.StatusEventable(complaint.Record{AssignedRole: "kasama"}))
	assert.False(t, v.StatusEventable(complaint.Record{Status: "resolved", AssignedRole: "admin"}))
	assert.False(t, v.StatusEventable(complaint.Record{Status: "resolved"}))
}

func TestAdministrator_SelfAuthorshipConfigurable(t *testing.T) {
	// Default policy: administrators see handler-class changes they made.
	byDefault := adminVis(t, false)
	own := complaint.Record{Status: "resolved", AssignedRole: "staff", StatusUpdatedBy: "a-1"}
	assert.True(t, byDefault.StatusEventable(own))

	strict := adminVis(t, true)
	assert.False(t, strict.StatusEventable(own))
	assert.True(t, strict.StatusEventable(complaint.Record{Status: "resolved", AssignedRole: "staff", StatusUpdatedBy: "h-2", StatusUpdatedByRole: "staff"}))
}

func TestAdministrator_FeedbackRequiresHandlerClassAuthor(t *testing.T) {
	v := adminVis(t, false)

	staffAuthored := complaint.Record{FeedbackHistory: []complaint.FeedbackEntry{{AuthorID: "h-1", AuthorRole: "staff", At: 100}}}
	assert.True(t, v.FeedbackEventable(staffAuthored))

	adminAuthored := complaint.Record{FeedbackHistory: []complaint.FeedbackEntry{{AuthorID: "a-2", AuthorRole: "admin", At: 100}}}
	assert.False(t, v.FeedbackEventable(adminAuthored))

	assert.False(t, v.FeedbackEventable(complaint.Record{Feedback: "legacy only"}))
}

func TestCreationKind_PerRole(t *testing.T) {
	_, ok := ownerVis(t).CreationKind()
	assert.False(t, ok)

	kind, ok := handlerVis(t).CreationKind()
	require.True(t, ok)
	assert.Equal(t, notification.KindAssignment, kind)

	kind, ok = adminVis(t, false).CreationKind()
	require.True(t, ok)
	assert.Equal(t, notification.KindNew, kind)
}

func TestCreationBackfillAt_PerRole(t *testing.T) {
	r := complaint.Record{SubmittedAt: 111, AssignmentUpdatedAt: 222}
	assert.Equal(t, int64(0), ownerVis(t).CreationBackfillAt(r))
	assert.Equal(t, int64(222), handlerVis(t).CreationBackfillAt(r))
	assert.Equal(t, int64(111), adminVis(t, false).CreationBackfillAt(r))
}
