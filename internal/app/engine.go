// internal/app/engine.go
package app

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"complaint_notification_engine/internal/domain/complaint"
	"complaint_notification_engine/internal/domain/notification"
	"complaint_notification_engine/internal/domain/state"
	"complaint_notification_engine/internal/domain/stream"
	"complaint_notification_engine/internal/domain/viewer"
)

// priorState is the per-record memo of the fields last observed, used
// purely for diffing. Its lifetime is one subscription.
type priorState struct {
	status        string
	feedbackCount int
	feedbackValue string
	assignedRole  string
	assignedTo    string
}

func memoOf(r complaint.Record) priorState {
	return priorState{
		status:        r.Status,
		feedbackCount: r.FeedbackCount(),
		feedbackValue: r.Feedback,
		assignedRole:  r.AssignedRole,
		assignedTo:    r.AssignedTo,
	}
}

// Engine derives deduplicated notification events for one viewer scope from
// a live stream of complaint snapshots, and maintains the persisted
// read/unread ledger across sessions and identity switches.
//
// All snapshot processing and consumer calls are serialized behind one
// mutex; a subscription generation counter turns callbacks from a torn-down
// subscription into no-ops.
type Engine struct {
	source stream.Source
	store  state.Store
	clock  Clock
	cfg    Config
	logger *logrus.Logger

	mu         sync.Mutex
	ctx        context.Context
	generation uint64

	scope    viewer.Scope
	hasScope bool
	vis      viewer.Visibility
	unsub    stream.Unsubscribe

	awaitingFirst bool
	loading       bool
	memo          map[string]priorState

	ledger    *notification.Ledger
	seen      *notification.SeenSet
	dismissed *notification.DismissedSet

	undoBatch []string
	undoTimer Timer
	undoSeq   uint64
}

// NewEngine wires an engine over its ports. The engine is idle until Bind
// resolves a viewer scope.
func NewEngine(source stream.Source, store state.Store, clock Clock, cfg Config, logger *logrus.Logger) *Engine {
	return &Engine{
		source:    source,
		store:     store,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
		ctx:       context.Background(),
		ledger:    notification.NewLedger(0),
		seen:      notification.NewSeenSet(cfg.SeenCap),
		dismissed: notification.NewDismissedSet(),
	}
}

// Bind resolves the viewer scope for the given identity context (with a
// cached fallback profile), loads the scope's persisted state and
// establishes the stream subscription. Any previous binding is fully torn
// down first: its subscription is cancelled and its in-memory ledger, memo
// and seen-state are cleared before the new scope's state is loaded.
//
// An unresolvable scope is not an error: the engine stays idle with
// loading=false and an empty ledger.
func (e *Engine) Bind(ctx context.Context, current, fallback viewer.Identity) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.teardownLocked()
	e.ctx = ctx

	scope, ok := viewer.Resolve(current, fallback)
	if !ok {
		e.logger.Info("viewer scope unresolved; engine idle")
		return nil
	}

	e.scope = scope
	e.hasScope = true
	e.vis = viewer.NewVisibility(scope, e.cfg.AdminSuppressSelfAuthored)
	e.memo = make(map[string]priorState)
	e.awaitingFirst = true
	e.loading = true

	e.ledger = notification.DecodeLedger(e.loadValue(scope.LedgerKey()), e.cfg.ledgerCap(scope.Kind))
	e.seen = notification.DecodeSeenSet(e.loadValue(scope.SeenKey()), e.cfg.SeenCap)
	e.dismissed = notification.DecodeDismissedSet(e.loadValue(scope.DismissedKey()))

	gen := e.generation
	unsub, err := e.source.Subscribe(ctx, scope.StreamFilter(),
		func(snap stream.Snapshot) { e.handleSnapshot(gen, snap) },
		func(streamErr error) { e.handleStreamError(gen, streamErr) },
	)
	if err != nil {
		e.loading = false
		e.hasScope = false
		return fmt.Errorf("failed to subscribe for scope %s: %w", scope.Key, err)
	}
	e.unsub = unsub

	e.logger.WithFields(logrus.Fields{
		"role": scope.Kind,
		"key":  scope.Key,
	}).Info("viewer scope bound, subscription established")
	return nil
}

// Close tears down the current subscription and clears all in-memory state.
// Safe to call multiple times.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.teardownLocked()
}

// teardownLocked invalidates outstanding callbacks, unsubscribes, and
// resets every piece of per-scope state.
func (e *Engine) teardownLocked() {
	e.generation++
	if e.unsub != nil {
		e.unsub()
		e.unsub = nil
	}
	e.cancelUndoLocked()
	e.scope = viewer.Scope{}
	e.hasScope = false
	e.awaitingFirst = false
	e.loading = false
	e.memo = nil
	e.ledger = notification.NewLedger(0)
	e.seen = notification.NewSeenSet(e.cfg.SeenCap)
	e.dismissed = notification.NewDismissedSet()
	e.ctx = context.Background()
}

func (e *Engine) handleSnapshot(gen uint64, snap stream.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return // stale subscription
	}
	if e.awaitingFirst {
		e.backfillLocked(snap)
		e.awaitingFirst = false
		e.loading = false
		return
	}
	e.diffLocked(snap)
}

func (e *Engine) handleStreamError(gen uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return
	}
	e.loading = false
	e.logger.WithError(err).Warn("stream delivery error; retaining last known ledger")
}

// backfillLocked runs exactly once per subscription, against the full
// document set of the first snapshot. It synthesizes at most one event per
// (record, kind) from the records' own stored timestamps, seeds the memo,
// and merges the result into whatever was already persisted for the scope.
func (e *Engine) backfillLocked(snap stream.Snapshot) {
	var events []notification.Event
	for _, doc := range snap.Docs {
		r := complaint.FromDocument(doc.ID, doc.Fields)
		if !e.vis.InScope(r) {
			delete(e.memo, r.ID)
			continue
		}

		if kind, ok := e.vis.CreationKind(); ok {
			if at := e.vis.CreationBackfillAt(r); at > 0 {
				events = append(events, e.creationEvent(r, kind, at))
			}
		}

		// Non-positive stored timestamps are suppressed so bogus entries
		// dated epoch zero never reach the feed.
		if r.StatusUpdatedAt > 0 && e.vis.StatusEventable(r) {
			events = append(events, e.statusEvent(r, r.StatusUpdatedAt))
		}

		if at := r.LatestFeedbackAt(); r.HasFeedback() && at > 0 && e.vis.FeedbackEventable(r) {
			events = append(events, e.feedbackEvent(r, at))
		}

		e.memo[r.ID] = memoOf(r)
	}

	if len(events) > 0 {
		e.logger.WithField("count", len(events)).Debug("backfill synthesized events")
	}
	e.ledger.Merge(events...)
	e.persistLedgerLocked()
}

// diffLocked processes one incremental delivery: only the changed entries,
// compared against the memo. The memo is updated for every in-scope change
// whether or not an event was emitted; skipping that would re-fire the
// same delta on the next snapshot.
func (e *Engine) diffLocked(snap stream.Snapshot) {
	now := e.clock.Now().UnixMilli()
	var events []notification.Event

	for _, ch := range snap.Changes {
		r := complaint.FromDocument(ch.Doc.ID, ch.Doc.Fields)

		if ch.Type == stream.ChangeRemoved || !e.vis.InScope(r) {
			delete(e.memo, r.ID)
			continue
		}
		prev := e.memo[r.ID]

		switch ch.Type {
		case stream.ChangeAdded:
			// An added change is about the viewer's visibility changing,
			// not the record's history, so it is timestamped "now".
			if kind, ok := e.vis.CreationKind(); ok {
				events = append(events, e.creationEvent(r, kind, now))
			}

		case stream.ChangeModified:
			if r.Status != prev.status && e.vis.StatusEventable(r) {
				at := r.StatusUpdatedAt
				if at <= 0 {
					at = now
				}
				events = append(events, e.statusEvent(r, at))
			}

			feedbackGrew := r.FeedbackCount() > prev.feedbackCount
			feedbackTextChanged := r.Feedback != "" && r.Feedback != prev.feedbackValue
			if (feedbackGrew || feedbackTextChanged) && e.vis.FeedbackEventable(r) {
				at := now
				if last, ok := r.LastFeedback(); ok && last.At > 0 {
					at = last.At
				}
				events = append(events, e.feedbackEvent(r, at))
			}
		}

		e.memo[r.ID] = memoOf(r)
	}

	if len(events) == 0 {
		return
	}
	if e.ledger.Merge(events...) {
		e.persistLedgerLocked()
	}
}

func (e *Engine) creationEvent(r complaint.Record, kind notification.Kind, at int64) notification.Event {
	title := "New complaint submitted"
	if kind == notification.KindAssignment {
		title = "New assigned complaint"
	}
	return notification.Event{
		ID:         notification.EventID(r.ID, kind, strconv.FormatInt(at, 10)),
		Kind:       kind,
		RecordID:   r.ID,
		Category:   r.Category,
		Title:      title,
		OccurredAt: at,
	}
}

func (e *Engine) statusEvent(r complaint.Record, at int64) notification.Event {
	title := "Status updated"
	if r.Status != "" {
		title = "Status updated to " + r.Status
	}
	return notification.Event{
		ID:         notification.EventID(r.ID, notification.KindStatus, fmt.Sprintf("%s-%d", r.Status, at)),
		Kind:       notification.KindStatus,
		RecordID:   r.ID,
		Category:   r.Category,
		Title:      title,
		OccurredAt: at,
	}
}

func (e *Engine) feedbackEvent(r complaint.Record, at int64) notification.Event {
	var title string
	switch e.scope.Kind {
	case viewer.RoleHandler:
		title = "New feedback from admin"
	case viewer.RoleAdministrator:
		title = "New feedback from staff"
	default:
		title = "New feedback received"
	}
	return notification.Event{
		ID:         notification.EventID(r.ID, notification.KindFeedback, fmt.Sprintf("%d-%d", r.FeedbackCount(), at)),
		Kind:       notification.KindFeedback,
		RecordID:   r.ID,
		Category:   r.Category,
		Title:      title,
		OccurredAt: at,
	}
}

// --- persistence helpers ---

func (e *Engine) loadValue(key string) string {
	raw, ok, err := e.store.Get(e.ctx, key)
	if err != nil {
		e.logger.WithError(err).Warnf("state load failed for %q; starting empty", key)
		return ""
	}
	if !ok {
		return ""
	}
	return raw
}

func (e *Engine) persistLedgerLocked() {
	if !e.hasScope {
		return
	}
	encoded, err := e.ledger.Encode()
	if err != nil {
		e.logger.WithError(err).Error("failed to encode ledger")
		return
	}
	if err := e.store.Set(e.ctx, e.scope.LedgerKey(), encoded); err != nil {
		e.logger.WithError(err).Warn("failed to persist ledger")
	}
}

func (e *Engine) persistSeenLocked() {
	if !e.hasScope {
		return
	}
	encoded, err := e.seen.Encode()
	if err != nil {
		e.logger.WithError(err).Error("failed to encode seen-state")
		return
	}
	if err := e.store.Set(e.ctx, e.scope.SeenKey(), encoded); err != nil {
		e.logger.WithError(err).Warn("failed to persist seen-state")
	}
}

func (e *Engine) persistDismissedLocked() {
	if !e.hasScope {
		return
	}
	encoded, err := e.dismissed.Encode()
	if err != nil {
		e.logger.WithError(err).Error("failed to encode dismissed-set")
		return
	}
	if err := e.store.Set(e.ctx, e.scope.DismissedKey(), encoded); err != nil {
		e.logger.WithError(err).Warn("failed to persist dismissed-set")
	}
}

// --- consumer surface ---

// Notifications returns the ledger, newest first.
func (e *Engine) Notifications() []notification.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.List()
}

// Loading reports whether the engine is between scope resolution and the
// first processed snapshot.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// UnreadCount returns the number of ledger entries not yet marked seen.
func (e *Engine) UnreadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unreadCountLocked()
}

func (e *Engine) unreadCountLocked() int {
	count := 0
	for _, ev := range e.ledger.List() {
		if !e.seen.Has(ev.ID) {
			count++
		}
	}
	return count
}

// SeenIDs returns a copy of the acknowledged event ids.
func (e *Engine) SeenIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seen.IDs()
}

// Seen reports whether a single event id has been acknowledged.
func (e *Engine) Seen(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seen.Has(id)
}

// MarkNotificationSeen acknowledges one event id. Idempotent.
func (e *Engine) MarkNotificationSeen(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seen.Add(id) {
		e.persistSeenLocked()
	}
}

// MarkAllSeen acknowledges every event currently in the ledger. Idempotent.
func (e *Engine) MarkAllSeen() {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, e.ledger.Len())
	for _, ev := range e.ledger.List() {
		ids = append(ids, ev.ID)
	}
	if e.seen.AddAll(ids) {
		e.persistSeenLocked()
	}
}

// Dismiss tombstones one event, recording it as the most recent dismissal
// batch and starting (or restarting) the undo window.
func (e *Engine) Dismiss(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.dismissed.Add(id) {
		return
	}
	e.startUndoBatchLocked([]string{id})
	e.persistDismissedLocked()
}

// DismissAll tombstones every currently visible (non-dismissed) ledger
// entry as one batch.
func (e *Engine) DismissAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	var batch []string
	for _, ev := range e.ledger.List() {
		if e.dismissed.Has(ev.ID) {
			continue
		}
		e.dismissed.Add(ev.ID)
		batch = append(batch, ev.ID)
	}
	if len(batch) == 0 {
		return
	}
	e.startUndoBatchLocked(batch)
	e.persistDismissedLocked()
}

// UndoDismiss restores the last dismissal batch if its undo window is still
// open. After the window elapses the batch is forgotten and this is a no-op.
func (e *Engine) UndoDismiss() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.undoBatch) == 0 {
		return
	}
	batch := e.undoBatch
	e.cancelUndoLocked()
	if e.dismissed.Remove(batch) {
		e.persistDismissedLocked()
	}
}

func (e *Engine) startUndoBatchLocked(batch []string) {
	if e.undoTimer != nil {
		e.undoTimer.Stop()
	}
	e.undoBatch = batch
	e.undoSeq++
	seq := e.undoSeq
	e.undoTimer = e.clock.AfterFunc(e.cfg.UndoWindow, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if seq != e.undoSeq {
			return
		}
		e.undoBatch = nil
		e.undoTimer = nil
	})
}

func (e *Engine) cancelUndoLocked() {
	if e.undoTimer != nil {
		e.undoTimer.Stop()
		e.undoTimer = nil
	}
	e.undoBatch = nil
	e.undoSeq++
}

// Visible returns the ledger minus tombstoned entries, newest first.
func (e *Engine) Visible() []notification.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []notification.Event
	for _, ev := range e.ledger.List() {
		if !e.dismissed.Has(ev.ID) {
			out = append(out, ev)
		}
	}
	return out
}

// VisibleUnread returns the visible feed filtered to unacknowledged entries.
func (e *Engine) VisibleUnread() []notification.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []notification.Event
	for _, ev := range e.ledger.List() {
		if !e.dismissed.Has(ev.ID) && !e.seen.Has(ev.ID) {
			out = append(out, ev)
		}
	}
	return out
}

// Scope returns the currently bound viewer scope, if any.
func (e *Engine) Scope() (viewer.Scope, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scope, e.hasScope
}
