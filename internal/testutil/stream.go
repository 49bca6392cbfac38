package testutil

import (
	"context"
	"sync"

	"complaint_notification_engine/internal/domain/stream"
)

// ScriptedSource is a stream.Source whose deliveries are driven explicitly
// by the test. Each Subscribe opens a new scripted subscription; Deliver
// and Fail act on the most recent one.
type ScriptedSource struct {
	mu   sync.Mutex
	subs []*scriptedSub
}

type scriptedSub struct {
	filter     stream.Filter
	onSnapshot stream.SnapshotHandler
	onError    stream.ErrorHandler
	cancelled  bool
	unsubCalls int
}

func NewScriptedSource() *ScriptedSource {
	return &ScriptedSource{}
}

func (s *ScriptedSource) Subscribe(
	_ context.Context,
	f stream.Filter,
	onSnapshot stream.SnapshotHandler,
	onError stream.ErrorHandler,
) (stream.Unsubscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &scriptedSub{filter: f, onSnapshot: onSnapshot, onError: onError}
	s.subs = append(s.subs, sub)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		sub.cancelled = true
		sub.unsubCalls++
	}, nil
}

func (s *ScriptedSource) current() *scriptedSub {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) == 0 {
		return nil
	}
	return s.subs[len(s.subs)-1]
}

// Deliver invokes the active subscription's snapshot handler synchronously.
func (s *ScriptedSource) Deliver(snap stream.Snapshot) {
	if sub := s.current(); sub != nil {
		sub.onSnapshot(snap)
	}
}

// DeliverTo invokes the handler of an older subscription (0-based order of
// Subscribe calls), simulating a stale callback after a scope switch.
func (s *ScriptedSource) DeliverTo(index int, snap stream.Snapshot) {
	s.mu.Lock()
	var sub *scriptedSub
	if index >= 0 && index < len(s.subs) {
		sub = s.subs[index]
	}
	s.mu.Unlock()
	if sub != nil {
		sub.onSnapshot(snap)
	}
}

// Fail invokes the active subscription's error handler.
func (s *ScriptedSource) Fail(err error) {
	if sub := s.current(); sub != nil {
		sub.onError(err)
	}
}

// SubscriptionCount returns how many Subscribe calls have been made.
func (s *ScriptedSource) SubscriptionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// LastFilter returns the filter of the most recent subscription.
func (s *ScriptedSource) LastFilter() stream.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) == 0 {
		return stream.Filter{}
	}
	return s.subs[len(s.subs)-1].filter
}

// Cancelled reports whether the subscription at index was unsubscribed.
func (s *ScriptedSource) Cancelled(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.subs) {
		return false
	}
	return s.subs[index].cancelled
}
