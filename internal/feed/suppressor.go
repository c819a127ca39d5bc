// Package feed consumes the store's change-notification feed: a dispatcher
// loop applies echo suppression and reduces surviving events into a
// process-scoped cache.
package feed

import (
	"sync"
	"time"

	"github.com/hazim/reckon/internal/domain"
)

// DefaultWindow bounds how long a tracked write is expected to take to echo
// back through the feed. It is a heuristic on feed latency, not a
// correctness guarantee.
const DefaultWindow = 5 * time.Second

type trackedOp struct {
	kind domain.EventType
	at   time.Time
}

// Suppressor tracks operations this process just performed so their echoes
// arriving back through the change feed are not applied a second time.
// Notifications from other processes must still be applied, so matching is
// per tracked (entity id, event kind) pair and each match is consumed
// exactly once.
type Suppressor struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	pending map[string]trackedOp
}

// NewSuppressor creates a Suppressor with the given expiry window. A
// non-positive window selects DefaultWindow.
func NewSuppressor(window time.Duration) *Suppressor {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Suppressor{
		window:  window,
		now:     time.Now,
		pending: make(map[string]trackedOp),
	}
}

// Track records the expectation that a notification for entityID with the
// given kind will arrive shortly. The expectation expires after the window
// whether or not it is consumed. Tracking again for the same entity replaces
// the previous expectation.
func (s *Suppressor) Track(entityID string, kind domain.EventType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[entityID] = trackedOp{kind: kind, at: s.now()}
}

// ShouldSuppress reports whether an incoming notification matches a live
// tracked operation, consuming it on match. Expired expectations are purged
// on sight. A kind mismatch does not consume the expectation: a tracked
// UPDATE must not swallow an unrelated DELETE for the same entity.
func (s *Suppressor) ShouldSuppress(entityID string, kind domain.EventType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.pending[entityID]
	if !ok {
		return false
	}

	if s.now().Sub(op.at) >= s.window {
		delete(s.pending, entityID)
		return false
	}

	if op.kind != kind {
		return false
	}

	delete(s.pending, entityID)

	return true
}

// Sweep drops every expired expectation. The dispatcher calls it
// periodically so that tracked operations self-expire even when no matching
// notification ever arrives.
func (s *Suppressor) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, op := range s.pending {
		if now.Sub(op.at) >= s.window {
			delete(s.pending, id)
		}
	}
}

// Pending returns the number of live expectations.
func (s *Suppressor) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}
