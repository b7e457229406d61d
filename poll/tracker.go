// Package poll implements the result-polling state machine for a session.
//
// A Tracker guards per-session document state against out-of-order
// responses; a Poller drives the fixed-interval fetch loop until the
// session reaches a terminal status.
package poll

import (
	"sync"

	"github.com/sbai-works/drawctl/metrics"
	"github.com/sbai-works/drawctl/types"
)

// Tracker owns the result-document state for exactly one session id.
// Every fetch obtains a sequence token from Begin before issuing the
// request; Apply discards any response whose token is older than the last
// applied one, so a slow response can never overwrite fresher state (the
// UI must not regress from completed back to processing).
type Tracker struct {
	mu        sync.Mutex
	sessionID string
	nextSeq   uint64
	applied   uint64
	doc       *types.ResultDocument
	metrics   *metrics.Collector
}

// NewTracker creates a tracker bound to one session id.
func NewTracker(sessionID string, collector *metrics.Collector) *Tracker {
	return &Tracker{sessionID: sessionID, metrics: collector}
}

// SessionID returns the session this tracker is bound to.
func (t *Tracker) SessionID() string { return t.sessionID }

// Begin issues a new fetch sequence token. Tokens are strictly monotonic;
// a manual refresh and a timer-scheduled fetch draw from the same counter
// so ordering holds across both paths.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextSeq++
	return t.nextSeq
}

// Apply installs doc as the current state if seq is newer than the last
// applied response. Returns false (and leaves state untouched) for stale
// responses.
func (t *Tracker) Apply(seq uint64, doc *types.ResultDocument) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seq <= t.applied {
		t.metrics.IncStaleDiscarded()
		return false
	}
	t.applied = seq
	t.doc = doc
	return true
}

// Document returns the last applied document, or nil before the first
// successful fetch.
func (t *Tracker) Document() *types.ResultDocument {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doc
}
