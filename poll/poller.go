package poll

import (
	"context"
	"errors"
	"time"

	"github.com/sbai-works/drawctl/client"
	"github.com/sbai-works/drawctl/log"
	"github.com/sbai-works/drawctl/metrics"
	"github.com/sbai-works/drawctl/types"
)

// DefaultInterval is the fixed delay between follow-up fetches while the
// session status is still active, matching the original viewer's 3000 ms.
const DefaultInterval = 3 * time.Second

// Fetcher fetches one result document. Satisfied by *client.Client.
type Fetcher interface {
	GetResults(ctx context.Context, sessionID string) (*types.ResultDocument, error)
}

// Update is delivered to the watch callback after every fetch attempt.
// Either Document or Err is set: a transient failure carries only Err and
// does not stop the loop.
type Update struct {
	Document *types.ResultDocument
	Err      error
}

// Poller drives the fetch loop for result documents.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *log.Logger
	metrics  *metrics.Collector
}

// New creates a poller. A non-positive interval falls back to DefaultInterval.
func New(fetcher Fetcher, interval time.Duration, logger *log.Logger, collector *metrics.Collector) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.NewLogger(false)
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		logger:   logger,
		metrics:  collector,
	}
}

// Interval returns the configured follow-up delay.
func (p *Poller) Interval() time.Duration { return p.interval }

// Watch fetches the session's result document until it reaches a terminal
// status, then returns the final document. Transition rule: after a fetch
// returning an active status, exactly one follow-up fetch is scheduled
// after the fixed interval; any other status stops the loop.
//
// Error handling:
//   - client.ErrSessionNotFound stops immediately (no infinite polling on
//     unknown ids; the error surfaces before any timer is armed).
//   - Any other fetch error is transient: it is reported through onUpdate
//     and logged, and the loop keeps its schedule.
//
// Cancelling ctx tears the loop down between fetches; no timer outlives
// the call. onUpdate may be nil.
func (p *Poller) Watch(ctx context.Context, sessionID string, onUpdate func(Update)) (*types.ResultDocument, error) {
	tracker := NewTracker(sessionID, p.metrics)
	logger := p.logger.WithSession(sessionID)

	for {
		seq := tracker.Begin()
		p.metrics.IncPollIssued()

		doc, err := p.fetcher.GetResults(ctx, sessionID)
		switch {
		case err == nil:
			if tracker.Apply(seq, doc) {
				if onUpdate != nil {
					onUpdate(Update{Document: doc})
				}
				if doc.Status.Terminal() {
					return doc, nil
				}
			}

		case errors.Is(err, client.ErrSessionNotFound):
			return nil, err

		case ctx.Err() != nil:
			return tracker.Document(), ctx.Err()

		default:
			p.metrics.IncPollFailure()
			logger.Warn("poll fetch failed", map[string]any{"error": err.Error()})
			if onUpdate != nil {
				onUpdate(Update{Err: err})
			}
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return tracker.Document(), ctx.Err()
		case <-timer.C:
		}
	}
}
