package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sbai-works/drawctl/client"
	"github.com/sbai-works/drawctl/metrics"
	"github.com/sbai-works/drawctl/types"
)

// scriptedFetcher returns one response per call, in order, repeating the
// last entry once the script is exhausted.
type scriptedFetcher struct {
	mu     sync.Mutex
	script []func() (*types.ResultDocument, error)
	calls  int
}

func (f *scriptedFetcher) GetResults(_ context.Context, _ string) (*types.ResultDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	f.calls++
	return f.script[i]()
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func doc(status types.Status) func() (*types.ResultDocument, error) {
	return func() (*types.ResultDocument, error) {
		return &types.ResultDocument{SessionID: "abc123", Status: status}, nil
	}
}

func fail(err error) func() (*types.ResultDocument, error) {
	return func() (*types.ResultDocument, error) { return nil, err }
}

func TestWatchStopsOnCompleted(t *testing.T) {
	f := &scriptedFetcher{script: []func() (*types.ResultDocument, error){
		doc(types.StatusProcessing),
		doc(types.StatusCompleted),
	}}
	p := New(f, time.Millisecond, nil, nil)

	final, err := p.Watch(t.Context(), "abc123", nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if final.Status != types.StatusCompleted {
		t.Errorf("final status = %q, want completed", final.Status)
	}
	// Exactly one follow-up after the processing response.
	if got := f.callCount(); got != 2 {
		t.Errorf("fetch count = %d, want 2", got)
	}
}

func TestWatchContinuesThroughVLMAnalyzing(t *testing.T) {
	f := &scriptedFetcher{script: []func() (*types.ResultDocument, error){
		doc(types.StatusProcessing),
		doc(types.StatusVLMAnalyzing),
		doc(types.StatusCompleted),
	}}
	p := New(f, time.Millisecond, nil, nil)

	final, err := p.Watch(t.Context(), "abc123", nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if final.Status != types.StatusCompleted {
		t.Errorf("final status = %q, want completed", final.Status)
	}
	if got := f.callCount(); got != 3 {
		t.Errorf("fetch count = %d, want 3", got)
	}
}

func TestWatchStopsOnErrorStatus(t *testing.T) {
	f := &scriptedFetcher{script: []func() (*types.ResultDocument, error){
		doc(types.Status("error: VLM call failed")),
	}}
	p := New(f, time.Millisecond, nil, nil)

	final, err := p.Watch(t.Context(), "abc123", nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !final.Status.Errored() {
		t.Errorf("final status = %q, want error family", final.Status)
	}
	if got := f.callCount(); got != 1 {
		t.Errorf("fetch count = %d, want 1", got)
	}
}

func TestWatchStopsOnUnknownSession(t *testing.T) {
	f := &scriptedFetcher{script: []func() (*types.ResultDocument, error){
		fail(fmt.Errorf("session nope: %w", client.ErrSessionNotFound)),
	}}
	p := New(f, time.Millisecond, nil, nil)

	_, err := p.Watch(t.Context(), "nope", nil)
	if !errors.Is(err, client.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	if got := f.callCount(); got != 1 {
		t.Errorf("fetch count = %d, want 1 (no polling loop for unknown ids)", got)
	}
}

func TestWatchSurvivesTransientFailure(t *testing.T) {
	transient := &client.NetworkError{Surface: client.SurfaceResults, Err: errors.New("connection refused")}
	f := &scriptedFetcher{script: []func() (*types.ResultDocument, error){
		doc(types.StatusProcessing),
		fail(transient),
		doc(types.StatusCompleted),
	}}
	collector := metrics.NewCollector()
	p := New(f, time.Millisecond, nil, collector)

	var warnings int
	final, err := p.Watch(t.Context(), "abc123", func(u Update) {
		if u.Err != nil {
			warnings++
		}
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if final.Status != types.StatusCompleted {
		t.Errorf("final status = %q, want completed", final.Status)
	}
	if warnings != 1 {
		t.Errorf("transient warnings = %d, want 1", warnings)
	}
	if s := collector.Snapshot(); s.PollFailures != 1 {
		t.Errorf("PollFailures = %d, want 1", s.PollFailures)
	}
}

func TestWatchCancellation(t *testing.T) {
	f := &scriptedFetcher{script: []func() (*types.ResultDocument, error){
		doc(types.StatusProcessing),
	}}
	p := New(f, time.Hour, nil, nil) // interval long enough that only cancel ends the loop

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	var final *types.ResultDocument
	var watchErr error
	go func() {
		final, watchErr = p.Watch(ctx, "abc123", nil)
		close(done)
	}()

	// Let the first fetch land, then tear down.
	deadline := time.After(2 * time.Second)
	for f.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("first fetch never happened")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	if !errors.Is(watchErr, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", watchErr)
	}
	if final == nil || final.Status != types.StatusProcessing {
		t.Errorf("final = %+v, want last applied processing document", final)
	}
}

func TestTrackerDiscardsStaleResponse(t *testing.T) {
	collector := metrics.NewCollector()
	tr := NewTracker("abc123", collector)

	older := tr.Begin()
	newer := tr.Begin()

	// Newer request resolves first.
	if ok := tr.Apply(newer, &types.ResultDocument{SessionID: "abc123", Status: types.StatusCompleted}); !ok {
		t.Fatal("newer response was not applied")
	}

	// Older response arrives late: must be discarded, never regressing
	// the state from completed back to processing.
	if ok := tr.Apply(older, &types.ResultDocument{SessionID: "abc123", Status: types.StatusProcessing}); ok {
		t.Fatal("stale response was applied")
	}

	if got := tr.Document().Status; got != types.StatusCompleted {
		t.Errorf("document status = %q, want completed", got)
	}
	if s := collector.Snapshot(); s.StaleDiscarded != 1 {
		t.Errorf("StaleDiscarded = %d, want 1", s.StaleDiscarded)
	}
}

func TestTrackerManualRefreshSharesCounter(t *testing.T) {
	tr := NewTracker("abc123", nil)

	polled := tr.Begin()
	tr.Apply(polled, &types.ResultDocument{Status: types.StatusProcessing})

	// Out-of-band manual refresh draws from the same sequence.
	manual := tr.Begin()
	if manual <= polled {
		t.Errorf("manual seq %d not newer than polled seq %d", manual, polled)
	}
	if ok := tr.Apply(manual, &types.ResultDocument{Status: types.StatusCompleted}); !ok {
		t.Fatal("manual refresh was not applied")
	}
}
