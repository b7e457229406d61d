// Package metrics provides in-process counters for one CLI invocation.
//
// The Collector accumulates client-side counters (uploads, polls, stale
// discards, chat sends, cache activity). It is a leaf package with no
// internal dependencies. All increment methods are nil-receiver safe so
// callers never need to guard.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Upload flow
	UploadsStarted   int64
	UploadsCompleted int64
	UploadsFailed    int64

	// Result polling
	PollsIssued    int64
	PollFailures   int64
	StaleDiscarded int64

	// Chat
	ChatSends int64

	// Completed-document cache
	CacheHits   int64
	CacheMisses int64
}

// Collector accumulates counters during a single CLI invocation.
// Thread-safe via sync.Mutex.
type Collector struct {
	mu sync.Mutex

	uploadsStarted   int64
	uploadsCompleted int64
	uploadsFailed    int64

	pollsIssued    int64
	pollFailures   int64
	staleDiscarded int64

	chatSends int64

	cacheHits   int64
	cacheMisses int64
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// IncUploadStarted records an upload request being issued.
func (c *Collector) IncUploadStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.uploadsStarted++
	c.mu.Unlock()
}

// IncUploadCompleted records an accepted upload.
func (c *Collector) IncUploadCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.uploadsCompleted++
	c.mu.Unlock()
}

// IncUploadFailed records a rejected or failed upload.
func (c *Collector) IncUploadFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.uploadsFailed++
	c.mu.Unlock()
}

// IncPollIssued records one result fetch issued by the poller.
func (c *Collector) IncPollIssued() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.pollsIssued++
	c.mu.Unlock()
}

// IncPollFailure records a transient poll failure.
func (c *Collector) IncPollFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.pollFailures++
	c.mu.Unlock()
}

// IncStaleDiscarded records a late response discarded by the sequence guard.
func (c *Collector) IncStaleDiscarded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.staleDiscarded++
	c.mu.Unlock()
}

// IncChatSend records one chat request issued.
func (c *Collector) IncChatSend() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.chatSends++
	c.mu.Unlock()
}

// IncCacheHit records a completed document served from the local cache.
func (c *Collector) IncCacheHit() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cacheHits++
	c.mu.Unlock()
}

// IncCacheMiss records a cache lookup that fell through to the network.
func (c *Collector) IncCacheMiss() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cacheMisses++
	c.mu.Unlock()
}

// Snapshot returns an immutable copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		UploadsStarted:   c.uploadsStarted,
		UploadsCompleted: c.uploadsCompleted,
		UploadsFailed:    c.uploadsFailed,
		PollsIssued:      c.pollsIssued,
		PollFailures:     c.pollFailures,
		StaleDiscarded:   c.staleDiscarded,
		ChatSends:        c.chatSends,
		CacheHits:        c.cacheHits,
		CacheMisses:      c.cacheMisses,
	}
}
