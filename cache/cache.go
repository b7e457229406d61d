// Package cache persists completed result documents on disk.
//
// A completed document is immutable, so serving repeat lookups locally is
// safe; anything still processing is never cached. Documents are stored
// one file per session id, msgpack-encoded.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/sbai-works/drawctl/metrics"
	"github.com/sbai-works/drawctl/types"
)

// ErrNotCacheable is returned by Put for documents that are not in the
// completed state.
var ErrNotCacheable = errors.New("document is not completed")

// Store is a directory-backed document cache. A nil Store or an empty
// directory disables caching; all methods degrade to misses.
type Store struct {
	dir     string
	metrics *metrics.Collector
}

// DefaultDir returns the per-user cache directory.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "drawctl")
}

// New creates a store rooted at dir. An empty dir disables the cache.
func New(dir string, collector *metrics.Collector) *Store {
	if dir == "" {
		return nil
	}
	return &Store{dir: dir, metrics: collector}
}

// Get returns the cached completed document for sessionID. A corrupt or
// unreadable entry counts as a miss; the caller falls through to the
// network.
func (s *Store) Get(sessionID string) (*types.ResultDocument, bool) {
	if s == nil || !validID(sessionID) {
		return nil, false
	}

	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		s.metrics.IncCacheMiss()
		return nil, false
	}

	var doc types.ResultDocument
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		s.metrics.IncCacheMiss()
		return nil, false
	}
	if doc.Status != types.StatusCompleted {
		s.metrics.IncCacheMiss()
		return nil, false
	}

	s.metrics.IncCacheHit()
	return &doc, true
}

// Put stores a completed document. Documents in any other state are
// rejected with ErrNotCacheable.
func (s *Store) Put(doc *types.ResultDocument) error {
	if s == nil {
		return nil
	}
	if doc == nil || doc.Status != types.StatusCompleted {
		return ErrNotCacheable
	}
	if !validID(doc.SessionID) {
		return fmt.Errorf("invalid session id %q", doc.SessionID)
	}

	data, err := msgpack.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Write-then-rename so a crash never leaves a torn entry behind.
	tmp := s.path(doc.SessionID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, s.path(doc.SessionID)); err != nil {
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

// Evict removes the entry for sessionID, if present.
func (s *Store) Evict(sessionID string) error {
	if s == nil || !validID(sessionID) {
		return nil
	}
	err := os.Remove(s.path(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".msgpack")
}

// validID rejects ids that could escape the cache directory.
func validID(id string) bool {
	if id == "" {
		return false
	}
	return !strings.ContainsAny(id, "/\\") && id != "." && id != ".."
}
