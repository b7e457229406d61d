// Package session holds the in-memory upload-session history and the
// single-flight upload flow. The history lives only for the process
// lifetime; the server's GET /sessions list is the durable copy.
package session

import (
	"sync"

	"github.com/sbai-works/drawctl/types"
)

// Store is the transient, newest-first list of upload sessions.
type Store struct {
	mu       sync.Mutex
	sessions []types.UploadSession
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Prepend inserts a freshly uploaded session at the head of the list.
func (s *Store) Prepend(sess types.UploadSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append([]types.UploadSession{sess}, s.sessions...)
}

// Replace swaps in the server-side history, typically on startup refresh.
func (s *Store) Replace(list []types.UploadSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make([]types.UploadSession, len(list))
	copy(s.sessions, list)
}

// Apply supersedes the stored copy of a session with the authoritative one
// embedded in a fetched result document. Unknown ids are ignored.
func (s *Store) Apply(doc *types.ResultDocument) {
	if doc == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == doc.SessionID {
			authoritative := doc.Session()
			authoritative.CreatedAt = s.sessions[i].CreatedAt
			s.sessions[i] = authoritative
			return
		}
	}
}

// All returns a copy of the history, newest first.
func (s *Store) All() []types.UploadSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.UploadSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
