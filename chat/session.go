// Package chat implements the per-session chat transcript.
//
// The transcript is append-only and chronological: no message is ever
// edited or removed, and a failed send keeps the user's message in place
// so retry context is preserved.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/sbai-works/drawctl/log"
	"github.com/sbai-works/drawctl/types"
)

// DisplayRowCap limits how many table rows a surface renders per bot
// message. The transcript retains the full row set regardless.
const DisplayRowCap = 10

// FallbackMessage is the fixed bot message appended when a send fails,
// matching the original frontend's Korean fallback.
const FallbackMessage = "죄송합니다. 응답을 가져오는 중 오류가 발생했습니다."

// Sender issues one chat request. Satisfied by *client.Client.
type Sender interface {
	Chat(ctx context.Context, sessionID, message string) (*types.ChatReply, error)
}

// Session holds one chat transcript bound to a session id.
// Send is single-flight: a second send attempted while one is outstanding
// is a no-op, not queued.
type Session struct {
	mu        sync.Mutex
	sessionID string
	sender    Sender
	logger    *log.Logger
	inFlight  bool
	messages  []types.ChatMessage
}

// NewSession creates an empty transcript for the given session id.
func NewSession(sessionID string, sender Sender, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.NewLogger(false)
	}
	return &Session{
		sessionID: sessionID,
		sender:    sender,
		logger:    logger.WithSession(sessionID),
	}
}

// SessionID returns the bound session id.
func (s *Session) SessionID() string { return s.sessionID }

// InFlight reports whether a send is outstanding.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Messages returns a copy of the transcript in chronological order.
func (s *Session) Messages() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send submits one question and appends the exchange to the transcript.
// Preconditions: text is non-empty after trimming and no send is
// outstanding; otherwise Send returns false without issuing a request or
// touching the transcript. On failure the bot appends the fixed fallback
// message; the user message is never rolled back.
func (s *Session) Send(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return false
	}
	s.inFlight = true
	s.messages = append(s.messages, types.ChatMessage{Role: types.RoleUser, Content: text})
	s.mu.Unlock()

	reply, err := s.sender.Chat(ctx, s.sessionID, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if err != nil {
		s.logger.Warn("chat send failed", map[string]any{"error": err.Error()})
		s.messages = append(s.messages, types.ChatMessage{Role: types.RoleBot, Content: FallbackMessage})
		return true
	}

	s.messages = append(s.messages, types.ChatMessage{
		Role:     types.RoleBot,
		Content:  reply.Response,
		SQLQuery: reply.SQLQuery,
		Table:    BuildTable(reply.Data),
	})
	return true
}
