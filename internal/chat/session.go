// Package chat implements the storefront's shopping-assistant widget: an
// append-only transcript plus an Assistant backend that generates replies.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of the transcript.
type Message struct {
	ID   string
	Role Role
	Text string
	// Failed marks a model message that stands in for a reply the assistant
	// could not produce, so the view can offer a retry affordance.
	Failed bool
}

// Turn is the role/text pair forwarded to the assistant; transcript ids
// are stripped before the call.
type Turn struct {
	Role Role
	Text string
}

// Assistant generates a reply to the conversation so far. The last turn of
// history is the new user message.
type Assistant interface {
	Reply(ctx context.Context, history []Turn) (string, error)
}

// errorReply is shown in place of a reply when the assistant call fails.
// The visitor must never be left without feedback.
const errorReply = "Ops! Tive um pequeno problema técnico. Tente novamente em instantes."

var (
	// ErrEmptyMessage rejects empty or whitespace-only sends.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy rejects a send while a previous one is awaiting its reply.
	ErrBusy = errors.New("a reply is already in flight")
)

// Session owns one visitor's transcript. At most one send may be in flight
// at a time, which keeps replies appended in the order their requests were
// issued. Session is safe for concurrent use: the awaiting flag makes a
// second Send a fast no-op rather than a queued call.
type Session struct {
	assistant Assistant
	lg        *zap.Logger

	mu       sync.Mutex
	messages []Message
	awaiting bool
}

// NewSession creates an empty chat session backed by assistant.
func NewSession(assistant Assistant, lg *zap.Logger) *Session {
	return &Session{assistant: assistant, lg: lg}
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Awaiting reports whether a send is currently in flight.
func (s *Session) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// Send appends text as a user message and blocks until the assistant
// replies. Empty input returns ErrEmptyMessage; a send while another is in
// flight returns ErrBusy, leaving the transcript unchanged. An assistant
// failure still appends a model message (marked Failed) so the outcome is
// always visible in the transcript.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return Message{}, ErrBusy
	}
	s.awaiting = true
	s.messages = append(s.messages, Message{
		ID:   uuid.New().String(),
		Role: RoleUser,
		Text: text,
	})
	history := make([]Turn, len(s.messages))
	for i, m := range s.messages {
		history[i] = Turn{Role: m.Role, Text: m.Text}
	}
	s.mu.Unlock()

	replyText, err := s.assistant.Reply(ctx, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaiting = false

	reply := Message{ID: uuid.New().String(), Role: RoleModel}
	if err != nil {
		s.lg.Error("Assistant reply failed", zap.Error(err))
		reply.Text = errorReply
		reply.Failed = true
	} else {
		reply.Text = replyText
	}
	s.messages = append(s.messages, reply)
	return reply, nil
}
