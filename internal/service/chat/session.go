package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anubhav-ai/assistant/internal/model/chat"
)

// FallbackReply is appended in place of an assistant reply when the relay call fails.
const FallbackReply = "Sorry, I encountered an error. Please try again."

// Sender delivers one user message to the relay and returns the reply.
type Sender interface {
	Send(ctx context.Context, text string) (string, error)
}

// Option customises a Session.
type Option func(*Session)

// WithGreeting seeds the log with an assistant greeting.
func WithGreeting(text string) Option {
	return func(s *Session) {
		if strings.TrimSpace(text) != "" {
			s.messages = append(s.messages, s.newMessage(text, chat.OriginAssistant))
		}
	}
}

// WithLogger overrides slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithClock overrides time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session holds the visible conversation of one chat shell.
type Session struct {
	sender Sender
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	messages  []chat.Message
	loading   bool
	listening bool
	observers []func(chat.State)
}

// New returns a session that sends through sender.
func New(sender Sender, opts ...Option) *Session {
	s := &Session{
		sender:   sender,
		logger:   slog.Default(),
		now:      time.Now,
		messages: make([]chat.Message, 0, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to receive a snapshot after every state change.
func (s *Session) OnChange(fn func(chat.State)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Send appends text as a user message, waits for the reply and appends it.
// It returns false without touching state when text is blank or a request is
// already in flight. Failures become a fallback assistant message.
func (s *Session) Send(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		s.logger.Debug("send rejected, request in flight")
		return false
	}
	s.messages = append(s.messages, s.newMessage(text, chat.OriginUser))
	s.loading = true
	s.mu.Unlock()
	s.notify()

	reply := FallbackReply
	defer func() {
		s.mu.Lock()
		s.messages = append(s.messages, s.newMessage(reply, chat.OriginAssistant))
		s.loading = false
		s.mu.Unlock()
		s.notify()
	}()

	start := s.now()
	got, err := s.sender.Send(ctx, text)
	if err != nil {
		s.logger.Error("chat request failed", "error", err, "duration", s.now().Sub(start))
		return true
	}
	reply = got
	s.logger.Debug("chat reply received", "duration", s.now().Sub(start), "chars", len(got))
	return true
}

// SetListening records whether speech capture is active.
func (s *Session) SetListening(on bool) {
	s.mu.Lock()
	changed := s.listening != on
	s.listening = on
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() chat.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() chat.State {
	messages := make([]chat.Message, len(s.messages))
	copy(messages, s.messages)
	return chat.State{
		Messages:    messages,
		IsLoading:   s.loading,
		IsListening: s.listening,
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	state := s.snapshotLocked()
	observers := append([]func(chat.State){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
}

func (s *Session) newMessage(text string, origin chat.Origin) chat.Message {
	return chat.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Text:      text,
		Origin:    origin,
		Timestamp: s.now(),
	}
}
