package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/task"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrReplyPending = errors.New("a reply is still pending")
)

// Fallback replies appended when the completer gives nothing usable.
const (
	EmptyReplyText = "Sorry, I could not generate a response."
	ErrorReplyText = "Sorry, something went wrong. Please try again."
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt"`
}

// Completer produces a reply for a user message.
type Completer interface {
	Chat(ctx context.Context, message string) (string, error)
}

type transcript struct {
	messages []Message
	pending  bool
}

// Relay forwards user messages to the Completer and keeps one append-only
// transcript per session. Only Send creates a transcript.
type Relay struct {
	completer Completer
	logger    zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions *task.Sessions[*transcript]
}

func NewRelay(completer Completer, logger zerolog.Logger) *Relay {
	return &Relay{
		completer: completer,
		logger:    logger,
		now:       time.Now,
		sessions:  task.NewSessions(task.DefaultSessionCapacity, func() *transcript { return &transcript{} }),
	}
}

// Send appends text as a user message, waits for the completer and appends
// exactly one assistant message. It returns the assistant message even when
// the completer failed; the error is only used for blank input or a pending
// reply, in which case the transcript is unchanged.
func (r *Relay) Send(ctx context.Context, sessionID, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	r.mu.Lock()
	t := r.sessions.Obtain(sessionID)
	if t.pending {
		r.mu.Unlock()
		return Message{}, ErrReplyPending
	}
	t.pending = true
	t.messages = append(t.messages, Message{Role: RoleUser, Content: text, SentAt: r.now()})
	r.mu.Unlock()

	reply, err := r.completer.Chat(ctx, text)
	switch {
	case err != nil:
		r.logger.Warn().Err(err).Str("session", sessionID).Msg("chat completion failed")
		reply = ErrorReplyText
	case strings.TrimSpace(reply) == "":
		reply = EmptyReplyText
	}

	msg := Message{Role: RoleAssistant, Content: reply, SentAt: r.now()}
	r.mu.Lock()
	// Clear or eviction may have dropped the transcript while the call was outstanding.
	if cur, ok := r.sessions.Get(sessionID); ok && cur == t {
		t.messages = append(t.messages, msg)
	}
	t.pending = false
	r.mu.Unlock()
	return msg, nil
}

// Transcript returns a copy of the session's messages.
func (r *Relay) Transcript(sessionID string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.sessions.Get(sessionID)
	if !ok {
		return []Message{}
	}
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Pending reports whether a reply is outstanding for the session.
func (r *Relay) Pending(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.sessions.Get(sessionID)
	return ok && t.pending
}

// Clear discards the session's transcript. A reply still in flight is dropped
// when it arrives.
func (r *Relay) Clear(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions.Remove(sessionID)
}
