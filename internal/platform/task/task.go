// Package task tracks the lifecycle of one-shot asynchronous requests and
// implements last-request-wins resolution with a monotonically increasing token.
package task

import (
	"sync"
	"time"
)

// Status is the observable state of a tracked request.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Token identifies one request. Later requests always carry larger tokens.
type Token uint64

// State is a point-in-time copy of a tracker.
type State[T any] struct {
	Status    Status    `json:"status"`
	Key       string    `json:"key,omitempty"`
	Token     Token     `json:"token"`
	Value     T         `json:"value,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Tracker holds the state of the latest request. Resolutions carrying a token
// older than the latest Begin are discarded.
type Tracker[T any] struct {
	mu    sync.Mutex
	next  Token
	state State[T]
	now   func() time.Time
}

// NewTracker returns an idle tracker.
func NewTracker[T any]() *Tracker[T] {
	return &Tracker[T]{
		state: State[T]{Status: StatusIdle},
		now:   time.Now,
	}
}

// Begin starts a new request keyed by key and marks the tracker pending. The
// previous value is kept so readers can still show it while loading.
func (t *Tracker[T]) Begin(key string) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.begin(key)
}

// TryBegin starts a new request only when none is pending.
func (t *Tracker[T]) TryBegin(key string) (Token, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Status == StatusPending {
		return 0, false
	}
	return t.begin(key), true
}

func (t *Tracker[T]) begin(key string) Token {
	t.next++
	t.state.Token = t.next
	t.state.Key = key
	t.state.Status = StatusPending
	t.state.Error = ""
	t.state.UpdatedAt = t.now()
	return t.next
}

// Succeed applies v if tok is still the latest token.
func (t *Tracker[T]) Succeed(tok Token, v T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tok != t.state.Token {
		return false
	}
	t.state.Status = StatusSucceeded
	t.state.Value = v
	t.state.Error = ""
	t.state.UpdatedAt = t.now()
	return true
}

// Fail records err if tok is still the latest token.
func (t *Tracker[T]) Fail(tok Token, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tok != t.state.Token {
		return false
	}
	t.state.Status = StatusFailed
	if err != nil {
		t.state.Error = err.Error()
	}
	t.state.UpdatedAt = t.now()
	return true
}

// Latest reports whether tok is the most recently issued token.
func (t *Tracker[T]) Latest(tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tok == t.state.Token
}

// Snapshot returns a copy of the current state.
func (t *Tracker[T]) Snapshot() State[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
