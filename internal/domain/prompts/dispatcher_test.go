package prompts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type mockExecutor struct {
	mu      sync.Mutex
	calls   []PromptRequest
	started chan string
	release chan struct{}
	resp    string
	err     error
}

func (m *mockExecutor) Execute(ctx context.Context, promptID, promptText string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, PromptRequest{PromptID: promptID, PromptText: promptText})
	m.mu.Unlock()
	if m.started != nil {
		m.started <- promptID
	}
	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return "", m.err
	}
	return m.resp + promptID, nil
}

func newTestDispatcher(t *testing.T, exec Executor, policy Policy) *Dispatcher {
	return NewDispatcher(exec, mustLibrary(t), policy, zerolog.Nop())
}

func TestDispatcher_RunSucceeds(t *testing.T) {
	exec := &mockExecutor{resp: "answer for "}
	d := newTestDispatcher(t, exec, PolicyReject)

	if s := d.Status("s1"); s.Status != StatusIdle {
		t.Fatalf("expected idle, got %s", s.Status)
	}
	resp, err := d.Run(context.Background(), "s1", PromptRequest{PromptID: "p1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "answer for p1" {
		t.Errorf("unexpected response %q", resp)
	}
	if len(exec.calls) != 1 || exec.calls[0].PromptText == "" {
		t.Errorf("expected catalog text to be filled in, got %+v", exec.calls)
	}
	s := d.Status("s1")
	if s.Status != StatusSucceeded || s.ResponseText != "answer for p1" || s.PromptID != "p1" {
		t.Errorf("unexpected status %+v", s)
	}
}

func TestDispatcher_StatusDoesNotStoreSessions(t *testing.T) {
	d := newTestDispatcher(t, &mockExecutor{}, PolicyReject)
	for i := 0; i < 100; i++ {
		if s := d.Status(fmt.Sprintf("tab-%d", i)); s.Status != StatusIdle {
			t.Fatalf("expected idle, got %s", s.Status)
		}
	}
	if n := d.sessions.Len(); n != 0 {
		t.Errorf("expected reads to store no sessions, got %d", n)
	}
}

func TestDispatcher_RunFails(t *testing.T) {
	d := newTestDispatcher(t, &mockExecutor{err: errors.New("model unavailable")}, PolicyReject)
	if _, err := d.Run(context.Background(), "s1", PromptRequest{PromptID: "custom", PromptText: "Free text"}); err == nil {
		t.Fatal("expected error")
	}
	s := d.Status("s1")
	if s.Status != StatusFailed || s.ErrorMessage != "model unavailable" {
		t.Errorf("unexpected status %+v", s)
	}
}

func TestDispatcher_UnknownPromptWithoutText(t *testing.T) {
	exec := &mockExecutor{}
	d := newTestDispatcher(t, exec, PolicyReject)
	if _, err := d.Run(context.Background(), "s1", PromptRequest{PromptID: "missing"}); !errors.Is(err, ErrUnknownPrompt) {
		t.Errorf("expected ErrUnknownPrompt, got %v", err)
	}
	if len(exec.calls) != 0 {
		t.Error("executor should not be called")
	}
	if s := d.Status("s1"); s.Status != StatusIdle {
		t.Errorf("expected idle status, got %s", s.Status)
	}
}

func TestDispatcher_RejectWhileRunning(t *testing.T) {
	exec := &mockExecutor{started: make(chan string, 1), release: make(chan struct{})}
	d := newTestDispatcher(t, exec, PolicyReject)

	done := make(chan error, 1)
	go func() {
		_, err := d.Run(context.Background(), "s1", PromptRequest{PromptID: "p1"})
		done <- err
	}()
	<-exec.started

	if s := d.Status("s1"); s.Status != StatusRunning {
		t.Errorf("expected running, got %s", s.Status)
	}
	if _, err := d.Run(context.Background(), "s1", PromptRequest{PromptID: "p2"}); !errors.Is(err, ErrExecutionInFlight) {
		t.Errorf("expected ErrExecutionInFlight, got %v", err)
	}

	// Another session is unaffected.
	exec.started = nil
	other := make(chan error, 1)
	go func() {
		_, err := d.Run(context.Background(), "s2", PromptRequest{PromptID: "p3"})
		other <- err
	}()

	close(exec.release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := <-other; err != nil {
		t.Fatalf("unexpected error for other session: %v", err)
	}
	if s := d.Status("s1"); s.Status != StatusSucceeded || s.PromptID != "p1" {
		t.Errorf("unexpected final status %+v", s)
	}
}

func TestDispatcher_AllowOverlapping(t *testing.T) {
	exec := &mockExecutor{started: make(chan string, 2), release: make(chan struct{}), resp: "r:"}
	d := newTestDispatcher(t, exec, PolicyAllow)

	first := make(chan string, 1)
	go func() {
		resp, _ := d.Run(context.Background(), "s1", PromptRequest{PromptID: "p1"})
		first <- resp
	}()
	<-exec.started
	second := make(chan string, 1)
	go func() {
		resp, _ := d.Run(context.Background(), "s1", PromptRequest{PromptID: "p2"})
		second <- resp
	}()
	<-exec.started

	close(exec.release)
	if got := <-first; got != "r:p1" {
		t.Errorf("first caller got %q", got)
	}
	if got := <-second; got != "r:p2" {
		t.Errorf("second caller got %q", got)
	}
	if s := d.Status("s1"); s.PromptID != "p2" || s.ResponseText != "r:p2" {
		t.Errorf("expected status to follow latest run, got %+v", s)
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyReject, "reject": PolicyReject, "ALLOW": PolicyAllow} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("queue"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
