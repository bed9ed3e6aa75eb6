package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/task"
)

// Executor runs prompt text on the external AI service.
type Executor interface {
	Execute(ctx context.Context, promptID, promptText string) (string, error)
}

// Policy decides what happens when a session starts a run while another is
// still in flight.
type Policy string

const (
	// PolicyReject refuses the second run with ErrExecutionInFlight.
	PolicyReject Policy = "reject"
	// PolicyAllow runs every invocation independently. The session status
	// follows the most recently started run.
	PolicyAllow Policy = "allow"
)

// ParsePolicy maps a config value to a Policy. Empty selects PolicyReject.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicyAllow:
		return PolicyAllow, nil
	}
	return "", fmt.Errorf("prompts: unknown in-flight policy %q", s)
}

// Dispatcher sends prompts to the Executor and tracks per-session status.
type Dispatcher struct {
	exec   Executor
	lib    *Library
	policy Policy
	logger zerolog.Logger

	sessions *task.Sessions[*task.Tracker[string]]
}

func NewDispatcher(exec Executor, lib *Library, policy Policy, logger zerolog.Logger) *Dispatcher {
	if policy == "" {
		policy = PolicyReject
	}
	return &Dispatcher{
		exec:     exec,
		lib:      lib,
		policy:   policy,
		logger:   logger,
		sessions: task.NewSessions(task.DefaultSessionCapacity, task.NewTracker[string]),
	}
}

// Policy returns the configured in-flight policy.
func (d *Dispatcher) Policy() Policy {
	return d.policy
}

// Resolve fills in missing prompt text from the catalog.
func (d *Dispatcher) Resolve(req PromptRequest) (PromptRequest, error) {
	req.PromptID = strings.TrimSpace(req.PromptID)
	if strings.TrimSpace(req.PromptText) != "" {
		return req, nil
	}
	if d.lib != nil {
		if p, ok := d.lib.Lookup(req.PromptID); ok {
			req.PromptText = p.PromptText
			return req, nil
		}
	}
	return req, fmt.Errorf("%w: %q has no prompt text", ErrUnknownPrompt, req.PromptID)
}

// Run executes req for sessionID and returns the response text.
func (d *Dispatcher) Run(ctx context.Context, sessionID string, req PromptRequest) (string, error) {
	req, err := d.Resolve(req)
	if err != nil {
		return "", err
	}

	tr := d.sessions.Obtain(sessionID)
	var tok task.Token
	if d.policy == PolicyAllow {
		tok = tr.Begin(req.PromptID)
	} else {
		var ok bool
		if tok, ok = tr.TryBegin(req.PromptID); !ok {
			return "", ErrExecutionInFlight
		}
	}

	resp, err := d.exec.Execute(ctx, req.PromptID, req.PromptText)
	if err != nil {
		tr.Fail(tok, err)
		d.logger.Warn().Err(err).Str("session", sessionID).Str("prompt_id", req.PromptID).Msg("prompt execution failed")
		return "", err
	}
	if !tr.Succeed(tok, resp) {
		d.logger.Debug().Str("session", sessionID).Str("prompt_id", req.PromptID).Msg("superseded prompt result not recorded")
	}
	return resp, nil
}

// Status returns the session's latest execution state. Unknown sessions are
// idle and are not stored.
func (d *Dispatcher) Status(sessionID string) Execution {
	var s task.State[string]
	if tr, ok := d.sessions.Get(sessionID); ok {
		s = tr.Snapshot()
	}
	ex := Execution{PromptID: s.Key, UpdatedAt: s.UpdatedAt}
	switch s.Status {
	case task.StatusPending:
		ex.Status = StatusRunning
	case task.StatusSucceeded:
		ex.Status = StatusSucceeded
		ex.ResponseText = s.Value
	case task.StatusFailed:
		ex.Status = StatusFailed
		ex.ErrorMessage = s.Error
	default:
		ex.Status = StatusIdle
	}
	return ex
}
