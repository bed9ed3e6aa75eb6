package dashboard

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/task"
)

// LoadResult is the outcome of one dashboard load. Stale is set when a newer
// load for the same session began before this one resolved, in which case the
// view was returned to the caller but not applied to the session.
type LoadResult struct {
	View  View
	Token task.Token
	Stale bool
}

// Service loads dashboard views per session with last-request-wins semantics.
type Service struct {
	source   metrics.Source
	planName string
	logger   zerolog.Logger

	sessions *task.Sessions[*task.Tracker[View]]
}

func NewService(source metrics.Source, planName string, logger zerolog.Logger) *Service {
	if planName == "" {
		planName = DefaultPlanName
	}
	return &Service{
		source:   source,
		planName: planName,
		logger:   logger,
		sessions: task.NewSessions(task.DefaultSessionCapacity, task.NewTracker[View]),
	}
}

// PlanName returns the configured plan name.
func (s *Service) PlanName() string {
	return s.planName
}

// Metrics returns the normalized payload for f.
func (s *Service) Metrics(ctx context.Context, f metrics.Filters) (metrics.DashboardMetrics, error) {
	m, err := s.source.Fetch(ctx, f)
	if err != nil {
		return metrics.DashboardMetrics{}, err
	}
	return metrics.Normalize(m), nil
}

// Build derives a view for f without touching any session state.
func (s *Service) Build(ctx context.Context, f metrics.Filters) (View, error) {
	m, err := s.source.Fetch(ctx, f)
	if errors.Is(err, metrics.ErrNoData) {
		return BuildView(s.planName, f, nil), nil
	}
	if err != nil {
		return View{}, err
	}
	return BuildView(s.planName, f, m), nil
}

// Load fetches and builds the view for f on behalf of sessionID. A source
// reporting no data yields an empty view rather than an error.
func (s *Service) Load(ctx context.Context, sessionID string, f metrics.Filters) (LoadResult, error) {
	tr := s.sessions.Obtain(sessionID)
	tok := tr.Begin(f.Key())

	view, err := s.Build(ctx, f)
	if err != nil {
		applied := tr.Fail(tok, err)
		s.logger.Warn().Err(err).Str("session", sessionID).Str("filters", f.Key()).
			Bool("stale", !applied).Msg("dashboard load failed")
		return LoadResult{Token: tok, Stale: !applied}, err
	}

	applied := tr.Succeed(tok, view)
	if !applied {
		s.logger.Debug().Str("session", sessionID).Uint64("token", uint64(tok)).Msg("discarding stale dashboard load")
	}
	return LoadResult{View: view, Token: tok, Stale: !applied}, nil
}

// Current returns the session's view state. A session that never loaded is
// idle and is not stored.
func (s *Service) Current(sessionID string) task.State[View] {
	tr, ok := s.sessions.Get(sessionID)
	if !ok {
		return task.State[View]{Status: task.StatusIdle}
	}
	return tr.Snapshot()
}
