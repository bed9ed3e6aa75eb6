package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/task"
)

func newTestService(src metrics.Source) *Service {
	return NewService(src, "", zerolog.Nop())
}

func TestService_LoadStatic(t *testing.T) {
	svc := newTestService(metrics.NewStaticSource())
	res, err := svc.Load(context.Background(), "s1", metrics.Filters{LOB: "commercial"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stale {
		t.Error("expected fresh load")
	}
	v := res.View
	if v.Status != ViewReady || v.PlanName != DefaultPlanName {
		t.Errorf("unexpected view header: %+v", v)
	}
	if v.Title != "Key performance metrics and trends for Presbyterian Health Plan" {
		t.Errorf("unexpected title %q", v.Title)
	}
	if len(v.Series.Points) != 16 || !v.Series.HasFourQuarters {
		t.Errorf("expected 16 points with four quarters, got %d", len(v.Series.Points))
	}
	if len(v.CostDistribution) != 6 || v.CostDistribution[0].Share.Value != 35 {
		t.Errorf("unexpected cost distribution: %+v", v.CostDistribution)
	}

	state := svc.Current("s1")
	if state.Status != task.StatusSucceeded || state.Key != "lob=commercial" {
		t.Errorf("unexpected session state: %+v", state)
	}
	if other := svc.Current("s2"); other.Status != task.StatusIdle {
		t.Errorf("expected untouched session to be idle, got %s", other.Status)
	}
}

func TestService_CurrentDoesNotStoreSessions(t *testing.T) {
	svc := newTestService(metrics.NewStaticSource())
	for i := 0; i < 100; i++ {
		if st := svc.Current(fmt.Sprintf("tab-%d", i)); st.Status != task.StatusIdle {
			t.Fatalf("expected idle, got %s", st.Status)
		}
	}
	if n := svc.sessions.Len(); n != 0 {
		t.Errorf("expected reads to store no sessions, got %d", n)
	}
}

func TestService_SessionsAreBounded(t *testing.T) {
	svc := newTestService(metrics.NewStaticSource())
	svc.sessions = task.NewSessions(2, task.NewTracker[View])
	for _, id := range []string{"a", "b", "c"} {
		if _, err := svc.Load(context.Background(), id, metrics.Filters{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := svc.sessions.Len(); n != 2 {
		t.Errorf("expected 2 sessions, got %d", n)
	}
	if st := svc.Current("a"); st.Status != task.StatusIdle {
		t.Errorf("expected the oldest session to be evicted, got %s", st.Status)
	}
	if st := svc.Current("c"); st.Status != task.StatusSucceeded {
		t.Errorf("expected the newest session to be kept, got %s", st.Status)
	}
}

func TestService_LoadNoDataIsEmpty(t *testing.T) {
	src := metrics.SourceFunc(func(ctx context.Context, f metrics.Filters) (*metrics.DashboardMetrics, error) {
		return nil, metrics.ErrNoData
	})
	svc := newTestService(src)
	res, err := svc.Load(context.Background(), "s1", metrics.Filters{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.View.Status != ViewEmpty {
		t.Errorf("expected empty view, got %s", res.View.Status)
	}
	if len(res.View.Series.Points) != 1 {
		t.Errorf("expected default projection only, got %d points", len(res.View.Series.Points))
	}
}

func TestService_LoadFailure(t *testing.T) {
	src := metrics.SourceFunc(func(ctx context.Context, f metrics.Filters) (*metrics.DashboardMetrics, error) {
		return nil, errors.Join(metrics.ErrUnavailable, errors.New("connection refused"))
	})
	svc := newTestService(src)
	_, err := svc.Load(context.Background(), "s1", metrics.Filters{})
	if !errors.Is(err, metrics.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if s := svc.Current("s1"); s.Status != task.StatusFailed || s.Error == "" {
		t.Errorf("expected failed state, got %+v", s)
	}
}

func TestService_LastRequestWins(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	static := metrics.NewStaticSource()

	src := metrics.SourceFunc(func(ctx context.Context, f metrics.Filters) (*metrics.DashboardMetrics, error) {
		if f.LOB == "medicare" {
			close(started)
			<-release
		}
		return static.Fetch(ctx, f)
	})
	svc := newTestService(src)

	type outcome struct {
		res LoadResult
		err error
	}
	slow := make(chan outcome, 1)
	go func() {
		res, err := svc.Load(context.Background(), "s1", metrics.Filters{LOB: "medicare"})
		slow <- outcome{res, err}
	}()
	<-started

	fast, err := svc.Load(context.Background(), "s1", metrics.Filters{LOB: "medicaid"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fast.Stale {
		t.Error("expected newer load to apply")
	}

	close(release)
	old := <-slow
	if old.err != nil {
		t.Fatalf("unexpected error: %v", old.err)
	}
	if !old.res.Stale {
		t.Error("expected older load to be stale")
	}
	if old.res.View.Filters.LOB != "medicare" {
		t.Errorf("expected stale caller to receive its own view, got %+v", old.res.View.Filters)
	}

	state := svc.Current("s1")
	if state.Key != "lob=medicaid" || state.Value.Filters.LOB != "medicaid" {
		t.Errorf("stale response was applied: key=%q filters=%+v", state.Key, state.Value.Filters)
	}
	if state.Token != fast.Token {
		t.Errorf("expected token %d, got %d", fast.Token, state.Token)
	}
}

func TestBuildCostShares(t *testing.T) {
	shares := BuildCostShares([]metrics.CostSlice{
		{Name: "Inpatient", Value: 30},
		{Name: "Outpatient", Value: 10},
	})
	if shares[0].Share.Value != 75 || shares[1].Share.Value != 25 {
		t.Errorf("unexpected shares: %+v", shares)
	}
	if shares[0].Label != "Inpatient 75%" {
		t.Errorf("unexpected label %q", shares[0].Label)
	}

	zero := BuildCostShares([]metrics.CostSlice{{Name: "Other", Value: 0}})
	if zero[0].Share.Valid {
		t.Error("expected share to be not applicable when total is zero")
	}
}

func TestBuildUtilization(t *testing.T) {
	cards := BuildUtilization(metrics.CostUtilization{EDVisitsPer1000: 412, ReadmissionRate: 14.2, AvgLengthOfStay: 4.8})
	if len(cards) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(cards))
	}
	if cards[0].Value != "412" || cards[2].Value != "14.2%" || cards[3].Value != "4.8" {
		t.Errorf("unexpected cards: %+v", cards)
	}
}
