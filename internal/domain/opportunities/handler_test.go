package opportunities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
)

type mockReader struct {
	m   metrics.DashboardMetrics
	err error
}

func (r mockReader) Metrics(_ context.Context, _ metrics.Filters) (metrics.DashboardMetrics, error) {
	return r.m, r.err
}

func getPipeline(t *testing.T, r MetricsReader) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/opportunities/pipeline?lob=Medicaid", nil)
	rec := httptest.NewRecorder()
	return rec, NewHandler(r, nil).GetPipeline(e.NewContext(req, rec))
}

func TestGetPipeline(t *testing.T) {
	members := 1200.0
	r := mockReader{m: metrics.DashboardMetrics{Opportunity: &metrics.Opportunity{
		TotalIdentified: 20e6, Addressable: 15e6, Realizable: 10e6, Realized: 4e6, AffectedMembers: &members,
	}}}
	rec, err := getPipeline(t, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body struct {
		Filters         metrics.Filters `json:"filters"`
		Status          string          `json:"status"`
		AffectedMembers float64         `json:"affectedMembers"`
		Funnel          struct {
			AddressablePct *float64 `json:"addressablePct"`
			GapPct         *float64 `json:"gapPct"`
			GapVisible     bool     `json:"gapVisible"`
			Stages         []struct {
				Label string `json:"label"`
			} `json:"stages"`
		} `json:"funnel"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ready" || body.Filters.LOB != "Medicaid" || body.AffectedMembers != 1200 {
		t.Errorf("unexpected pipeline %+v", body)
	}
	if body.Funnel.AddressablePct == nil || *body.Funnel.AddressablePct != 75 {
		t.Errorf("expected addressable 75%%, got %v", body.Funnel.AddressablePct)
	}
	if !body.Funnel.GapVisible || *body.Funnel.GapPct != 60 {
		t.Errorf("expected visible 60%% gap, got %+v", body.Funnel)
	}
	if len(body.Funnel.Stages) != 5 || body.Funnel.Stages[1].Label != "Addressable (75%)" {
		t.Errorf("unexpected stages %+v", body.Funnel.Stages)
	}
}

func TestGetPipeline_NoData(t *testing.T) {
	rec, err := getPipeline(t, mockReader{err: fmt.Errorf("fetch: %w", metrics.ErrNoData)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "empty" {
		t.Errorf("expected empty status, got %q", body.Status)
	}
}

func TestGetPipeline_Unavailable(t *testing.T) {
	_, err := getPipeline(t, mockReader{err: errors.New("connection refused")})
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %v", err)
	}
}

func TestRegisterRoutes_Prompts(t *testing.T) {
	e := echo.New()
	called := false
	NewHandler(mockReader{}, func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}).RegisterRoutes(e.Group("/api"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities/prompts", nil))
	if !called || rec.Code != http.StatusOK {
		t.Errorf("expected prompts handler to serve, code=%d", rec.Code)
	}
}
