package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(query string) Params {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/audit"+query, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", DefaultLimit, 0},
		{"?limit=50&offset=10", 50, 10},
		{"?limit=500", MaxLimit, 0},
		{"?limit=-3&offset=-5", DefaultLimit, 0},
		{"?limit=abc", DefaultLimit, 0},
	}
	for _, tt := range tests {
		p := paramsFor(tt.query)
		if p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
			t.Errorf("%q: got %+v, want limit=%d offset=%d", tt.query, p, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestSQL(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}
	if got := p.SQL(); got != "LIMIT 20 OFFSET 40" {
		t.Errorf("got %q", got)
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse([]string{"a", "b"}, 50, Params{Limit: 20, Offset: 0})
	if resp.Total != 50 || resp.Limit != 20 || resp.Offset != 0 {
		t.Errorf("unexpected response %+v", resp)
	}
	if !resp.HasMore {
		t.Error("expected HasMore=true")
	}

	last := NewResponse(nil, 50, Params{Limit: 20, Offset: 40})
	if last.HasMore {
		t.Error("expected HasMore=false on the last page")
	}
}

func TestParams_PreviousOffset(t *testing.T) {
	tests := []struct {
		p    Params
		want int
	}{
		{Params{Limit: 20, Offset: 40}, 20},
		{Params{Limit: 20, Offset: 10}, 0},
		{Params{Limit: 20, Offset: 0}, 0},
	}
	for _, tt := range tests {
		if got := tt.p.PreviousOffset(); got != tt.want {
			t.Errorf("%+v: got %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestParams_Links(t *testing.T) {
	tests := []struct {
		name  string
		p     Params
		total int
		want  []string
	}{
		{"first page", Params{Limit: 10, Offset: 0}, 25, []string{"self", "next"}},
		{"middle page", Params{Limit: 10, Offset: 10}, 25, []string{"self", "next", "previous"}},
		{"last page", Params{Limit: 10, Offset: 20}, 25, []string{"self", "previous"}},
		{"no results", Params{Limit: 10, Offset: 0}, 0, []string{"self"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := tt.p.Links("/api/audit", tt.total)
			if len(links) != len(tt.want) {
				t.Fatalf("expected %d links, got %d", len(tt.want), len(links))
			}
			for i, rel := range tt.want {
				if links[i].Relation != rel {
					t.Errorf("link %d: expected %s, got %s", i, rel, links[i].Relation)
				}
			}
		})
	}

	links := Params{Limit: 10, Offset: 10}.Links("/api/audit", 25)
	if links[1].URL != "/api/audit?limit=10&offset=20" {
		t.Errorf("unexpected next url %q", links[1].URL)
	}
}

func TestResponse_WithLinks(t *testing.T) {
	resp := NewResponse(nil, 5, Params{Limit: 10}).WithLinks("/api/audit")
	if len(resp.Links) != 1 || resp.Links[0].URL != "/api/audit?limit=10&offset=0" {
		t.Errorf("unexpected links %+v", resp.Links)
	}
}
