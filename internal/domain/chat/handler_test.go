package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/auth"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/session"
)

func TestHandler_Send(t *testing.T) {
	h := NewHandler(NewRelay(&mockCompleter{err: errors.New("down")}, zerolog.Nop()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/agent/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(session.Header, "tab-1")
	rec := httptest.NewRecorder()
	if err := h.Send(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Response string    `json:"response"`
		Messages []Message `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Response != ErrorReplyText || len(body.Messages) != 2 {
		t.Errorf("unexpected body %+v", body)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/agent/chat", nil)
	req.Header.Set(session.Header, "tab-1")
	rec = httptest.NewRecorder()
	if err := h.Clear(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if n := len(h.relay.Transcript(session.Key(session.Anonymous, "tab-1"))); n != 0 {
		t.Errorf("expected empty transcript, got %d", n)
	}
}

func TestHandler_Send_Blank(t *testing.T) {
	h := NewHandler(NewRelay(&mockCompleter{}, zerolog.Nop()))
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/agent/chat", strings.NewReader(`{"message":"  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.Send(e.NewContext(req, httptest.NewRecorder()))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func chatRequest(method, body, userID, sessionID string) *http.Request {
	req := httptest.NewRequest(method, "/api/agent/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(auth.WithIdentity(req.Context(), userID, []string{"analyst"}))
	if sessionID != "" {
		req.Header.Set(session.Header, sessionID)
	}
	return req
}

func TestHandler_TranscriptIsPerUser(t *testing.T) {
	h := NewHandler(NewRelay(&mockCompleter{reply: "noted"}, zerolog.Nop()))
	e := echo.New()

	if err := h.Send(e.NewContext(chatRequest(http.MethodPost, `{"message":"our renewal numbers"}`, "alice", ""), httptest.NewRecorder())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// bob names alice's user id as his session and must still see only his own state.
	for _, sid := range []string{"alice", "", "1:alice"} {
		rec := httptest.NewRecorder()
		if err := h.GetTranscript(e.NewContext(chatRequest(http.MethodGet, "", "bob", sid), rec)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var body struct {
			Messages []Message `json:"messages"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Messages) != 0 {
			t.Errorf("session %q: bob read %d of alice's messages", sid, len(body.Messages))
		}
	}

	// bob clearing the same names leaves alice's transcript intact.
	if err := h.Clear(e.NewContext(chatRequest(http.MethodDelete, "", "bob", "alice"), httptest.NewRecorder())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := httptest.NewRecorder()
	if err := h.GetTranscript(e.NewContext(chatRequest(http.MethodGet, "", "alice", ""), rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "our renewal numbers") {
		t.Errorf("expected alice to keep her transcript, got %s", rec.Body.String())
	}
}
