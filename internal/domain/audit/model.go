package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/middleware"
)

// Record is one stored API access.
type Record struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"userId"`
	Roles      []string  `json:"roles"`
	Action     string    `json:"action"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Resource   string    `json:"resource"`
	Status     int       `json:"status"`
	RequestID  string    `json:"requestId"`
	RemoteIP   string    `json:"remoteIp"`
	UserAgent  string    `json:"userAgent"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	UserID   string
	Resource string
}

func (f Filter) matches(r *Record) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Resource != "" && r.Resource != f.Resource {
		return false
	}
	return true
}

// FromEntry converts a middleware observation into a record with a fresh id.
func FromEntry(e middleware.AuditEntry) *Record {
	roles := e.UserRoles
	if roles == nil {
		roles = []string{}
	}
	recorded := e.Timestamp
	if recorded.IsZero() {
		recorded = time.Now().UTC()
	}
	return &Record{
		ID:         uuid.New(),
		UserID:     e.UserID,
		Roles:      roles,
		Action:     e.Action,
		Method:     e.Method,
		Path:       e.Path,
		Resource:   e.Resource,
		Status:     e.StatusCode,
		RequestID:  e.RequestID,
		RemoteIP:   e.IPAddress,
		UserAgent:  e.UserAgent,
		RecordedAt: recorded,
	}
}
