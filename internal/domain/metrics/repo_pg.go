package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Snapshot is a stored metrics payload captured for one filter combination.
type Snapshot struct {
	ID         uuid.UUID        `json:"id"`
	Filters    Filters          `json:"filters"`
	Payload    DashboardMetrics `json:"payload"`
	CapturedAt time.Time        `json:"captured_at"`
}

// SnapshotRepository stores and serves metrics snapshots.
type SnapshotRepository interface {
	Source
	Save(ctx context.Context, s *Snapshot) error
}

type snapshotRepoPG struct{ db queryable }

// NewSnapshotRepoPG returns a Postgres-backed snapshot store. Fetch returns the
// newest snapshot for the exact filter key, falling back to the unfiltered one.
func NewSnapshotRepoPG(pool *pgxpool.Pool) SnapshotRepository {
	return &snapshotRepoPG{db: pool}
}

func (r *snapshotRepoPG) Save(ctx context.Context, s *Snapshot) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CapturedAt.IsZero() {
		s.CapturedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(s.Payload)
	if err != nil {
		return fmt.Errorf("encode snapshot payload: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO metrics_snapshot (id, filter_key, lob, time_period, geography, segment, payload, captured_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.Filters.Key(), s.Filters.LOB, s.Filters.TimePeriod, s.Filters.Geography, s.Filters.Segment,
		payload, s.CapturedAt)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepoPG) Fetch(ctx context.Context, f Filters) (*DashboardMetrics, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `
		SELECT payload FROM metrics_snapshot
		WHERE filter_key = $1 OR filter_key = ''
		ORDER BY (filter_key = $1) DESC, captured_at DESC
		LIMIT 1`, f.Key()).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query snapshot: %v", ErrUnavailable, err)
	}
	var m DashboardMetrics
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %v", ErrUnavailable, err)
	}
	return &m, nil
}
