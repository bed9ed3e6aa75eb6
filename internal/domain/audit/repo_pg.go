package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type RepoPG struct {
	db queryable
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{db: pool}
}

const auditCols = `id, user_id, roles, action, method, path, resource, status,
	request_id, remote_ip, user_agent, recorded_at`

func (r *RepoPG) Create(ctx context.Context, rec *Record) error {
	q := fmt.Sprintf(`INSERT INTO audit_log (%s) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`, auditCols)
	_, err := r.db.Exec(ctx, q,
		rec.ID, rec.UserID, rec.Roles, rec.Action, rec.Method, rec.Path, rec.Resource, rec.Status,
		rec.RequestID, rec.RemoteIP, rec.UserAgent, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (r *RepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Record, int, error) {
	where, args := whereClause(f)

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM audit_log"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit records: %w", err)
	}

	q := fmt.Sprintf("SELECT %s FROM audit_log%s ORDER BY recorded_at DESC LIMIT $%d OFFSET $%d",
		auditCols, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	items := []*Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Roles, &rec.Action, &rec.Method, &rec.Path,
			&rec.Resource, &rec.Status, &rec.RequestID, &rec.RemoteIP, &rec.UserAgent, &rec.RecordedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit record: %w", err)
		}
		items = append(items, &rec)
	}
	return items, total, rows.Err()
}

func whereClause(f Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.UserID != "" {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Resource != "" {
		args = append(args, f.Resource)
		conds = append(conds, fmt.Sprintf("resource = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
