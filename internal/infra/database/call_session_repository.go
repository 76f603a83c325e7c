package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/leaddialer/internal/entity"
)

const schema = `
	CREATE TABLE IF NOT EXISTS call_sessions (
		call_sid         TEXT PRIMARY KEY,
		lead_id          TEXT NOT NULL,
		status           TEXT NOT NULL,
		notes            TEXT,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		started_at       TIMESTAMPTZ NOT NULL,
		ended_at         TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS call_sessions_lead_started_idx ON call_sessions (lead_id, started_at DESC);
`

// CallSessionRepository stores call sessions in Postgres, one row per call SID.
type CallSessionRepository struct {
	DB *sql.DB
}

func NewCallSessionRepository(db *sql.DB) *CallSessionRepository {
	return &CallSessionRepository{DB: db}
}

func (r *CallSessionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create call_sessions: %w", err)
	}
	return nil
}

func (r *CallSessionRepository) Save(ctx context.Context, s *entity.CallSession) error {
	query := `
		INSERT INTO call_sessions (call_sid, lead_id, status, notes, duration_seconds, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (call_sid)
		DO UPDATE SET
			status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			duration_seconds = EXCLUDED.duration_seconds,
			ended_at = EXCLUDED.ended_at
	`

	_, err := r.DB.ExecContext(ctx, query,
		s.CallSID,
		s.LeadID,
		string(s.Status),
		nullString(s.Notes),
		s.DurationSeconds,
		s.StartedAt,
		s.EndedAt,
	)
	if err != nil {
		return entity.NewUpstreamError("postgres", "save call session", err)
	}
	return nil
}

func (r *CallSessionRepository) FindByLeadID(ctx context.Context, leadID string) (*entity.CallSession, error) {
	query := `
		SELECT call_sid, lead_id, status, COALESCE(notes, ''), duration_seconds, started_at, ended_at
		FROM call_sessions
		WHERE lead_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	var (
		s       entity.CallSession
		status  string
		endedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, leadID).Scan(
		&s.CallSID,
		&s.LeadID,
		&status,
		&s.Notes,
		&s.DurationSeconds,
		&s.StartedAt,
		&endedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCallNotFound
	}
	if err != nil {
		return nil, entity.NewUpstreamError("postgres", "find call session", err)
	}

	s.Status = entity.CallStatus(status)
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	return &s, nil
}

// PurgeOlderThan deletes sessions started before cutoff and returns how many went.
func (r *CallSessionRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM call_sessions WHERE started_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ping is used by the health check.
func (r *CallSessionRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
