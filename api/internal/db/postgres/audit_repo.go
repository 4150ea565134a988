// api/internal/db/postgres/audit_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"sealbox/api/internal/core/domain"
)

// Schema:
//
//	CREATE TABLE operation_events (
//	    id         BIGSERIAL PRIMARY KEY,
//	    session_id UUID        NOT NULL,
//	    operation  TEXT        NOT NULL,
//	    category   TEXT        NOT NULL DEFAULT '',
//	    outcome    TEXT        NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX operation_events_session_idx ON operation_events (session_id, created_at DESC);
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Record persists one operation event with consistent metadata.
// 🛡️ Only metadata crosses this boundary — never plaintext, ciphertext,
// or key material.
func (r *AuditRepository) Record(ctx context.Context, ev *domain.OperationEvent) error {
	query := `
		INSERT INTO operation_events (session_id, operation, category, outcome)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		ev.SessionID,
		ev.Operation,
		ev.Category,
		ev.Outcome,
	).Scan(&ev.ID, &ev.CreatedAt)
}

// RecentBySession returns the newest events for one key session.
// 🛡️ Session Isolation: callers can only ever see their own trail.
func (r *AuditRepository) RecentBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.OperationEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, session_id, operation, category, outcome, created_at
		FROM operation_events
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: audit query: %w", err)
	}
	defer rows.Close()

	var events []domain.OperationEvent
	for rows.Next() {
		var ev domain.OperationEvent
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Operation, &ev.Category, &ev.Outcome, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: audit scan: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Ping verifies the store is reachable, for health checks.
func (r *AuditRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
