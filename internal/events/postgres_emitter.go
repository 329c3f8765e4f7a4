package events

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/zeromicro/go-zero/core/logx"
)

// insertEventQuery follows the teacher's BaseRepository named-parameter
// insert convention (shared/repository/repository.go InsertUserQuery).
const insertEventQuery = `
	INSERT INTO auth_events (occurred_at, client_id, event_type, outcome, source_addr, correlation_id, degraded, detail)
	VALUES (:occurred_at, :client_id, :event_type, :outcome, :source_addr, :correlation_id, :degraded, :detail)`

// PostgresEmitter persists events to the durable auth_events table
// (spec §3: "Retention policy and storage are an external collaborator"
// — this is the concrete collaborator chosen for this deployment).
// Grounded on shared/repository.BaseRepository.Create: NamedExecContext,
// log-and-swallow on failure since event emission must never fail the
// caller's request.
type PostgresEmitter struct {
	db *sqlx.DB
}

func NewPostgresEmitter(db *sqlx.DB) *PostgresEmitter {
	return &PostgresEmitter{db: db}
}

func (p *PostgresEmitter) Emit(ctx context.Context, e Event) {
	if _, err := p.db.NamedExecContext(ctx, insertEventQuery, e); err != nil {
		logx.WithContext(ctx).Errorf("persist authentication event for %s: %v", e.ClientID, err)
	}
}
