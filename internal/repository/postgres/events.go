package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
)

// EventLog appends batch events to batch_events.
type EventLog struct {
	pool *pgxpool.Pool
}

// NewEventLog creates an EventLog.
func NewEventLog(pool *pgxpool.Pool) *EventLog {
	return &EventLog{pool: pool}
}

// Record stores e. Its signature matches domain.EventHandler.
func (l *EventLog) Record(ctx context.Context, e *domain.DomainEvent) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO batch_events (event_id, event_type, account_id, batch_id, status, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO NOTHING`,
		e.EventID, string(e.EventType), e.AccountID, e.BatchID, string(e.Status), e.Payload, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record event %s: %w", e.EventID, err)
	}
	return nil
}

// List returns the events of a batch in creation order.
func (l *EventLog) List(ctx context.Context, accountID, batchID string) ([]domain.DomainEvent, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT event_id, event_type, account_id, batch_id, status, payload, created_at
		FROM batch_events WHERE account_id = $1 AND batch_id = $2
		ORDER BY created_at, event_id`, accountID, batchID)
	if err != nil {
		return nil, fmt.Errorf("list events of batch %s: %w", batchID, err)
	}
	defer rows.Close()

	var out []domain.DomainEvent
	for rows.Next() {
		var (
			e                 domain.DomainEvent
			eventType, status string
		)
		if err := rows.Scan(&e.EventID, &eventType, &e.AccountID, &e.BatchID, &status, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.EventType, e.Status = domain.EventType(eventType), domain.BatchStatus(status)
		out = append(out, e)
	}
	return out, rows.Err()
}
