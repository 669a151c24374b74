package changelog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore implements Store using the transactional outbox pattern.
// Events are written to the outbox table and relayed to Kafka by the outbox
// worker; Kafka is the source of truth for downstream consumers. The
// changelog_events table materializes events for per-user queries.
//
// Expected schema:
//
//	CREATE TABLE outbox (
//	    id             UUID PRIMARY KEY,
//	    aggregate_type TEXT        NOT NULL,
//	    aggregate_id   TEXT        NOT NULL,
//	    event_type     TEXT        NOT NULL,
//	    payload        JSONB       NOT NULL,
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    published_at   TIMESTAMPTZ
//	);
//
//	CREATE TABLE changelog_events (
//	    id          UUID PRIMARY KEY,
//	    user_id     TEXT        NOT NULL,
//	    action      TEXT        NOT NULL,
//	    contact_ids TEXT[]      NOT NULL,
//	    request_id  TEXT        NOT NULL DEFAULT '',
//	    occurred_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// outboxPayload is the JSON structure relayed to Kafka. Field names match
// Event so consumers can deserialize directly.
type outboxPayload struct {
	ID         string   `json:"ID"`
	UserID     string   `json:"UserID"`
	Action     string   `json:"Action"`
	ContactIDs []string `json:"ContactIDs"`
	RequestID  string   `json:"RequestID,omitempty"`
	Timestamp  string   `json:"Timestamp"`
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(outboxPayload{
		ID:         event.ID,
		UserID:     event.UserID,
		Action:     string(event.Action),
		ContactIDs: event.ContactIDs,
		RequestID:  event.RequestID,
		Timestamp:  event.Timestamp.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal changelog payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin changelog tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, 'contact', $2, $3, $4, $5)
	`, uuid.New(), event.UserID, string(event.Action), payload, time.Now())
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO changelog_events (id, user_id, action, contact_ids, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, event.ID, event.UserID, string(event.Action), pq.Array(event.ContactIDs), event.RequestID, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert changelog event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit changelog tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, contact_ids, request_id, occurred_at
		FROM changelog_events
		WHERE user_id = $1
		ORDER BY occurred_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list changelog events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event := Event{UserID: userID}
		var action string
		if err := rows.Scan(&event.ID, &action, pq.Array(&event.ContactIDs), &event.RequestID, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan changelog event: %w", err)
		}
		event.Action = Action(action)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list changelog events: %w", err)
	}
	return events, nil
}
