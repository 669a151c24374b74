package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contactvault/internal/contacts/models"
	"contactvault/pkg/platform/sentinel"
)

// PostgresStore persists contacts in PostgreSQL. Cards are stored as a jsonb
// column; the (user_id, contact_id) pair is the primary key.
//
// Expected schema:
//
//	CREATE TABLE contacts (
//	    user_id    TEXT        NOT NULL,
//	    contact_id TEXT        NOT NULL,
//	    cards      JSONB       NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (user_id, contact_id)
//	);
type PostgresStore struct {
	pool  *pgxpool.Pool
	clock func() time.Time
}

// PostgresStoreOption configures a PostgresStore instance.
type PostgresStoreOption func(*PostgresStore)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) PostgresStoreOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresStoreOption) *PostgresStore {
	s := &PostgresStore{pool: pool, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *PostgresStore) Save(ctx context.Context, userID string, contact models.Contact, overwrite bool) error {
	cards, err := json.Marshal(contact.Cards)
	if err != nil {
		return fmt.Errorf("marshal cards for %s: %w", contact.ID, err)
	}
	now := s.clock()

	query := `
		INSERT INTO contacts (user_id, contact_id, cards, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id, contact_id) DO UPDATE SET
			cards = EXCLUDED.cards,
			updated_at = EXCLUDED.updated_at
	`
	if !overwrite {
		query = `
			INSERT INTO contacts (user_id, contact_id, cards, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (user_id, contact_id) DO NOTHING
		`
	}
	tag, err := s.pool.Exec(ctx, query, userID, contact.ID, cards, now)
	if err != nil {
		return fmt.Errorf("save contact %s: %w", contact.ID, err)
	}
	if !overwrite && tag.RowsAffected() == 0 {
		return fmt.Errorf("contact %s: %w", contact.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, contactID string) (models.Contact, error) {
	var cards []byte
	err := s.pool.QueryRow(ctx,
		`SELECT cards FROM contacts WHERE user_id = $1 AND contact_id = $2`,
		userID, contactID,
	).Scan(&cards)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Contact{}, fmt.Errorf("contact %s: %w", contactID, sentinel.ErrNotFound)
	}
	if err != nil {
		return models.Contact{}, fmt.Errorf("get contact %s: %w", contactID, err)
	}
	contact := models.Contact{ID: contactID}
	if err := json.Unmarshal(cards, &contact.Cards); err != nil {
		return models.Contact{}, fmt.Errorf("unmarshal cards for %s: %w", contactID, err)
	}
	return contact, nil
}

func (s *PostgresStore) ListIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT contact_id FROM contacts WHERE user_id = $1 ORDER BY created_at, contact_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan contact id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID string, contactIDs []string) error {
	if len(contactIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM contacts WHERE user_id = $1 AND contact_id = ANY($2)`,
		userID, contactIDs,
	)
	if err != nil {
		return fmt.Errorf("delete contacts: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM contacts WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear contacts: %w", err)
	}
	return nil
}
