package changelog

import "context"

// Store is append-only. ListByUser returns events oldest first.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID string) ([]Event, error)
}
