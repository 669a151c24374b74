package store

import (
	"context"

	"contactvault/internal/contacts/models"
)

// Store persists encoded contact cards per user. Implementations return
// sentinel.ErrNotFound (optionally wrapped) when a contact does not exist
// and sentinel.ErrConflict when a save would clobber an existing contact
// without overwrite.
type Store interface {
	// Save upserts a single contact when overwrite is true; without
	// overwrite an existing ID is a conflict.
	Save(ctx context.Context, userID string, contact models.Contact, overwrite bool) error

	// Get returns one contact by ID.
	Get(ctx context.Context, userID, contactID string) (models.Contact, error)

	// ListIDs returns the IDs of all contacts for the user in insertion
	// order where the backend preserves it, otherwise sorted.
	ListIDs(ctx context.Context, userID string) ([]string, error)

	// Delete removes the given contacts. Missing IDs are ignored.
	Delete(ctx context.Context, userID string, contactIDs []string) error

	// Clear removes every contact for the user.
	Clear(ctx context.Context, userID string) error
}
