// Package changelog records contact mutations so other devices of the same
// user can converge. Events carry no card contents, only identifiers; the
// payload stays opaque to anything that can read the log.
package changelog

import "time"

// Action names a contact mutation.
type Action string

const (
	ActionContactCreated  Action = "contact_created"
	ActionContactUpdated  Action = "contact_updated"
	ActionContactDeleted  Action = "contact_deleted"
	ActionContactsCleared Action = "contacts_cleared"
	ActionContactsMerged  Action = "contacts_merged"
)

// Event is emitted after a mutation commits. ContactIDs lists every contact
// the mutation touched; for merges the first entry is the surviving contact.
type Event struct {
	ID         string
	UserID     string
	Action     Action
	ContactIDs []string
	RequestID  string
	Timestamp  time.Time
}
