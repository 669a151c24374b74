// Package cache provides a small read-through cache for decoded contacts.
// Decoding a contact means decrypting and verifying every card, which is
// expensive enough to be worth caching for export and duplicate scans.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"contactvault/internal/changelog"
	"contactvault/internal/contacts/properties"
)

// DefaultSize bounds the cache to roughly one large address book.
const DefaultSize = 4096

type cacheKey struct {
	userID    string
	contactID string
}

// ContactCache holds decoded property lists keyed by user and contact ID.
// It is safe for concurrent use.
type ContactCache struct {
	entries *lru.Cache[cacheKey, []properties.Property]
}

func New(size int) (*ContactCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[cacheKey, []properties.Property](size)
	if err != nil {
		return nil, err
	}
	return &ContactCache{entries: entries}, nil
}

func (c *ContactCache) Get(userID, contactID string) ([]properties.Property, bool) {
	return c.entries.Get(cacheKey{userID: userID, contactID: contactID})
}

func (c *ContactCache) Set(userID, contactID string, props []properties.Property) {
	c.entries.Add(cacheKey{userID: userID, contactID: contactID}, props)
}

func (c *ContactCache) Delete(userID, contactID string) {
	c.entries.Remove(cacheKey{userID: userID, contactID: contactID})
}

// Invalidate drops every entry belonging to the user. Keys are not indexed
// per user, so this walks the cache; eviction keeps the walk bounded.
func (c *ContactCache) Invalidate(userID string) {
	for _, key := range c.entries.Keys() {
		if key.userID == userID {
			c.entries.Remove(key)
		}
	}
}

// Apply invalidates the entries a recorded mutation touched. Events arrive
// as plain data; the cache never subscribes to anything itself.
func (c *ContactCache) Apply(event changelog.Event) {
	switch event.Action {
	case changelog.ActionContactsCleared:
		c.Invalidate(event.UserID)
	case changelog.ActionContactUpdated, changelog.ActionContactDeleted, changelog.ActionContactsMerged:
		for _, id := range event.ContactIDs {
			c.Delete(event.UserID, id)
		}
	}
}

func (c *ContactCache) Purge() {
	c.entries.Purge()
}

func (c *ContactCache) Len() int {
	return c.entries.Len()
}
