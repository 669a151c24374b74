package store

import (
	"context"
	"fmt"
	"sync"

	"contactvault/internal/contacts/models"
	"contactvault/pkg/platform/sentinel"
)

// InMemoryStore keeps contacts per user in process memory. It is the default
// backend for tests and single-node development setups.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]*userBucket
}

type userBucket struct {
	order    []string
	contacts map[string]models.Contact
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]*userBucket)}
}

func (s *InMemoryStore) Save(_ context.Context, userID string, contact models.Contact, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.users[userID]
	if !ok {
		bucket = &userBucket{contacts: make(map[string]models.Contact)}
		s.users[userID] = bucket
	}
	if _, exists := bucket.contacts[contact.ID]; exists {
		if !overwrite {
			return fmt.Errorf("contact %s: %w", contact.ID, sentinel.ErrConflict)
		}
	} else {
		bucket.order = append(bucket.order, contact.ID)
	}
	bucket.contacts[contact.ID] = contact
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, userID, contactID string) (models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if bucket, ok := s.users[userID]; ok {
		if contact, ok := bucket.contacts[contactID]; ok {
			return contact, nil
		}
	}
	return models.Contact{}, fmt.Errorf("contact %s: %w", contactID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return append([]string{}, bucket.order...), nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID string, contactIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.users[userID]
	if !ok {
		return nil
	}
	for _, id := range contactIDs {
		delete(bucket.contacts, id)
	}
	kept := bucket.order[:0]
	for _, id := range bucket.order {
		if _, ok := bucket.contacts[id]; ok {
			kept = append(kept, id)
		}
	}
	bucket.order = kept
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}
