package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"contactvault/internal/contacts/models"
	"contactvault/pkg/platform/sentinel"
)

const (
	contactKeyPrefix = "cv:contact:"
	indexKeyPrefix   = "cv:contacts:"
)

// RedisStore is a Redis-backed contact store for deployments where several
// instances share state. Contacts are stored as JSON blobs; a per-user set
// tracks the IDs.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func contactKey(userID, contactID string) string {
	return contactKeyPrefix + userID + ":" + contactID
}

func indexKey(userID string) string {
	return indexKeyPrefix + userID
}

func (s *RedisStore) Save(ctx context.Context, userID string, contact models.Contact, overwrite bool) error {
	payload, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("marshal contact %s: %w", contact.ID, err)
	}
	key := contactKey(userID, contact.ID)
	if overwrite {
		if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
			return fmt.Errorf("save contact %s: %w", contact.ID, err)
		}
	} else {
		ok, err := s.client.SetNX(ctx, key, payload, 0).Result()
		if err != nil {
			return fmt.Errorf("save contact %s: %w", contact.ID, err)
		}
		if !ok {
			return fmt.Errorf("contact %s: %w", contact.ID, sentinel.ErrConflict)
		}
	}
	if err := s.client.SAdd(ctx, indexKey(userID), contact.ID).Err(); err != nil {
		return fmt.Errorf("index contact %s: %w", contact.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID, contactID string) (models.Contact, error) {
	payload, err := s.client.Get(ctx, contactKey(userID, contactID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Contact{}, fmt.Errorf("contact %s: %w", contactID, sentinel.ErrNotFound)
	}
	if err != nil {
		return models.Contact{}, fmt.Errorf("get contact %s: %w", contactID, err)
	}
	var contact models.Contact
	if err := json.Unmarshal(payload, &contact); err != nil {
		return models.Contact{}, fmt.Errorf("unmarshal contact %s: %w", contactID, err)
	}
	return contact, nil
}

func (s *RedisStore) ListIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, indexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string, contactIDs []string) error {
	if len(contactIDs) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	members := make([]interface{}, 0, len(contactIDs))
	for _, id := range contactIDs {
		pipe.Del(ctx, contactKey(userID, id))
		members = append(members, id)
	}
	pipe.SRem(ctx, indexKey(userID), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete contacts: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, indexKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("clear contacts: %w", err)
	}
	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, contactKey(userID, id))
	}
	pipe.Del(ctx, indexKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear contacts: %w", err)
	}
	return nil
}
