// Package service orchestrates contact operations: imports, exports,
// duplicate detection, and merges. It composes the codec, crypto, and store
// layers and keeps handlers thin.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"contactvault/internal/changelog"
	"contactvault/internal/contacts/cache"
	"contactvault/internal/contacts/cardcodec"
	"contactvault/internal/contacts/crypto"
	"contactvault/internal/contacts/metrics"
	"contactvault/internal/contacts/models"
	"contactvault/internal/contacts/properties"
	"contactvault/internal/contacts/store"
	"contactvault/internal/contacts/vcard"
	dErrors "contactvault/pkg/domain-errors"
	"contactvault/pkg/platform/sentinel"
	"contactvault/pkg/requestcontext"
)

var tracer = otel.Tracer("contactvault/internal/contacts/service")

// KeySource resolves the keyrings protecting one user's address book. The
// recipient keyring seals and opens cards; the signer keyring signs and
// verifies them.
type KeySource interface {
	Keys(ctx context.Context, userID string) (recipient, signer crypto.KeyRing, err error)
}

// StaticKeySource serves the same keyrings for every user. Used in tests and
// single-user deployments.
type StaticKeySource struct {
	Recipient crypto.KeyRing
	Signer    crypto.KeyRing
}

func (s StaticKeySource) Keys(context.Context, string) (crypto.KeyRing, crypto.KeyRing, error) {
	return s.Recipient, s.Signer, nil
}

// Service is the contacts domain facade.
type Service struct {
	store       store.Store
	cache       *cache.ContactCache
	cryptor     crypto.Cryptor
	keys        KeySource
	changelog   *changelog.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	concurrency int
}

// Option configures a Service instance.
type Option func(*Service)

// WithConcurrency bounds in-flight crypto operations during staged runs.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func New(
	st store.Store,
	contactCache *cache.ContactCache,
	cryptor crypto.Cryptor,
	keys KeySource,
	publisher *changelog.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:     st,
		cache:     contactCache,
		cryptor:   cryptor,
		keys:      keys,
		changelog: publisher,
		metrics:   m,
		logger:    logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns one contact's decoded properties. Verified is false when any
// card failed signature verification; the properties are still returned.
func (s *Service) Get(ctx context.Context, userID, contactID string) ([]properties.Property, bool, error) {
	ctx, span := tracer.Start(ctx, "contacts.Get")
	defer span.End()

	if props, ok := s.cache.Get(userID, contactID); ok {
		s.metrics.CacheHits.Inc()
		return props, true, nil
	}
	s.metrics.CacheMisses.Inc()

	contact, err := s.store.Get(ctx, userID, contactID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, dErrors.New(dErrors.CodeNotFound, "contact not found")
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "load contact")
	}

	props, verified, err := s.decode(ctx, userID, contact)
	if err != nil {
		return nil, false, err
	}
	if verified {
		s.cache.Set(userID, contactID, props)
	}
	return props, verified, nil
}

// ListContactIDs returns the IDs of every contact in the user's address book.
func (s *Service) ListContactIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.store.ListIDs(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list contacts")
	}
	return ids, nil
}

// ExportAll serializes the user's whole address book to a single vCard
// stream. Contacts whose cards cannot be opened are skipped and logged; an
// export should not fail outright because one contact is damaged.
func (s *Service) ExportAll(ctx context.Context, userID string) (string, error) {
	ctx, span := tracer.Start(ctx, "contacts.ExportAll")
	defer span.End()
	start := time.Now()
	defer s.metrics.ObserveExport(start)

	ids, err := s.store.ListIDs(ctx, userID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "list contacts")
	}
	span.SetAttributes(attribute.Int("contacts.count", len(ids)))

	var lists [][]properties.Property
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeCancelled, "export cancelled")
		}
		props, _, err := s.Get(ctx, userID, id)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping contact during export",
				"contact_id", id, "error", err)
			continue
		}
		lists = append(lists, props)
	}
	return vcard.SerializeAll(lists), nil
}

// Delete removes the given contacts and records the mutation.
func (s *Service) Delete(ctx context.Context, userID string, contactIDs []string) error {
	ctx, span := tracer.Start(ctx, "contacts.Delete")
	defer span.End()

	if len(contactIDs) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "no contact IDs given")
	}
	if err := s.store.Delete(ctx, userID, contactIDs); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete contacts")
	}
	s.emit(ctx, userID, changelog.ActionContactDeleted, contactIDs)
	return nil
}

// Clear removes every contact for the user.
func (s *Service) Clear(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "contacts.Clear")
	defer span.End()

	if err := s.store.Clear(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "clear contacts")
	}
	s.emit(ctx, userID, changelog.ActionContactsCleared, nil)
	return nil
}

// decode opens every card of a contact. Decode failures map to coded errors
// so transports can distinguish unreadable data from infrastructure faults.
func (s *Service) decode(ctx context.Context, userID string, contact models.Contact) ([]properties.Property, bool, error) {
	recipient, signer, err := s.keys.Keys(ctx, userID)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "resolve user keys")
	}

	result, err := cardcodec.Decode(ctx, contact.Cards, recipient, signer, s.cryptor)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeFailToDecrypt) {
			s.metrics.DecryptFailures.Inc()
		}
		return nil, false, err
	}
	if !result.Verified {
		s.metrics.SignatureFailures.Inc()
		s.logger.WarnContext(ctx, "contact signature verification failed",
			"contact_id", contact.ID)
	}
	return result.Properties, result.Verified, nil
}

func (s *Service) emit(ctx context.Context, userID string, action changelog.Action, contactIDs []string) {
	event := changelog.Event{
		UserID:     userID,
		Action:     action,
		ContactIDs: contactIDs,
		RequestID:  requestcontext.RequestID(ctx),
	}
	s.cache.Apply(event)
	if err := s.changelog.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "changelog emit failed",
			"action", string(action), "error", err)
	}
}
