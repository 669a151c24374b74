package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"contactvault/internal/contacts/models"
	"contactvault/pkg/platform/sentinel"
)

// RemoteStore talks to another contact vault instance over its HTTP API. It
// lets a node delegate persistence to a central deployment while keeping the
// same Store contract as local backends.
type RemoteStore struct {
	client *resty.Client
	logger *slog.Logger
}

// NewRemoteStore builds a remote store client. token is sent as a bearer
// credential on every request.
func NewRemoteStore(baseURL, token string, logger *slog.Logger) *RemoteStore {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetAuthToken(token).
		SetHeader("Accept", "application/json")

	return &RemoteStore{client: client, logger: logger}
}

type remoteError struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

func (s *RemoteStore) Save(ctx context.Context, userID string, contact models.Contact, overwrite bool) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"user": userID, "contact": contact.ID}).
		SetQueryParam("overwrite", fmt.Sprintf("%t", overwrite)).
		SetBody(contact).
		SetError(&remoteError{}).
		Put("/v1/users/{user}/contacts/{contact}")
	if err != nil {
		return fmt.Errorf("remote save contact %s: %w", contact.ID, err)
	}
	return s.checkStatus(resp, contact.ID)
}

func (s *RemoteStore) Get(ctx context.Context, userID, contactID string) (models.Contact, error) {
	var contact models.Contact
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"user": userID, "contact": contactID}).
		SetResult(&contact).
		SetError(&remoteError{}).
		Get("/v1/users/{user}/contacts/{contact}")
	if err != nil {
		return models.Contact{}, fmt.Errorf("remote get contact %s: %w", contactID, err)
	}
	if err := s.checkStatus(resp, contactID); err != nil {
		return models.Contact{}, err
	}
	return contact, nil
}

func (s *RemoteStore) ListIDs(ctx context.Context, userID string) ([]string, error) {
	var ids struct {
		ContactIDs []string `json:"contact_ids"`
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("user", userID).
		SetResult(&ids).
		SetError(&remoteError{}).
		Get("/v1/users/{user}/contacts")
	if err != nil {
		return nil, fmt.Errorf("remote list contacts: %w", err)
	}
	if err := s.checkStatus(resp, ""); err != nil {
		return nil, err
	}
	return ids.ContactIDs, nil
}

func (s *RemoteStore) Delete(ctx context.Context, userID string, contactIDs []string) error {
	if len(contactIDs) == 0 {
		return nil
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("user", userID).
		SetBody(map[string][]string{"contact_ids": contactIDs}).
		SetError(&remoteError{}).
		Post("/v1/users/{user}/contacts/delete")
	if err != nil {
		return fmt.Errorf("remote delete contacts: %w", err)
	}
	return s.checkStatus(resp, "")
}

func (s *RemoteStore) Clear(ctx context.Context, userID string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("user", userID).
		SetError(&remoteError{}).
		Delete("/v1/users/{user}/contacts")
	if err != nil {
		return fmt.Errorf("remote clear contacts: %w", err)
	}
	return s.checkStatus(resp, "")
}

func (s *RemoteStore) checkStatus(resp *resty.Response, contactID string) error {
	switch {
	case resp.IsSuccess():
		return nil
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("contact %s: %w", contactID, sentinel.ErrNotFound)
	case resp.StatusCode() == http.StatusConflict:
		return fmt.Errorf("contact %s: %w", contactID, sentinel.ErrConflict)
	}
	if remoteErr, ok := resp.Error().(*remoteError); ok && remoteErr.Description != "" {
		s.logger.Error("remote store request failed",
			"status", resp.StatusCode(),
			"code", remoteErr.Code,
			"description", remoteErr.Description,
		)
		return fmt.Errorf("remote store: %s: %w", remoteErr.Description, sentinel.ErrUnavailable)
	}
	return fmt.Errorf("remote store: status %d: %w", resp.StatusCode(), sentinel.ErrUnavailable)
}
