package handler

import (
	"strings"

	"contactvault/internal/contacts/models"
	dErrors "contactvault/pkg/domain-errors"
)

// MaxImportContacts bounds one import request; larger address books are
// split client-side.
const MaxImportContacts = 1000

// ImportVCardRequest is the HTTP request body for POST /contacts/import/vcard.
type ImportVCardRequest struct {
	Data      string `json:"data"`
	Overwrite bool   `json:"overwrite"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ImportVCardRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Data) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "data is required")
	}
	return nil
}

// AddContactsRequest is the HTTP request body for POST /contacts. It reuses
// the domain batch contract directly.
type AddContactsRequest struct {
	models.AddContactsRequest
}

func (r *AddContactsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Contacts) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "contacts array must not be empty")
	}
	if len(r.Contacts) > MaxImportContacts {
		return dErrors.Newf(dErrors.CodeInvalidInput, "at most %d contacts per request", MaxImportContacts)
	}
	for i, contact := range r.Contacts {
		if len(contact.Cards) == 0 {
			return dErrors.Newf(dErrors.CodeInvalidInput, "contact %d has no cards", i)
		}
	}
	return nil
}

// DeleteContactsRequest is the HTTP request body for POST /contacts/delete.
type DeleteContactsRequest struct {
	ContactIDs []string `json:"contact_ids"`
}

func (r *DeleteContactsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.ContactIDs) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "contact_ids must not be empty")
	}
	for _, id := range r.ContactIDs {
		if strings.TrimSpace(id) == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "contact_ids must not contain blanks")
		}
	}
	return nil
}

// MergeRequest is the HTTP request body for POST /contacts/merge.
type MergeRequest struct {
	Groups [][]string `json:"groups"`
}

func (r *MergeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Groups) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "groups must not be empty")
	}
	for i, group := range r.Groups {
		if len(group) < 2 {
			return dErrors.Newf(dErrors.CodeInvalidInput, "group %d needs at least two contacts", i)
		}
	}
	return nil
}
