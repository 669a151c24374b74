// Package models holds the contact and card records exchanged with the
// remote store, plus the batch submit contract.
package models

// CardType distinguishes the protection level of one card payload.
type CardType int

const (
	// CardClearText holds plaintext data with no signature.
	CardClearText CardType = 1
	// CardSigned holds plaintext data with a detached signature.
	CardSigned CardType = 2
	// CardEncryptedAndSigned holds encrypted data with a detached signature.
	CardEncryptedAndSigned CardType = 3
)

// Card is one payload blob composing a stored contact. Data is vCard text
// for clear/signed cards and base64 ciphertext for encrypted cards.
type Card struct {
	Type      CardType `json:"Type"`
	Data      string   `json:"Data"`
	Signature string   `json:"Signature,omitempty"`
}

// Contact is the stored record: an ID plus up to three cards. Contacts are
// mutated only by whole-card replacement, never by partial patch.
type Contact struct {
	ID    string `json:"ID"`
	Cards []Card `json:"Cards"`
}

// EncodedContact is the submit-side shape: cards ready for the store, no ID
// yet (the store assigns one).
type EncodedContact struct {
	Cards []Card `json:"Cards"`
}

// AddContactsRequest is the batch submit contract.
type AddContactsRequest struct {
	Contacts  []EncodedContact `json:"Contacts"`
	Overwrite int              `json:"Overwrite"`
	Labels    int              `json:"Labels"`
}

// Per-item response codes. CodeSuccess identifies a fully accepted contact;
// anything else carries a human-readable Error alongside.
const (
	CodeSuccess  = 1000
	CodeRejected = 2001
)

// ItemResponse is the per-item result of a batch submit.
type ItemResponse struct {
	Code    int      `json:"Code"`
	Contact *Contact `json:"Contact,omitempty"`
	Error   string   `json:"Error,omitempty"`
}

// Accepted reports whether the item was fully accepted by the store.
func (r ItemResponse) Accepted() bool { return r.Code == CodeSuccess }
