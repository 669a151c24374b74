package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these, optionally
// wrapped, so services can translate them into domain errors.
//
// These state facts about a resource, not validation outcomes:
// - ErrNotFound: the contact does not exist in the store
// - ErrConflict: a save would clobber an existing contact without overwrite
// - ErrUnavailable: a backend is temporarily unreachable
//
// Validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
