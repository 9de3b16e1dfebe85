package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally wrapped)
// so services can translate them into domain errors.
//
// These represent factual states about records, not policy decisions:
//   - ErrNotFound: entity does not exist in the store
//   - ErrAlreadyUsed: a unique key (provider email, ledger sequence) is already taken
//   - ErrConflict: a conditional write lost a race and may be retried
//   - ErrInvalidState: entity in wrong state for the requested mutation
//   - ErrUnavailable: backing service temporarily unavailable
//
// Policy outcomes (blacklisted, duplicate credential) are domain errors, see pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
