// Package domain holds typed identifiers shared across the lifecycle packages.
//
// Every identifier is a distinct named UUID type so a CandidateID can never be
// passed where a ProviderID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "caregate/pkg/domain-errors"
)

type (
	ProviderID       uuid.UUID
	CandidateID      uuid.UUID
	SuspensionID     uuid.UUID
	BlacklistEntryID uuid.UUID
)

func (id ProviderID) String() string       { return uuid.UUID(id).String() }
func (id CandidateID) String() string      { return uuid.UUID(id).String() }
func (id SuspensionID) String() string     { return uuid.UUID(id).String() }
func (id BlacklistEntryID) String() string { return uuid.UUID(id).String() }

func (id ProviderID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CandidateID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id SuspensionID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id BlacklistEntryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func NewProviderID() ProviderID             { return ProviderID(uuid.New()) }
func NewCandidateID() CandidateID           { return CandidateID(uuid.New()) }
func NewSuspensionID() SuspensionID         { return SuspensionID(uuid.New()) }
func NewBlacklistEntryID() BlacklistEntryID { return BlacklistEntryID(uuid.New()) }

func ParseProviderID(s string) (ProviderID, error) {
	u, err := parseUUID(s, "provider ID")
	return ProviderID(u), err
}

func ParseCandidateID(s string) (CandidateID, error) {
	u, err := parseUUID(s, "candidate ID")
	return CandidateID(u), err
}

func ParseSuspensionID(s string) (SuspensionID, error) {
	u, err := parseUUID(s, "suspension ID")
	return SuspensionID(u), err
}

func ParseBlacklistEntryID(s string) (BlacklistEntryID, error) {
	u, err := parseUUID(s, "blacklist entry ID")
	return BlacklistEntryID(u), err
}

// parseUUID rejects empty, malformed and nil UUIDs at trust boundaries.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

// Text encoding keeps IDs as canonical UUID strings in JSON and log output.

func (id ProviderID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id CandidateID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id SuspensionID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id BlacklistEntryID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ProviderID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CandidateID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *SuspensionID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *BlacklistEntryID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
