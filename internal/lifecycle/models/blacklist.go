package models

import (
	"time"

	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
)

// BlacklistReason records why a credential fingerprint was excluded.
type BlacklistReason string

const (
	ReasonProviderTerminated          BlacklistReason = "provider_terminated"
	ReasonCandidateRejectedRepeatedly BlacklistReason = "candidate_rejected_repeatedly"
	ReasonLicenseConflict             BlacklistReason = "license_conflict"
	ReasonManual                      BlacklistReason = "manual"
)

func (r BlacklistReason) IsValid() bool {
	switch r {
	case ReasonProviderTerminated, ReasonCandidateRejectedRepeatedly, ReasonLicenseConflict, ReasonManual:
		return true
	}
	return false
}

// EntityType names the kind of identity an entry or conflict refers to.
type EntityType string

const (
	EntityProvider  EntityType = "provider"
	EntityCandidate EntityType = "candidate"
	EntityAdmin     EntityType = "admin"
)

// Origin references the identity whose credentials produced an entry.
type Origin struct {
	EntityType  EntityType `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	DisplayName string     `json:"display_name,omitempty"`
}

// BlacklistEntry excludes a credential fingerprint from registration.
//
// Invariants:
//   - Fingerprint has at least one populated field
//   - Only Active and ExpiresAt change after creation
//   - Duplicate entries for the same credentials are allowed
type BlacklistEntry struct {
	ID          id.BlacklistEntryID `json:"id"`
	Fingerprint CredentialSet       `json:"fingerprint"`
	Reason      BlacklistReason     `json:"reason"`
	Origin      Origin              `json:"origin"`
	Active      bool                `json:"active"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	CreatedBy   string              `json:"created_by,omitempty"`
}

// NewBlacklistEntry builds an in-force entry for creds.
func NewBlacklistEntry(creds CredentialSet, reason BlacklistReason, origin Origin, expiresAt *time.Time, createdBy string, now time.Time) (*BlacklistEntry, error) {
	fp := creds.Normalized()
	if fp.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "blacklist fingerprint requires email, phone or license")
	}
	if !reason.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown blacklist reason: "+string(reason))
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "blacklist expiry must be in the future")
	}
	return &BlacklistEntry{
		ID:          id.NewBlacklistEntryID(),
		Fingerprint: fp,
		Reason:      reason,
		Origin:      origin,
		Active:      true,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		CreatedBy:   createdBy,
	}, nil
}

// InForce reports whether the entry is active and not yet expired at now.
func (e *BlacklistEntry) InForce(now time.Time) bool {
	return e.Active && (e.ExpiresAt == nil || e.ExpiresAt.After(now))
}

// Matches reports whether creds collide with this entry and the entry is in force.
func (e *BlacklistEntry) Matches(creds CredentialSet, now time.Time) (Collision, bool) {
	if !e.InForce(now) {
		return Collision{}, false
	}
	return creds.Collide(e.Fingerprint)
}

// IsExpired reports whether an active entry has passed its expiry.
func (e *BlacklistEntry) IsExpired(now time.Time) bool {
	return e.Active && e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}
