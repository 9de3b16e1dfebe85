// Package ports defines the interfaces the lifecycle engine consumes.
// Stores return sentinel errors; services translate them into domain errors.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	"caregate/pkg/platform/audit"
)

// EventSink delivers lifecycle notifications. Delivery is best effort; callers
// log and swallow errors.
type EventSink interface {
	Emit(ctx context.Context, eventType audit.EventType, payload audit.Event) error
}

// Directory persists provider and candidate identities.
//
// Find* methods return sentinel.ErrNotFound when nothing matches. Insert*
// return sentinel.ErrAlreadyUsed when a uniqueness constraint rejects the row;
// that is the authoritative duplicate check for racing approvals.
type Directory interface {
	FindProviderByID(ctx context.Context, providerID id.ProviderID) (*models.Provider, error)
	FindProviderByEmail(ctx context.Context, email string) (*models.Provider, error)
	FindProviderByPhone(ctx context.Context, phone string) (*models.Provider, error)
	FindProviderByLicense(ctx context.Context, license string) (*models.Provider, error)

	FindCandidateByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error)
	FindCandidateByEmail(ctx context.Context, email string) (*models.Candidate, error)
	FindCandidateByPhone(ctx context.Context, phone string) (*models.Candidate, error)
	FindCandidateByLicense(ctx context.Context, license string) (*models.Candidate, error)

	InsertProvider(ctx context.Context, provider *models.Provider) error
	InsertCandidate(ctx context.Context, candidate *models.Candidate) error
	RemoveProvider(ctx context.Context, providerID id.ProviderID) error
	RemoveCandidate(ctx context.Context, candidateID id.CandidateID) error
	UpdateProviderState(ctx context.Context, providerID id.ProviderID, state models.ProviderState, now time.Time) error
}

// SuspensionStore is the persistence behind the suspension ledger.
type SuspensionStore interface {
	// Append assigns the next sequence number for the provider and stores the
	// record in one atomic step. The returned record carries the sequence.
	Append(ctx context.Context, record *models.SuspensionRecord) (*models.SuspensionRecord, error)

	// Count returns the number of records ever appended for the provider,
	// including revoked ones.
	Count(ctx context.Context, providerID id.ProviderID) (int, error)

	// RevokeActive marks every active record revoked and returns how many changed.
	RevokeActive(ctx context.Context, providerID id.ProviderID, now time.Time) (int, error)

	// List returns the provider's records ordered by sequence.
	List(ctx context.Context, providerID id.ProviderID) ([]*models.SuspensionRecord, error)

	// Retract removes record and rolls the sequence back when record is still
	// the provider's latest; otherwise it returns sentinel.ErrNotFound. It
	// reverses an Append whose surrounding operation failed.
	Retract(ctx context.Context, record *models.SuspensionRecord) error

	// Purge deletes the provider's records and sequence. Returns the number of
	// records removed.
	Purge(ctx context.Context, providerID id.ProviderID) (int, error)

	// ProvidersAtOrAbove lists providers whose count is at least threshold.
	ProvidersAtOrAbove(ctx context.Context, threshold int) ([]id.ProviderID, error)
}

// BlacklistStore is the persistence behind the blacklist registry.
type BlacklistStore interface {
	Add(ctx context.Context, entry *models.BlacklistEntry) error
	Get(ctx context.Context, entryID id.BlacklistEntryID) (*models.BlacklistEntry, error)
	List(ctx context.Context, includeInactive bool) ([]*models.BlacklistEntry, error)

	// FindCandidates returns active entries sharing at least one populated field
	// with creds, oldest first. Expiry filtering is the caller's job.
	FindCandidates(ctx context.Context, creds models.CredentialSet) ([]*models.BlacklistEntry, error)

	// Deactivate clears the active flag. Returns false if it was already clear.
	Deactivate(ctx context.Context, entryID id.BlacklistEntryID) (bool, error)

	// Delete removes the entry. Returns sentinel.ErrNotFound if absent.
	Delete(ctx context.Context, entryID id.BlacklistEntryID) error

	// DeactivateExpired soft-deletes active entries whose expiry is at or before now.
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}

// RejectionCounter keeps per-email rejection totals independent of candidate records.
type RejectionCounter interface {
	// Increment adds one rejection and returns the post-increment total.
	Increment(ctx context.Context, email string) (int, error)
	// Decrement reverses one Increment whose operation failed. It never takes
	// the total below zero.
	Decrement(ctx context.Context, email string) error
	Count(ctx context.Context, email string) (int, error)
}

// StoreTx serializes work on one key and, where the backend supports it, runs
// it inside a single transaction.
type StoreTx interface {
	RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
