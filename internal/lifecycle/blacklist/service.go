// Package blacklist answers whether a credential set is excluded from
// registration and manages the entries that exclude it.
package blacklist

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"caregate/internal/lifecycle/metrics"
	"caregate/internal/lifecycle/models"
	"caregate/internal/lifecycle/ports"
	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/sentinel"
	"caregate/pkg/requestcontext"
)

// Match is an in-force entry together with the field that collided.
type Match struct {
	Entry     *models.BlacklistEntry
	Collision models.Collision
}

type Service struct {
	store   ports.BlacklistStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store ports.BlacklistStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("blacklist store is required")
	}
	svc := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// IsBlacklisted returns the first in-force entry colliding with creds, or nil.
func (s *Service) IsBlacklisted(ctx context.Context, creds models.CredentialSet) (*models.BlacklistEntry, error) {
	match, err := s.FirstMatch(ctx, creds)
	if err != nil || match == nil {
		return nil, err
	}
	return match.Entry, nil
}

// FirstMatch is IsBlacklisted plus the colliding field. Entries are checked
// oldest first; expired entries that cleanup has not reached yet are skipped.
func (s *Service) FirstMatch(ctx context.Context, creds models.CredentialSet) (*Match, error) {
	creds = creds.Normalized()
	if creds.IsEmpty() {
		return nil, nil
	}
	candidates, err := s.store.FindCandidates(ctx, creds)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check blacklist")
	}
	now := requestcontext.Now(ctx)
	for _, entry := range candidates {
		if hit, ok := entry.Matches(creds, now); ok {
			return &Match{Entry: entry, Collision: hit}, nil
		}
	}
	return nil, nil
}

// Add inserts an in-force entry. Entries duplicating existing ones are accepted.
func (s *Service) Add(ctx context.Context, entry *models.BlacklistEntry) error {
	if entry == nil || entry.Fingerprint.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "blacklist fingerprint requires email, phone or license")
	}
	if err := s.store.Add(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add blacklist entry")
	}
	s.metrics.IncrementBlacklistInsertions(string(entry.Reason))
	s.logger.InfoContext(ctx, "blacklist entry added",
		"entry_id", entry.ID.String(),
		"reason", entry.Reason,
		"origin_type", entry.Origin.EntityType,
		"origin_id", entry.Origin.EntityID,
	)
	return nil
}

// Deactivate soft-deletes an entry, or hard-deletes it when permanent.
// Returns whether anything changed. Repeating either form is a no-op.
// A missing entry is NotFound only for soft deletion.
func (s *Service) Deactivate(ctx context.Context, entryID id.BlacklistEntryID, permanent bool) (bool, error) {
	if permanent {
		err := s.store.Delete(ctx, entryID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete blacklist entry")
		}
		return true, nil
	}

	changed, err := s.store.Deactivate(ctx, entryID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, dErrors.New(dErrors.CodeNotFound, "blacklist entry not found")
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate blacklist entry")
	}
	return changed, nil
}

func (s *Service) Get(ctx context.Context, entryID id.BlacklistEntryID) (*models.BlacklistEntry, error) {
	entry, err := s.store.Get(ctx, entryID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "blacklist entry not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get blacklist entry")
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, includeInactive bool) ([]*models.BlacklistEntry, error) {
	entries, err := s.store.List(ctx, includeInactive)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blacklist entries")
	}
	return entries, nil
}

// RemoveExpiredAt deactivates entries whose expiry is at or before now.
// Exported for testability; StartCleanup passes wall-clock time.
func (s *Service) RemoveExpiredAt(ctx context.Context, now time.Time) (int, error) {
	n, err := s.store.DeactivateExpired(ctx, now)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clean up expired blacklist entries")
	}
	if n > 0 {
		s.metrics.AddBlacklistExpired(n)
		s.logger.InfoContext(ctx, "expired blacklist entries deactivated", "count", n)
	}
	return n, nil
}

// StartCleanup runs RemoveExpiredAt every interval until ctx is cancelled.
// Iteration failures are logged; the loop keeps going.
func (s *Service) StartCleanup(ctx context.Context, interval time.Duration, onRun func(error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, err := s.RemoveExpiredAt(ctx, time.Now())
			if err != nil {
				s.logger.ErrorContext(ctx, "blacklist cleanup failed", "error", err)
			}
			if onRun != nil {
				onRun(err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
