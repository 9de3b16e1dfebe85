// Package ledger records suspensions per provider. The count used for the
// termination policy is the number of records ever appended, revoked or not.
package ledger

import (
	"context"
	"errors"
	"log/slog"

	"caregate/internal/lifecycle/metrics"
	"caregate/internal/lifecycle/models"
	"caregate/internal/lifecycle/ports"
	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/sentinel"
	"caregate/pkg/requestcontext"
)

// maxAppendAttempts bounds retries when a store reports a lost sequence race.
const maxAppendAttempts = 3

type Service struct {
	store   ports.SuspensionStore
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

func New(store ports.SuspensionStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("suspension store is required")
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

// CountFor returns how many suspensions were ever recorded for the provider.
func (s *Service) CountFor(ctx context.Context, providerID id.ProviderID) (int, error) {
	n, err := s.store.Count(ctx, providerID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count suspensions")
	}
	return n, nil
}

// RecordSuspension appends a record whose sequence is assigned by the same
// atomic step that stores it. Callers must drive threshold decisions from the
// returned Sequence, never from a separate CountFor.
func (s *Service) RecordSuspension(ctx context.Context, providerID id.ProviderID, details models.SuspensionDetails) (*models.SuspensionRecord, error) {
	now := requestcontext.Now(ctx)
	normalized, err := details.Normalize(now)
	if err != nil {
		return nil, err
	}
	if normalized.IssuedBy == "" {
		normalized.IssuedBy = requestcontext.ActorID(ctx)
	}

	var stored *models.SuspensionRecord
	for attempt := 1; attempt <= maxAppendAttempts; attempt++ {
		stored, err = s.store.Append(ctx, models.NewSuspensionRecord(providerID, normalized, now))
		if !errors.Is(err, sentinel.ErrConflict) {
			break
		}
		s.logger.WarnContext(ctx, "suspension sequence race, retrying",
			"provider_id", providerID.String(),
			"attempt", attempt,
		)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record suspension")
	}

	s.metrics.IncrementSuspensions()
	return stored, nil
}

// Retract reverses a RecordSuspension whose operation failed afterwards.
func (s *Service) Retract(ctx context.Context, record *models.SuspensionRecord) error {
	if err := s.store.Retract(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to retract suspension")
	}
	return nil
}

// RevokeActive revokes every active record. Zero revoked is not an error.
func (s *Service) RevokeActive(ctx context.Context, providerID id.ProviderID) (int, error) {
	n, err := s.store.RevokeActive(ctx, providerID, requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke suspensions")
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, providerID id.ProviderID) ([]*models.SuspensionRecord, error) {
	records, err := s.store.List(ctx, providerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list suspensions")
	}
	return records, nil
}

// Purge deletes the provider's whole history. Only termination calls this.
func (s *Service) Purge(ctx context.Context, providerID id.ProviderID) (int, error) {
	n, err := s.store.Purge(ctx, providerID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to purge suspensions")
	}
	return n, nil
}

// ProvidersAtOrAbove lists providers whose count has reached threshold.
func (s *Service) ProvidersAtOrAbove(ctx context.Context, threshold int) ([]id.ProviderID, error) {
	ids, err := s.store.ProvidersAtOrAbove(ctx, threshold)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to scan suspension counts")
	}
	return ids, nil
}
