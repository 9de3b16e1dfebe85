package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/audit"
	"caregate/pkg/platform/sentinel"
	"caregate/pkg/requestcontext"
)

// Termination triggers, used as the metrics label.
const (
	triggerThreshold = "threshold"
	triggerReconcile = "reconcile"
)

// Suspend records a suspension and moves the provider to Suspended. When the
// sequence number returned by the ledger reaches the termination threshold the
// provider is terminated instead: its credentials are blacklisted, it is
// removed from the directory and its suspension history is purged. A failed
// state change retracts the record; a failed termination is left for
// reconciliation to finish.
func (s *Service) Suspend(ctx context.Context, providerID id.ProviderID, details models.SuspensionDetails) (outcome *models.Outcome, err error) {
	ctx, end := s.startSpan(ctx, "Suspend", attribute.String("provider_id", providerID.String()))
	defer end(&err)

	c := newCascade()
	err = s.inTx(ctx, providerKey(providerID), c, func(ctx context.Context) error {
		provider, err := s.findProvider(ctx, providerID)
		if err != nil {
			return err
		}
		if err := provider.CanSuspend(); err != nil {
			return err
		}

		record, err := s.ledger.RecordSuspension(ctx, providerID, details)
		if err != nil {
			return err
		}
		c.outcome.Suspension = record
		c.outcome.Provider = provider
		c.record(models.EffectSuspensionRecorded)

		c.queue(audit.EventProviderSuspended, suspensionSeverity(record), suspensionDetails(record),
			"entity_type", string(models.EntityProvider),
			"entity_id", providerID.String(),
			"display_name", provider.Name,
			"email", provider.Credentials.Email,
			"reason", strings.Join(record.Reasons, "; "),
		)

		// A sequence past the threshold means an earlier termination did not finish.
		if record.Sequence >= s.config.SuspensionTerminationThreshold {
			return s.terminate(ctx, c, provider, triggerThreshold)
		}

		c.onFailure(func(ctx context.Context) error {
			return s.ledger.Retract(ctx, record)
		})
		now := requestcontext.Now(ctx)
		provider.ApplySuspension(now)
		if err := s.directory.UpdateProviderState(ctx, providerID, models.ProviderSuspended, now); err != nil {
			return s.directoryWriteError(err, "failed to mark provider suspended")
		}
		c.record(models.EffectProviderStateChanged)
		return nil
	})
	return c.outcome, err
}

// Unsuspend revokes every active suspension and returns the provider to
// Active. The suspension count is not reset. A provider whose count already
// reached the threshold is terminated instead.
func (s *Service) Unsuspend(ctx context.Context, providerID id.ProviderID) (outcome *models.Outcome, err error) {
	ctx, end := s.startSpan(ctx, "Unsuspend", attribute.String("provider_id", providerID.String()))
	defer end(&err)

	c := newCascade()
	err = s.inTx(ctx, providerKey(providerID), c, func(ctx context.Context) error {
		provider, err := s.findProvider(ctx, providerID)
		if err != nil {
			return err
		}
		terminated, err := s.reconcileLocked(ctx, c, provider)
		if err != nil || terminated {
			return err
		}
		if err := provider.CanUnsuspend(); err != nil {
			return err
		}

		revoked, err := s.ledger.RevokeActive(ctx, providerID)
		if err != nil {
			return err
		}
		c.outcome.Provider = provider
		c.outcome.RevokedCount = revoked
		if revoked > 0 {
			c.record(models.EffectSuspensionsRevoked)
		}

		now := requestcontext.Now(ctx)
		changed := provider.ApplyUnsuspension(now)
		if changed {
			if err := s.directory.UpdateProviderState(ctx, providerID, models.ProviderActive, now); err != nil {
				return s.directoryWriteError(err, "failed to mark provider active")
			}
			c.record(models.EffectProviderStateChanged)
		}

		if changed || revoked > 0 {
			c.queue(audit.EventProviderUnsuspended, audit.SeverityInfo,
				map[string]string{"revoked_count": strconv.Itoa(revoked)},
				"entity_type", string(models.EntityProvider),
				"entity_id", providerID.String(),
				"display_name", provider.Name,
				"email", provider.Credentials.Email,
			)
		}
		return nil
	})
	return c.outcome, err
}

// DeleteProvider is the admin override: the provider's credentials are
// blacklisted with reason manual and the provider is removed. The suspension
// history is left alone. If the removal fails the blacklist entry is taken
// back.
func (s *Service) DeleteProvider(ctx context.Context, providerID id.ProviderID, reason string) (outcome *models.Outcome, err error) {
	ctx, end := s.startSpan(ctx, "DeleteProvider", attribute.String("provider_id", providerID.String()))
	defer end(&err)

	c := newCascade()
	err = s.inTx(ctx, providerKey(providerID), c, func(ctx context.Context) error {
		provider, err := s.findProvider(ctx, providerID)
		if err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		entry, err := s.blacklistProvider(ctx, c, provider, models.ReasonManual)
		if err != nil {
			return err
		}
		s.undoBlacklistEntry(c, entry)

		if err := s.directory.RemoveProvider(ctx, providerID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove provider")
		}
		provider.ApplyTermination(now)
		c.outcome.Provider = provider
		c.record(models.EffectProviderRemoved)

		c.queue(audit.EventProviderDeleted, audit.SeverityWarning,
			map[string]string{"blacklist_id": entry.ID.String()},
			"entity_type", string(models.EntityProvider),
			"entity_id", providerID.String(),
			"display_name", provider.Name,
			"email", provider.Credentials.Email,
			"reason", reason,
		)
		return nil
	})
	return c.outcome, err
}

// GetProvider returns the provider, completing a pending termination first.
func (s *Service) GetProvider(ctx context.Context, providerID id.ProviderID) (provider *models.Provider, err error) {
	ctx, end := s.startSpan(ctx, "GetProvider", attribute.String("provider_id", providerID.String()))
	defer end(&err)

	provider, err = s.findProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	count, err := s.ledger.CountFor(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if count < s.config.SuspensionTerminationThreshold {
		return provider, nil
	}

	c := newCascade()
	var terminated bool
	err = s.inTx(ctx, providerKey(providerID), c, func(ctx context.Context) error {
		current, err := s.findProvider(ctx, providerID)
		if err != nil {
			return err
		}
		terminated, err = s.reconcileLocked(ctx, c, current)
		provider = current
		return err
	})
	if err != nil {
		return nil, err
	}
	if terminated {
		return nil, dErrors.New(dErrors.CodeNotFound, "provider not found")
	}
	return provider, nil
}

// ListSuspensions returns the provider's suspension history in sequence order.
func (s *Service) ListSuspensions(ctx context.Context, providerID id.ProviderID) ([]*models.SuspensionRecord, error) {
	return s.ledger.List(ctx, providerID)
}

// reconcileLocked terminates provider if its count has reached the threshold.
// The caller holds the provider's transaction.
func (s *Service) reconcileLocked(ctx context.Context, c *cascade, provider *models.Provider) (bool, error) {
	count, err := s.ledger.CountFor(ctx, provider.ID)
	if err != nil {
		return false, err
	}
	if count < s.config.SuspensionTerminationThreshold {
		return false, nil
	}
	s.logger.WarnContext(ctx, "completing interrupted termination",
		"provider_id", provider.ID.String(),
		"suspension_count", count,
	)
	return true, s.terminate(ctx, c, provider, triggerReconcile)
}

// terminate runs the termination cascade in crash-safe order: blacklist,
// remove, purge. Any prefix of it leaves the count at or above the threshold
// with the provider either present or gone, which reconciliation finishes.
func (s *Service) terminate(ctx context.Context, c *cascade, provider *models.Provider, trigger string) error {
	if err := provider.CanTerminate(); err != nil {
		return err
	}
	now := requestcontext.Now(ctx)

	entry, err := s.blacklistProvider(ctx, c, provider, models.ReasonProviderTerminated)
	if err != nil {
		return err
	}

	if err := s.directory.RemoveProvider(ctx, provider.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove terminated provider")
	}
	c.record(models.EffectProviderRemoved)

	purged, err := s.ledger.Purge(ctx, provider.ID)
	if err != nil {
		return err
	}
	c.outcome.PurgedCount = purged
	c.record(models.EffectSuspensionsPurged)

	provider.ApplyTermination(now)
	c.outcome.Provider = provider
	c.outcome.Terminated = true
	s.metrics.IncrementTerminations(trigger)

	c.queue(audit.EventProviderBlacklisted, audit.SeverityCritical,
		map[string]string{"blacklist_id": entry.ID.String(), "trigger": trigger, "purged_count": strconv.Itoa(purged)},
		"entity_type", string(models.EntityProvider),
		"entity_id", provider.ID.String(),
		"display_name", provider.Name,
		"email", provider.Credentials.Email,
		"reason", string(models.ReasonProviderTerminated),
	)
	return nil
}

func (s *Service) blacklistProvider(ctx context.Context, c *cascade, provider *models.Provider, reason models.BlacklistReason) (*models.BlacklistEntry, error) {
	entry, err := models.NewBlacklistEntry(provider.Credentials, reason,
		models.Origin{EntityType: models.EntityProvider, EntityID: provider.ID.String(), DisplayName: provider.Name},
		nil, requestcontext.ActorID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.blacklist.Add(ctx, entry); err != nil {
		return nil, err
	}
	c.outcome.BlacklistEntry = entry
	c.record(models.EffectBlacklistEntryCreated)
	return entry, nil
}

// undoBlacklistEntry hard-deletes entry if the operation that added it fails.
func (s *Service) undoBlacklistEntry(c *cascade, entry *models.BlacklistEntry) {
	c.onFailure(func(ctx context.Context) error {
		_, err := s.blacklist.Deactivate(ctx, entry.ID, true)
		return err
	})
}

func (s *Service) findProvider(ctx context.Context, providerID id.ProviderID) (*models.Provider, error) {
	provider, err := s.directory.FindProviderByID(ctx, providerID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "provider not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load provider")
	}
	return provider, nil
}

func (s *Service) directoryWriteError(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "provider not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func suspensionSeverity(record *models.SuspensionRecord) audit.Severity {
	switch record.Severity {
	case models.SeverityMajor, models.SeverityCritical:
		return audit.SeverityWarning
	}
	return audit.SeverityInfo
}

func suspensionDetails(record *models.SuspensionRecord) map[string]string {
	d := map[string]string{
		"suspension_id": record.ID.String(),
		"sequence":      strconv.Itoa(record.Sequence),
		"kind":          string(record.Kind),
		"severity":      string(record.Severity),
		"issued_by":     record.IssuedBy,
	}
	if record.Period.End != nil {
		d["ends_at"] = record.Period.End.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return d
}
