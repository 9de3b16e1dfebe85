package service

import (
	"context"
	"errors"
	"time"

	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
)

// ReconcileTerminations finishes terminations a crash interrupted. Providers
// at or above the threshold that still exist are terminated; ledgers left
// behind by removed providers are purged. Returns how many providers were
// terminated. One provider failing does not stop the sweep.
func (s *Service) ReconcileTerminations(ctx context.Context) (terminated int, err error) {
	ctx, end := s.startSpan(ctx, "ReconcileTerminations")
	defer end(&err)

	ids, err := s.ledger.ProvidersAtOrAbove(ctx, s.config.SuspensionTerminationThreshold)
	if err != nil {
		return 0, err
	}

	var errs []error
	for _, providerID := range ids {
		done, err := s.reconcileOne(ctx, providerID)
		if err != nil {
			s.logger.ErrorContext(ctx, "reconcile provider failed",
				"provider_id", providerID.String(),
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		if done {
			terminated++
		}
	}
	if terminated > 0 {
		s.logger.InfoContext(ctx, "reconciled interrupted terminations", "count", terminated)
	}
	return terminated, errors.Join(errs...)
}

func (s *Service) reconcileOne(ctx context.Context, providerID id.ProviderID) (bool, error) {
	c := newCascade()
	var terminated bool
	err := s.inTx(ctx, providerKey(providerID), c, func(ctx context.Context) error {
		provider, err := s.findProvider(ctx, providerID)
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			purged, err := s.ledger.Purge(ctx, providerID)
			if purged > 0 {
				s.logger.InfoContext(ctx, "purged orphaned suspension history",
					"provider_id", providerID.String(),
					"purged_count", purged,
				)
			}
			return err
		}
		if err != nil {
			return err
		}
		terminated, err = s.reconcileLocked(ctx, c, provider)
		return err
	})
	return terminated, err
}

// StartReconciler sweeps once immediately, then every interval until ctx is
// cancelled. onRun, if set, observes each sweep's error.
func (s *Service) StartReconciler(ctx context.Context, interval time.Duration, onRun func(error)) error {
	sweep := func() {
		_, err := s.ReconcileTerminations(ctx)
		if onRun != nil {
			onRun(err)
		}
	}
	sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
