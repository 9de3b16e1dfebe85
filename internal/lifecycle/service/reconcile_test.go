package service

import (
	"context"
	"time"

	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/audit"
)

func (s *ServiceSuite) seedSuspensions(providerID id.ProviderID, n int) {
	for range n {
		_, err := s.ledger.RecordSuspension(s.ctx, providerID, s.suspendDetails("imported"))
		s.Require().NoError(err)
	}
}

func (s *ServiceSuite) TestInterruptedTerminationIsFinishedByReconciler() {
	p := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100", "LIC-1")
	for range 5 {
		_, err := s.svc.Suspend(s.ctx, p.ID, s.suspendDetails("complaint"))
		s.Require().NoError(err)
	}
	s.sink.Reset()

	s.dir.setFailRemove(true)
	_, err := s.svc.Suspend(s.ctx, p.ID, s.suspendDetails("complaint"))
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Empty(s.sink.Events(), "nothing is published for a failed cascade")
	s.Equal(6, s.countFor(p.ID))

	blocked, _, err := s.svc.CheckBlacklist(s.ctx, p.Credentials)
	s.Require().NoError(err)
	s.True(blocked, "blacklisting runs first so the applicant is already excluded")

	s.dir.setFailRemove(false)
	terminated, err := s.svc.ReconcileTerminations(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, terminated)
	s.Equal(0, s.countFor(p.ID))
	_, err = s.dir.FindProviderByID(s.ctx, p.ID)
	s.Error(err)
	s.Len(s.sink.OfType(audit.EventProviderBlacklisted), 1)
}

func (s *ServiceSuite) TestGetProviderFinishesPendingTermination() {
	p := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100")
	s.seedSuspensions(p.ID, 6)

	_, err := s.svc.GetProvider(s.ctx, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal(0, s.countFor(p.ID))
	s.Len(s.sink.OfType(audit.EventProviderBlacklisted), 1)
}

func (s *ServiceSuite) TestGetProviderBelowThreshold() {
	p := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100")
	s.seedSuspensions(p.ID, 2)

	got, err := s.svc.GetProvider(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
	s.Empty(s.sink.Events())
}

func (s *ServiceSuite) TestReconcilePurgesOrphanedHistory() {
	p := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100")
	s.seedSuspensions(p.ID, 6)
	s.Require().NoError(s.dir.InMemoryStore.RemoveProvider(s.ctx, p.ID))

	terminated, err := s.svc.ReconcileTerminations(s.ctx)
	s.Require().NoError(err)
	s.Zero(terminated)
	s.Equal(0, s.countFor(p.ID))
}

func (s *ServiceSuite) TestReconcileSkipsProvidersBelowThreshold() {
	p := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100")
	s.seedSuspensions(p.ID, 5)

	terminated, err := s.svc.ReconcileTerminations(s.ctx)
	s.Require().NoError(err)
	s.Zero(terminated)
	s.Equal(5, s.countFor(p.ID))
}

func (s *ServiceSuite) TestReconcileContinuesPastFailures() {
	failing := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100")
	s.seedSuspensions(failing.ID, 6)
	s.dir.setFailRemove(true)

	terminated, err := s.svc.ReconcileTerminations(s.ctx)
	s.Error(err)
	s.Zero(terminated)
	s.Equal(6, s.countFor(failing.ID), "history stays until the provider is gone")
}

func (s *ServiceSuite) TestStartReconcilerSweepsImmediately() {
	p := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100")
	s.seedSuspensions(p.ID, 6)

	ctx, cancel := context.WithCancel(s.ctx)
	runs := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- s.svc.StartReconciler(ctx, time.Hour, func(err error) { runs <- err })
	}()

	select {
	case err := <-runs:
		s.NoError(err)
	case <-time.After(2 * time.Second):
		s.FailNow("reconciler did not sweep")
	}
	cancel()
	s.ErrorIs(<-done, context.Canceled)
	s.Equal(0, s.countFor(p.ID))
}
