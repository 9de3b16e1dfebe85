package service

import (
	"fmt"

	"caregate/internal/lifecycle/models"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/audit"
)

func (s *ServiceSuite) TestRetriedRejectionIsCountedOnce() {
	c := s.register(s.fullRequest("retry@clinic.test", "+300"))
	s.sink.Reset()
	s.dir.failNextCandidateRemovals(2)

	for range 2 {
		_, err := s.svc.RejectCandidate(s.ctx, c.ID, "not qualified")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeInternal))
	}
	out, err := s.svc.RejectCandidate(s.ctx, c.ID, "not qualified")
	s.Require().NoError(err)
	s.Equal(1, out.RejectionCount)
	s.Nil(out.BlacklistEntry)

	n, err := s.rejections.Count(s.ctx, "retry@clinic.test")
	s.Require().NoError(err)
	s.Equal(1, n)
	entries, err := s.svc.ListBlacklist(s.ctx, true)
	s.Require().NoError(err)
	s.Empty(entries)
	s.Equal([]audit.EventType{audit.EventCandidateRejected}, s.sink.Types())
}

func (s *ServiceSuite) TestFailedThresholdRejectionTakesBackBlacklistEntry() {
	for i := range 2 {
		c := s.register(s.fullRequest("repeat@clinic.test", fmt.Sprintf("+40%d", i)))
		_, err := s.svc.RejectCandidate(s.ctx, c.ID, "not qualified")
		s.Require().NoError(err)
	}
	c := s.register(s.fullRequest("repeat@clinic.test", "+409"))
	s.dir.failNextCandidateRemovals(1)

	_, err := s.svc.RejectCandidate(s.ctx, c.ID, "not qualified")
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInternal))
	entries, err := s.svc.ListBlacklist(s.ctx, true)
	s.Require().NoError(err)
	s.Empty(entries, "the failed rejection leaves no blacklist entry")
	n, err := s.rejections.Count(s.ctx, "repeat@clinic.test")
	s.Require().NoError(err)
	s.Equal(2, n)

	out, err := s.svc.RejectCandidate(s.ctx, c.ID, "not qualified")
	s.Require().NoError(err)
	s.Equal(3, out.RejectionCount)
	s.Require().NotNil(out.BlacklistEntry)
	entries, err = s.svc.ListBlacklist(s.ctx, true)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *ServiceSuite) TestFailedDeleteProviderTakesBackBlacklistEntry() {
	p := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100")
	s.dir.setFailRemove(true)

	_, err := s.svc.DeleteProvider(s.ctx, p.ID, "fraud")
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInternal))
	entries, err := s.svc.ListBlacklist(s.ctx, true)
	s.Require().NoError(err)
	s.Empty(entries)
	s.Equal(models.ProviderActive, s.stateOf(p.ID))
	s.Empty(s.sink.Events())

	s.dir.setFailRemove(false)
	_, err = s.svc.DeleteProvider(s.ctx, p.ID, "fraud")
	s.Require().NoError(err)
	entries, err = s.svc.ListBlacklist(s.ctx, true)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *ServiceSuite) TestFailedStateChangeRetractsSuspension() {
	p := s.activeProvider("Dr. Ada", "ada@clinic.test", "+100")
	s.dir.failNextStateUpdates(1)

	_, err := s.svc.Suspend(s.ctx, p.ID, s.suspendDetails("complaint"))
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(0, s.countFor(p.ID))
	s.Equal(models.ProviderActive, s.stateOf(p.ID))
	s.Empty(s.sink.Events())

	out, err := s.svc.Suspend(s.ctx, p.ID, s.suspendDetails("complaint"))
	s.Require().NoError(err)
	s.Equal(1, out.Suspension.Sequence)
	s.Equal(1, s.countFor(p.ID))
}

func (s *ServiceSuite) TestFailedApprovalRemovesInsertedProvider() {
	c := s.register(s.fullRequest("grace@clinic.test", "+200"))
	s.dir.failNextCandidateRemovals(1)

	_, err := s.svc.ApproveCandidate(s.ctx, c.ID)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInternal))
	_, err = s.dir.FindProviderByEmail(s.ctx, "grace@clinic.test")
	s.Error(err, "the provider insert was taken back")
	_, err = s.dir.FindCandidateByID(s.ctx, c.ID)
	s.NoError(err)

	out, err := s.svc.ApproveCandidate(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.ProviderActive, out.Provider.State)
}
