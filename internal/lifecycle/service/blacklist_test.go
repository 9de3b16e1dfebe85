package service

import (
	"time"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/audit"
	"caregate/pkg/requestcontext"
)

func (s *ServiceSuite) TestAddBlacklistEntry() {
	expires := s.now.Add(30 * 24 * time.Hour)
	out, err := s.svc.AddBlacklistEntry(s.ctx, AddBlacklistEntryRequest{
		Email:     "Banned@Clinic.test",
		Licenses:  []string{"LIC-9"},
		Note:      "board sanction",
		ExpiresAt: &expires,
	})
	s.Require().NoError(err)

	entry := out.BlacklistEntry
	s.Equal(models.ReasonManual, entry.Reason)
	s.Equal(models.EntityAdmin, entry.Origin.EntityType)
	s.Equal("admin-1", entry.Origin.EntityID)
	s.Equal("banned@clinic.test", entry.Fingerprint.Email)
	s.True(entry.Active)
	s.Equal([]audit.EventType{audit.EventBlacklistEntryAdded}, out.Events)

	got, err := s.svc.GetBlacklistEntry(s.ctx, entry.ID)
	s.Require().NoError(err)
	s.Equal(entry.ID, got.ID)
}

func (s *ServiceSuite) TestAddBlacklistEntryRequiresCredentials() {
	_, err := s.svc.AddBlacklistEntry(s.ctx, AddBlacklistEntryRequest{Note: "nothing"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Empty(s.sink.Events())
}

func (s *ServiceSuite) TestExpiredEntryDoesNotBlock() {
	expires := s.now.Add(time.Hour)
	_, err := s.svc.AddBlacklistEntry(s.ctx, AddBlacklistEntryRequest{Email: "old@clinic.test", ExpiresAt: &expires})
	s.Require().NoError(err)

	creds := models.NewCredentialSet("old@clinic.test", "", nil)
	blocked, _, err := s.svc.CheckBlacklist(s.ctx, creds)
	s.Require().NoError(err)
	s.True(blocked)

	later := requestcontext.WithTime(s.ctx, expires)
	blocked, _, err = s.svc.CheckBlacklist(later, creds)
	s.Require().NoError(err)
	s.False(blocked, "an entry stops matching at its expiry")

	_, err = s.svc.RegisterCandidate(later, s.fullRequest("old@clinic.test", "+1"))
	s.NoError(err)
}

func (s *ServiceSuite) TestAddBlacklistEntryRejectsPastExpiry() {
	past := s.now.Add(-time.Minute)
	_, err := s.svc.AddBlacklistEntry(s.ctx, AddBlacklistEntryRequest{Email: "old@clinic.test", ExpiresAt: &past})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestDeactivateBlacklistEntry() {
	out, err := s.svc.AddBlacklistEntry(s.ctx, AddBlacklistEntryRequest{Phone: "+999"})
	s.Require().NoError(err)
	entryID := out.BlacklistEntry.ID

	soft, err := s.svc.DeactivateBlacklistEntry(s.ctx, entryID, false)
	s.Require().NoError(err)
	s.Equal([]models.Effect{models.EffectBlacklistEntryRemoved}, soft.Effects)
	s.Equal([]audit.EventType{audit.EventBlacklistEntryDeactivated}, soft.Events)

	blocked, _, err := s.svc.CheckBlacklist(s.ctx, models.NewCredentialSet("", "+999", nil))
	s.Require().NoError(err)
	s.False(blocked)

	again, err := s.svc.DeactivateBlacklistEntry(s.ctx, entryID, false)
	s.Require().NoError(err)
	s.Empty(again.Events, "a second soft delete is a no-op")

	active, err := s.svc.ListBlacklist(s.ctx, false)
	s.Require().NoError(err)
	s.Empty(active)
	all, err := s.svc.ListBlacklist(s.ctx, true)
	s.Require().NoError(err)
	s.Len(all, 1)

	hard, err := s.svc.DeactivateBlacklistEntry(s.ctx, entryID, true)
	s.Require().NoError(err)
	s.True(hard.Has(models.EffectBlacklistEntryRemoved))
	_, err = s.svc.GetBlacklistEntry(s.ctx, entryID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	gone, err := s.svc.DeactivateBlacklistEntry(s.ctx, entryID, true)
	s.Require().NoError(err)
	s.Empty(gone.Effects)
}

func (s *ServiceSuite) TestDeactivateUnknownEntry() {
	_, err := s.svc.DeactivateBlacklistEntry(s.ctx, id.NewBlacklistEntryID(), false)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
