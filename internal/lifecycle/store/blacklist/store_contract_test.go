package blacklist_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"caregate/internal/lifecycle/models"
	"caregate/internal/lifecycle/ports"
	id "caregate/pkg/domain"
	"caregate/pkg/platform/sentinel"
)

// storeContractSuite holds the behaviour every BlacklistStore backend shares.
// Backend suites embed it and set newStore.
type storeContractSuite struct {
	suite.Suite
	newStore func() ports.BlacklistStore
	store    ports.BlacklistStore
	ctx      context.Context
	now      time.Time
}

func (s *storeContractSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
	s.now = time.Now().UTC().Truncate(time.Millisecond)
}

func (s *storeContractSuite) entry(email, phone string, licenses ...string) *models.BlacklistEntry {
	e, err := models.NewBlacklistEntry(
		models.NewCredentialSet(email, phone, licenses),
		models.ReasonProviderTerminated,
		models.Origin{EntityType: models.EntityProvider, EntityID: id.NewProviderID().String(), DisplayName: "Dr X"},
		nil, "system", s.now,
	)
	s.Require().NoError(err)
	return e
}

func (s *storeContractSuite) TestAddAndGet() {
	e := s.entry("a@x.com", "100", "L1")
	s.Require().NoError(s.store.Add(s.ctx, e))

	got, err := s.store.Get(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(e.Fingerprint, got.Fingerprint)
	s.Equal(e.Reason, got.Reason)
	s.Equal(e.Origin, got.Origin)
	s.True(got.Active)

	_, err = s.store.Get(s.ctx, id.NewBlacklistEntryID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestDuplicatesTolerated() {
	s.Require().NoError(s.store.Add(s.ctx, s.entry("a@x.com", "")))
	s.Require().NoError(s.store.Add(s.ctx, s.entry("a@x.com", "")))

	found, err := s.store.FindCandidates(s.ctx, models.NewCredentialSet("a@x.com", "", nil))
	s.Require().NoError(err)
	s.Len(found, 2)
}

func (s *storeContractSuite) TestFindCandidatesByAnyField() {
	byEmail := s.entry("a@x.com", "")
	byPhone := s.entry("", "200")
	byLicense := s.entry("", "", "L7", "L8")
	s.Require().NoError(s.store.Add(s.ctx, byEmail))
	s.Require().NoError(s.store.Add(s.ctx, byPhone))
	s.Require().NoError(s.store.Add(s.ctx, byLicense))

	s.Run("license intersection with unrelated email", func() {
		found, err := s.store.FindCandidates(s.ctx, models.NewCredentialSet("z@x.com", "", []string{"L0", "L8"}))
		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.Equal(byLicense.ID, found[0].ID)
	})

	s.Run("phone", func() {
		found, err := s.store.FindCandidates(s.ctx, models.NewCredentialSet("", "200", nil))
		s.Require().NoError(err)
		s.Require().Len(found, 1)
		s.Equal(byPhone.ID, found[0].ID)
	})

	s.Run("empty credentials match nothing", func() {
		found, err := s.store.FindCandidates(s.ctx, models.CredentialSet{})
		s.Require().NoError(err)
		s.Empty(found)
	})

	s.Run("empty entry fields never match empty input fields", func() {
		found, err := s.store.FindCandidates(s.ctx, models.NewCredentialSet("nobody@x.com", "", nil))
		s.Require().NoError(err)
		s.Empty(found)
	})
}

func (s *storeContractSuite) TestDeactivateAndDelete() {
	e := s.entry("a@x.com", "")
	s.Require().NoError(s.store.Add(s.ctx, e))

	changed, err := s.store.Deactivate(s.ctx, e.ID)
	s.Require().NoError(err)
	s.True(changed)

	changed, err = s.store.Deactivate(s.ctx, e.ID)
	s.Require().NoError(err)
	s.False(changed, "second deactivation is a no-op")

	found, err := s.store.FindCandidates(s.ctx, e.Fingerprint)
	s.Require().NoError(err)
	s.Empty(found)

	active, err := s.store.List(s.ctx, false)
	s.Require().NoError(err)
	s.Empty(active)
	all, err := s.store.List(s.ctx, true)
	s.Require().NoError(err)
	s.Len(all, 1)

	s.Require().NoError(s.store.Delete(s.ctx, e.ID))
	s.ErrorIs(s.store.Delete(s.ctx, e.ID), sentinel.ErrNotFound)
	_, err = s.store.Deactivate(s.ctx, e.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestDeactivateExpired() {
	soon := s.now.Add(time.Minute)
	later := s.now.Add(time.Hour)
	expiring, err := models.NewBlacklistEntry(models.NewCredentialSet("a@x.com", "", nil), models.ReasonManual,
		models.Origin{EntityType: models.EntityAdmin}, &soon, "admin", s.now)
	s.Require().NoError(err)
	lasting, err := models.NewBlacklistEntry(models.NewCredentialSet("b@x.com", "", nil), models.ReasonManual,
		models.Origin{EntityType: models.EntityAdmin}, &later, "admin", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Add(s.ctx, expiring))
	s.Require().NoError(s.store.Add(s.ctx, lasting))
	s.Require().NoError(s.store.Add(s.ctx, s.entry("c@x.com", "")))

	n, err := s.store.DeactivateExpired(s.ctx, soon)
	s.Require().NoError(err)
	s.Equal(1, n)

	got, err := s.store.Get(s.ctx, expiring.ID)
	s.Require().NoError(err)
	s.False(got.Active)

	got, err = s.store.Get(s.ctx, lasting.ID)
	s.Require().NoError(err)
	s.True(got.Active)
}
