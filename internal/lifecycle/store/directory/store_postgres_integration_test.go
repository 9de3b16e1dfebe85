//go:build integration

package directory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"caregate/internal/lifecycle/models"
	"caregate/internal/lifecycle/store/directory"
	id "caregate/pkg/domain"
	"caregate/pkg/platform/sentinel"
	"caregate/pkg/testutil/containers"
)

type PostgresDirectorySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *directory.PostgresStore
}

func TestPostgresDirectorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresDirectorySuite))
}

func (s *PostgresDirectorySuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = directory.NewPostgres(s.postgres.DB)
}

func (s *PostgresDirectorySuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "providers", "candidates"))
}

func newProvider(email, phone string, licenses ...string) *models.Provider {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Provider{
		ID:           id.NewProviderID(),
		Name:         "Dr " + email,
		Credentials:  models.NewCredentialSet(email, phone, licenses),
		PasswordHash: "hash",
		State:        models.ProviderActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *PostgresDirectorySuite) TestRoundTripAndLookups() {
	ctx := context.Background()
	p := newProvider("a@x.com", "100", "L1", "L2")
	s.Require().NoError(s.store.InsertProvider(ctx, p))

	found, err := s.store.FindProviderByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Credentials, found.Credentials)
	s.Equal(models.ProviderActive, found.State)

	found, err = s.store.FindProviderByLicense(ctx, "L2")
	s.Require().NoError(err)
	s.Equal(p.ID, found.ID)

	_, err = s.store.FindProviderByLicense(ctx, "l2")
	s.ErrorIs(err, sentinel.ErrNotFound, "license match is exact")

	s.Require().NoError(s.store.UpdateProviderState(ctx, p.ID, models.ProviderSuspended, time.Now()))
	found, err = s.store.FindProviderByEmail(ctx, "A@X.com")
	s.Require().NoError(err)
	s.Equal(models.ProviderSuspended, found.State)

	s.Require().NoError(s.store.RemoveProvider(ctx, p.ID))
	s.ErrorIs(s.store.RemoveProvider(ctx, p.ID), sentinel.ErrNotFound)
}

// TestConcurrentApprovalsSameEmail verifies the unique index lets exactly one
// racing insert win and reports ErrAlreadyUsed to the rest.
func (s *PostgresDirectorySuite) TestConcurrentApprovalsSameEmail() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var success, conflict atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.InsertProvider(ctx, newProvider("race@x.com", ""))
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				conflict.Add(1)
			default:
				s.T().Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), success.Load())
	s.Equal(int32(goroutines-1), conflict.Load())
}

func (s *PostgresDirectorySuite) TestCandidates() {
	ctx := context.Background()
	c := models.NewCandidate("Dr C", models.NewCredentialSet("c@x.com", "300", []string{"L9"}), "hash", "cardiology", time.Now().UTC())
	s.Require().NoError(s.store.InsertCandidate(ctx, c))

	found, err := s.store.FindCandidateByPhone(ctx, "300")
	s.Require().NoError(err)
	s.Equal(c.ID, found.ID)
	s.Equal("cardiology", found.Specialization)

	dup := models.NewCandidate("Dr D", models.NewCredentialSet("c@x.com", "", nil), "hash", "", time.Now().UTC())
	s.ErrorIs(s.store.InsertCandidate(ctx, dup), sentinel.ErrAlreadyUsed)

	s.Require().NoError(s.store.RemoveCandidate(ctx, c.ID))
	_, err = s.store.FindCandidateByID(ctx, c.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
