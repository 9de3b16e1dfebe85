package suspension

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	"caregate/pkg/platform/sentinel"
)

type SuspensionStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestSuspensionStoreSuite(t *testing.T) {
	suite.Run(t, new(SuspensionStoreSuite))
}

func (s *SuspensionStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
}

func (s *SuspensionStoreSuite) record(providerID id.ProviderID) *models.SuspensionRecord {
	d, err := models.SuspensionDetails{Reasons: []string{"policy"}}.Normalize(s.now)
	s.Require().NoError(err)
	return models.NewSuspensionRecord(providerID, d, s.now)
}

func (s *SuspensionStoreSuite) TestSequencesAndCount() {
	pid := id.NewProviderID()
	other := id.NewProviderID()

	for want := 1; want <= 3; want++ {
		rec, err := s.store.Append(s.ctx, s.record(pid))
		s.Require().NoError(err)
		s.Equal(want, rec.Sequence)
	}
	rec, err := s.store.Append(s.ctx, s.record(other))
	s.Require().NoError(err)
	s.Equal(1, rec.Sequence, "sequences are per provider")

	count, err := s.store.Count(s.ctx, pid)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *SuspensionStoreSuite) TestRevokeKeepsCount() {
	pid := id.NewProviderID()
	for range 2 {
		_, err := s.store.Append(s.ctx, s.record(pid))
		s.Require().NoError(err)
	}

	revoked, err := s.store.RevokeActive(s.ctx, pid, s.now)
	s.Require().NoError(err)
	s.Equal(2, revoked)

	revoked, err = s.store.RevokeActive(s.ctx, pid, s.now)
	s.Require().NoError(err)
	s.Equal(0, revoked, "nothing left to revoke is not an error")

	count, err := s.store.Count(s.ctx, pid)
	s.Require().NoError(err)
	s.Equal(2, count)

	list, err := s.store.List(s.ctx, pid)
	s.Require().NoError(err)
	for _, r := range list {
		s.Equal(models.SuspensionRevoked, r.State)
		s.NotNil(r.RevokedAt)
	}
}

func (s *SuspensionStoreSuite) TestPurgeAndThresholdScan() {
	over := id.NewProviderID()
	under := id.NewProviderID()
	for range 6 {
		_, err := s.store.Append(s.ctx, s.record(over))
		s.Require().NoError(err)
	}
	_, err := s.store.Append(s.ctx, s.record(under))
	s.Require().NoError(err)

	ids, err := s.store.ProvidersAtOrAbove(s.ctx, 6)
	s.Require().NoError(err)
	s.Equal([]id.ProviderID{over}, ids)

	purged, err := s.store.Purge(s.ctx, over)
	s.Require().NoError(err)
	s.Equal(6, purged)

	count, err := s.store.Count(s.ctx, over)
	s.Require().NoError(err)
	s.Zero(count)

	ids, err = s.store.ProvidersAtOrAbove(s.ctx, 6)
	s.Require().NoError(err)
	s.Empty(ids)
}

// TestConcurrentAppendIsContiguous verifies N concurrent appends for one provider
// produce sequences 1..N with no duplicates or gaps.
func (s *SuspensionStoreSuite) TestConcurrentAppendIsContiguous() {
	pid := id.NewProviderID()
	const n = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	seqs := make([]int, 0, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := s.store.Append(s.ctx, s.record(pid))
			s.NoError(err)
			mu.Lock()
			seqs = append(seqs, rec.Sequence)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Ints(seqs)
	for i, seq := range seqs {
		s.Equal(i+1, seq)
	}
}

func (s *SuspensionStoreSuite) TestRetractOnlyLatest() {
	pid := id.NewProviderID()
	first, err := s.store.Append(s.ctx, s.record(pid))
	s.Require().NoError(err)
	second, err := s.store.Append(s.ctx, s.record(pid))
	s.Require().NoError(err)

	s.ErrorIs(s.store.Retract(s.ctx, first), sentinel.ErrNotFound, "only the latest record can be retracted")
	s.Require().NoError(s.store.Retract(s.ctx, second))
	s.ErrorIs(s.store.Retract(s.ctx, second), sentinel.ErrNotFound)

	count, err := s.store.Count(s.ctx, pid)
	s.Require().NoError(err)
	s.Equal(1, count)

	next, err := s.store.Append(s.ctx, s.record(pid))
	s.Require().NoError(err)
	s.Equal(2, next.Sequence, "the retracted sequence is reused")
}
