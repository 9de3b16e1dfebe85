package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"caregate/internal/lifecycle/metrics"
	"caregate/internal/lifecycle/models"
	"caregate/internal/lifecycle/ports/mocks"
	"caregate/internal/lifecycle/store/suspension"
	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/sentinel"
	"caregate/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	metrics *metrics.Metrics
	svc     *Service
	ctx     context.Context
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	svc, err := New(suspension.NewInMemoryStore(), WithMetrics(s.metrics))
	s.Require().NoError(err)
	s.svc = svc
	s.now = time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithActorID(requestcontext.WithTime(context.Background(), s.now), "admin-7")
}

func (s *ServiceSuite) details() models.SuspensionDetails {
	return models.SuspensionDetails{Reasons: []string{"late documentation"}}
}

func (s *ServiceSuite) TestRecordSuspensionAssignsSequence() {
	pid := id.NewProviderID()
	for want := 1; want <= 3; want++ {
		rec, err := s.svc.RecordSuspension(s.ctx, pid, s.details())
		s.Require().NoError(err)
		s.Equal(want, rec.Sequence)
		s.Equal("admin-7", rec.IssuedBy, "issuer defaults to the acting admin")
		s.Equal(models.SuspensionIndefinite, rec.Kind)
		s.Equal(s.now, rec.Period.Start)
	}
	count, err := s.svc.CountFor(s.ctx, pid)
	s.Require().NoError(err)
	s.Equal(3, count)
	s.Equal(3.0, promtest.ToFloat64(s.metrics.SuspensionsRecorded))
}

func (s *ServiceSuite) TestRecordSuspensionValidates() {
	_, err := s.svc.RecordSuspension(s.ctx, id.NewProviderID(), models.SuspensionDetails{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestTemporarySuspensionPeriod() {
	week := 7 * 24 * time.Hour
	rec, err := s.svc.RecordSuspension(s.ctx, id.NewProviderID(), models.SuspensionDetails{
		Reasons:  []string{"complaint"},
		Severity: models.SeverityMinor,
		Duration: &week,
	})
	s.Require().NoError(err)
	s.Equal(models.SuspensionTemporary, rec.Kind)
	s.Require().NotNil(rec.Period.End)
	s.Equal(s.now.Add(week), *rec.Period.End)
}

func (s *ServiceSuite) TestRevocationNeverResetsCount() {
	pid := id.NewProviderID()
	for range 2 {
		_, err := s.svc.RecordSuspension(s.ctx, pid, s.details())
		s.Require().NoError(err)
	}

	n, err := s.svc.RevokeActive(s.ctx, pid)
	s.Require().NoError(err)
	s.Equal(2, n)

	n, err = s.svc.RevokeActive(s.ctx, pid)
	s.Require().NoError(err)
	s.Zero(n, "nothing left to revoke is not an error")

	rec, err := s.svc.RecordSuspension(s.ctx, pid, s.details())
	s.Require().NoError(err)
	s.Equal(3, rec.Sequence)

	records, err := s.svc.List(s.ctx, pid)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.False(records[0].IsActive())
	s.False(records[1].IsActive())
	s.True(records[2].IsActive())
}

func (s *ServiceSuite) TestConcurrentSuspensionsFormContiguousRun() {
	const callers = 25
	pid := id.NewProviderID()

	var wg sync.WaitGroup
	var mu sync.Mutex
	seqs := make([]int, 0, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := s.svc.RecordSuspension(s.ctx, pid, s.details())
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

func (s *ServiceSuite) TestPurgeAndScan() {
	pid := id.NewProviderID()
	other := id.NewProviderID()
	for range 3 {
		_, err := s.svc.RecordSuspension(s.ctx, pid, s.details())
		s.Require().NoError(err)
	}
	_, err := s.svc.RecordSuspension(s.ctx, other, s.details())
	s.Require().NoError(err)

	ids, err := s.svc.ProvidersAtOrAbove(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal([]id.ProviderID{pid}, ids)

	n, err := s.svc.Purge(s.ctx, pid)
	s.Require().NoError(err)
	s.Equal(3, n)

	count, err := s.svc.CountFor(s.ctx, pid)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ServiceSuite) TestStoreFailures() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockSuspensionStore(ctrl)
	svc, err := New(store)
	s.Require().NoError(err)
	pid := id.NewProviderID()

	s.Run("lost race is retried", func() {
		stored := &models.SuspensionRecord{ProviderID: pid, Sequence: 4}
		gomock.InOrder(
			store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrConflict),
			store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(stored, nil),
		)
		rec, err := svc.RecordSuspension(s.ctx, pid, s.details())
		s.Require().NoError(err)
		s.Equal(4, rec.Sequence)
	})

	s.Run("persistent race gives up", func() {
		store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrConflict).Times(maxAppendAttempts)
		_, err := svc.RecordSuspension(s.ctx, pid, s.details())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("write failure is retryable internal", func() {
		store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))
		_, err := svc.RecordSuspension(s.ctx, pid, s.details())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.True(dErrors.CodeOf(err).Retryable())
	})
	s.Run("retract of a superseded record fails", func() {
		stale := &models.SuspensionRecord{ProviderID: pid, Sequence: 2}
		store.EXPECT().Retract(gomock.Any(), stale).Return(sentinel.ErrNotFound)
		err := svc.Retract(s.ctx, stale)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestRetractRollsCountBack() {
	pid := id.NewProviderID()
	_, err := s.svc.RecordSuspension(s.ctx, pid, s.details())
	s.Require().NoError(err)
	rec, err := s.svc.RecordSuspension(s.ctx, pid, s.details())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Retract(s.ctx, rec))
	count, err := s.svc.CountFor(s.ctx, pid)
	s.Require().NoError(err)
	s.Equal(1, count)
}
