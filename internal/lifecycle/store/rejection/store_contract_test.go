package rejection_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/suite"

	"caregate/internal/lifecycle/ports"
)

type counterContractSuite struct {
	suite.Suite
	newStore func() ports.RejectionCounter
	store    ports.RejectionCounter
	ctx      context.Context
}

func (s *counterContractSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
}

func (s *counterContractSuite) TestIncrementReturnsPostIncrementTotal() {
	n, err := s.store.Count(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Zero(n)

	for want := 1; want <= 3; want++ {
		n, err := s.store.Increment(s.ctx, "a@x.com")
		s.Require().NoError(err)
		s.Equal(want, n)
	}

	n, err = s.store.Count(s.ctx, "b@x.com")
	s.Require().NoError(err)
	s.Zero(n, "counters are per email")
}

func (s *counterContractSuite) TestEmailIsNormalized() {
	_, err := s.store.Increment(s.ctx, "  Dr.Who@Example.COM ")
	s.Require().NoError(err)

	n, err := s.store.Count(s.ctx, "dr.who@example.com")
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *counterContractSuite) TestDecrementReversesIncrementAndStopsAtZero() {
	s.Require().NoError(s.store.Decrement(s.ctx, "a@x.com"), "decrementing an unknown email is a no-op")
	n, err := s.store.Count(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Zero(n)

	_, err = s.store.Increment(s.ctx, "a@x.com")
	s.Require().NoError(err)
	_, err = s.store.Increment(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Decrement(s.ctx, "A@X.com"))

	n, err = s.store.Count(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(1, n)

	s.Require().NoError(s.store.Decrement(s.ctx, "a@x.com"))
	s.Require().NoError(s.store.Decrement(s.ctx, "a@x.com"))
	n, err = s.store.Count(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Zero(n)

	n, err = s.store.Increment(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *counterContractSuite) TestConcurrentIncrementsAreNotLost() {
	const workers = 20
	var wg sync.WaitGroup
	seen := make(chan int, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.store.Increment(s.ctx, "race@x.com")
			s.NoError(err)
			seen <- n
		}()
	}
	wg.Wait()
	close(seen)

	totals := make(map[int]bool)
	for n := range seen {
		totals[n] = true
	}
	s.Len(totals, workers, "every increment observes a distinct total")

	n, err := s.store.Count(s.ctx, "race@x.com")
	s.Require().NoError(err)
	s.Equal(workers, n)
}
