// Package rejection counts candidate rejections per normalized email. Counts
// survive candidate removal so repeat applicants can be blacklisted.
package rejection

import (
	"context"
	"sync"

	"caregate/internal/lifecycle/models"
)

type InMemoryStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{counts: make(map[string]int)}
}

func (s *InMemoryStore) Increment(_ context.Context, email string) (int, error) {
	key := models.NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func (s *InMemoryStore) Decrement(_ context.Context, email string) error {
	key := models.NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[key] > 0 {
		s.counts[key]--
	}
	return nil
}

func (s *InMemoryStore) Count(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[models.NormalizeEmail(email)], nil
}
