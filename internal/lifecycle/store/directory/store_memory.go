package directory

import (
	"context"
	"sync"
	"time"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	"caregate/pkg/platform/sentinel"
)

// InMemoryStore keeps providers and candidates in maps guarded by one lock.
// Uniqueness mirrors the Postgres indexes: provider email and non-empty phone,
// candidate email.
type InMemoryStore struct {
	mu         sync.RWMutex
	providers  map[id.ProviderID]*models.Provider
	candidates map[id.CandidateID]*models.Candidate
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		providers:  make(map[id.ProviderID]*models.Provider),
		candidates: make(map[id.CandidateID]*models.Candidate),
	}
}

func (s *InMemoryStore) FindProviderByID(_ context.Context, providerID id.ProviderID) (*models.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.providers[providerID]; ok {
		return copyProvider(p), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindProviderByEmail(_ context.Context, email string) (*models.Provider, error) {
	email = models.NormalizeEmail(email)
	return s.findProvider(func(p *models.Provider) bool {
		return email != "" && p.Credentials.Email == email
	})
}

func (s *InMemoryStore) FindProviderByPhone(_ context.Context, phone string) (*models.Provider, error) {
	return s.findProvider(func(p *models.Provider) bool {
		return phone != "" && p.Credentials.Phone == phone
	})
}

func (s *InMemoryStore) FindProviderByLicense(_ context.Context, license string) (*models.Provider, error) {
	return s.findProvider(func(p *models.Provider) bool {
		return p.Credentials.HasLicense(license)
	})
}

func (s *InMemoryStore) FindCandidateByID(_ context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.candidates[candidateID]; ok {
		return copyCandidate(c), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindCandidateByEmail(_ context.Context, email string) (*models.Candidate, error) {
	email = models.NormalizeEmail(email)
	return s.findCandidate(func(c *models.Candidate) bool {
		return email != "" && c.Credentials.Email == email
	})
}

func (s *InMemoryStore) FindCandidateByPhone(_ context.Context, phone string) (*models.Candidate, error) {
	return s.findCandidate(func(c *models.Candidate) bool {
		return phone != "" && c.Credentials.Phone == phone
	})
}

func (s *InMemoryStore) FindCandidateByLicense(_ context.Context, license string) (*models.Candidate, error) {
	return s.findCandidate(func(c *models.Candidate) bool {
		return c.Credentials.HasLicense(license)
	})
}

func (s *InMemoryStore) InsertProvider(_ context.Context, provider *models.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[provider.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	for _, existing := range s.providers {
		if existing.Credentials.Email == provider.Credentials.Email {
			return sentinel.ErrAlreadyUsed
		}
		if provider.Credentials.Phone != "" && existing.Credentials.Phone == provider.Credentials.Phone {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.providers[provider.ID] = copyProvider(provider)
	return nil
}

func (s *InMemoryStore) InsertCandidate(_ context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[candidate.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if candidate.Credentials.Email != "" {
		for _, existing := range s.candidates {
			if existing.Credentials.Email == candidate.Credentials.Email {
				return sentinel.ErrAlreadyUsed
			}
		}
	}
	s.candidates[candidate.ID] = copyCandidate(candidate)
	return nil
}

func (s *InMemoryStore) RemoveProvider(_ context.Context, providerID id.ProviderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[providerID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.providers, providerID)
	return nil
}

func (s *InMemoryStore) RemoveCandidate(_ context.Context, candidateID id.CandidateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[candidateID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.candidates, candidateID)
	return nil
}

func (s *InMemoryStore) UpdateProviderState(_ context.Context, providerID id.ProviderID, state models.ProviderState, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[providerID]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.State = state
	p.UpdatedAt = now
	return nil
}

// findProvider returns the oldest matching provider so lookups are deterministic.
func (s *InMemoryStore) findProvider(match func(*models.Provider) bool) (*models.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.Provider
	for _, p := range s.providers {
		if match(p) && (found == nil || p.CreatedAt.Before(found.CreatedAt)) {
			found = p
		}
	}
	if found == nil {
		return nil, sentinel.ErrNotFound
	}
	return copyProvider(found), nil
}

func (s *InMemoryStore) findCandidate(match func(*models.Candidate) bool) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.Candidate
	for _, c := range s.candidates {
		if match(c) && (found == nil || c.SubmittedAt.Before(found.SubmittedAt)) {
			found = c
		}
	}
	if found == nil {
		return nil, sentinel.ErrNotFound
	}
	return copyCandidate(found), nil
}

func copyProvider(p *models.Provider) *models.Provider {
	out := *p
	out.Credentials.Licenses = append([]string(nil), p.Credentials.Licenses...)
	return &out
}

func copyCandidate(c *models.Candidate) *models.Candidate {
	out := *c
	out.Credentials.Licenses = append([]string(nil), c.Credentials.Licenses...)
	return &out
}
