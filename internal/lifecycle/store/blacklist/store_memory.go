package blacklist

import (
	"context"
	"sort"
	"sync"
	"time"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	"caregate/pkg/platform/sentinel"
)

// InMemoryStore keeps blacklist entries in insertion order.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.BlacklistEntryID]*models.BlacklistEntry
	order   []id.BlacklistEntryID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.BlacklistEntryID]*models.BlacklistEntry)}
}

func (s *InMemoryStore) Add(_ context.Context, entry *models.BlacklistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.entries[entry.ID] = copyEntry(entry)
	s.order = append(s.order, entry.ID)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, entryID id.BlacklistEntryID) (*models.BlacklistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[entryID]; ok {
		return copyEntry(e), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context, includeInactive bool) ([]*models.BlacklistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.BlacklistEntry, 0, len(s.order))
	for _, entryID := range s.order {
		e := s.entries[entryID]
		if e.Active || includeInactive {
			out = append(out, copyEntry(e))
		}
	}
	return out, nil
}

func (s *InMemoryStore) FindCandidates(_ context.Context, creds models.CredentialSet) ([]*models.BlacklistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.BlacklistEntry
	for _, entryID := range s.order {
		e := s.entries[entryID]
		if !e.Active {
			continue
		}
		if _, ok := creds.Collide(e.Fingerprint); ok {
			out = append(out, copyEntry(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) Deactivate(_ context.Context, entryID id.BlacklistEntryID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entryID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if !e.Active {
		return false, nil
	}
	e.Active = false
	return true, nil
}

func (s *InMemoryStore) Delete(_ context.Context, entryID id.BlacklistEntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entryID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entries, entryID)
	for i, existing := range s.order {
		if existing == entryID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemoryStore) DeactivateExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.IsExpired(now) {
			e.Active = false
			n++
		}
	}
	return n, nil
}

func copyEntry(e *models.BlacklistEntry) *models.BlacklistEntry {
	out := *e
	out.Fingerprint.Licenses = append([]string(nil), e.Fingerprint.Licenses...)
	if e.ExpiresAt != nil {
		t := *e.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}
