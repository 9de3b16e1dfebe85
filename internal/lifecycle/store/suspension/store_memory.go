package suspension

import (
	"context"
	"sort"
	"sync"
	"time"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	"caregate/pkg/platform/sentinel"
)

// InMemoryStore is a ledger guarded by one mutex. Append holds the lock across
// sequence assignment and insertion, which makes count-and-append atomic.
type InMemoryStore struct {
	mu       sync.Mutex
	records  map[id.ProviderID][]*models.SuspensionRecord
	sequence map[id.ProviderID]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:  make(map[id.ProviderID][]*models.SuspensionRecord),
		sequence: make(map[id.ProviderID]int),
	}
}

func (s *InMemoryStore) Append(_ context.Context, record *models.SuspensionRecord) (*models.SuspensionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequence[record.ProviderID]++
	stored := copyRecord(record)
	stored.Sequence = s.sequence[record.ProviderID]
	s.records[record.ProviderID] = append(s.records[record.ProviderID], stored)
	return copyRecord(stored), nil
}

func (s *InMemoryStore) Count(_ context.Context, providerID id.ProviderID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequence[providerID], nil
}

func (s *InMemoryStore) RevokeActive(_ context.Context, providerID id.ProviderID, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	revoked := 0
	for _, r := range s.records[providerID] {
		if r.Revoke(now) {
			revoked++
		}
	}
	return revoked, nil
}

func (s *InMemoryStore) List(_ context.Context, providerID id.ProviderID) ([]*models.SuspensionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.SuspensionRecord, 0, len(s.records[providerID]))
	for _, r := range s.records[providerID] {
		out = append(out, copyRecord(r))
	}
	return out, nil
}

// Retract removes record and rolls the sequence back, provided record is still
// the provider's latest. Otherwise it returns sentinel.ErrNotFound.
func (s *InMemoryStore) Retract(_ context.Context, record *models.SuspensionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.records[record.ProviderID]
	last := len(records) - 1
	if last < 0 || records[last].ID != record.ID || s.sequence[record.ProviderID] != record.Sequence {
		return sentinel.ErrNotFound
	}
	s.records[record.ProviderID] = records[:last]
	s.sequence[record.ProviderID]--
	return nil
}

func (s *InMemoryStore) Purge(_ context.Context, providerID id.ProviderID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records[providerID])
	delete(s.records, providerID)
	delete(s.sequence, providerID)
	return n, nil
}

func (s *InMemoryStore) ProvidersAtOrAbove(_ context.Context, threshold int) ([]id.ProviderID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []id.ProviderID
	for pid, seq := range s.sequence {
		if seq >= threshold {
			out = append(out, pid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func copyRecord(r *models.SuspensionRecord) *models.SuspensionRecord {
	out := *r
	out.Reasons = append([]string(nil), r.Reasons...)
	if r.RevokedAt != nil {
		t := *r.RevokedAt
		out.RevokedAt = &t
	}
	return &out
}
