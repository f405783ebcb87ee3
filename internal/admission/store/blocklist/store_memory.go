package blocklist

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"marketgate/internal/admission/models"
	"marketgate/pkg/requestcontext"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*models.BlockedAddress // keyed by canonical address
}

func New() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]*models.BlockedAddress)}
}

// Add inserts or replaces the entry for entry.Address.
func (s *InMemoryStore) Add(_ context.Context, entry *models.BlockedAddress) error {
	if entry == nil {
		return fmt.Errorf("blocked address is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *entry
	s.entries[entry.Address] = &stored
	return nil
}

// Remove reports whether an entry existed.
func (s *InMemoryStore) Remove(_ context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[address]
	delete(s.entries, address)
	return ok, nil
}

// IsBlocked ignores entries that have expired.
func (s *InMemoryStore) IsBlocked(ctx context.Context, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[address]
	if !ok {
		return false, nil
	}
	return !entry.IsExpired(requestcontext.Now(ctx)), nil
}

// List returns active entries, oldest first.
func (s *InMemoryStore) List(ctx context.Context) ([]*models.BlockedAddress, error) {
	now := requestcontext.Now(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*models.BlockedAddress, 0, len(s.entries))
	for _, e := range s.entries {
		if e.IsExpired(now) {
			continue
		}
		out := *e
		entries = append(entries, &out)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
