package attempts

import (
	"context"
	"sync"
	"time"

	"marketgate/internal/admission/models"
	"marketgate/pkg/requestcontext"
)

// DefaultIdleTTL is how long an unlocked record may sit untouched before
// Sweep evicts it.
const DefaultIdleTTL = time.Hour

type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]*models.AttemptRecord // keyed by address
	idleTTL time.Duration
}

type MemoryOption func(*InMemoryStore)

func WithIdleTTL(ttl time.Duration) MemoryOption {
	return func(s *InMemoryStore) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

func New(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		records: make(map[string]*models.AttemptRecord),
		idleTTL: DefaultIdleTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the record, or nil if none exists. A record whose
// lock has run out is discarded here so callers start from zero.
func (s *InMemoryStore) Get(ctx context.Context, address string) (*models.AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[address]
	if !ok {
		return nil, nil
	}
	if record.LockExpired(requestcontext.Now(ctx)) {
		delete(s.records, address)
		return nil, nil
	}
	out := *record
	return &out, nil
}

// RecordFailure increments the failure count and, when the count reaches
// threshold on an unlocked record, sets LockUntil = now + lockFor. lockedNow
// reports that this call applied the lock.
func (s *InMemoryStore) RecordFailure(ctx context.Context, address string, threshold int, lockFor time.Duration) (*models.AttemptRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := requestcontext.Now(ctx)
	record, ok := s.records[address]
	if !ok || record.LockExpired(now) {
		record = &models.AttemptRecord{Address: address}
		s.records[address] = record
	}

	record.Count++
	record.LastSeen = now

	lockedNow := false
	if !record.IsLocked(now) && record.Count >= threshold {
		record.LockUntil = now.Add(lockFor)
		lockedNow = true
	}

	out := *record
	return &out, lockedNow, nil
}

func (s *InMemoryStore) Clear(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, address)
	return nil
}

// Sweep evicts records that are not locked and have been idle for at least
// the idle TTL.
func (s *InMemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for address, record := range s.records {
		if record.IsLocked(now) {
			continue
		}
		if now.Sub(record.LastSeen) >= s.idleTTL || record.LockExpired(now) {
			delete(s.records, address)
			evicted++
		}
	}
	return evicted, nil
}

// Len returns the number of tracked addresses.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
