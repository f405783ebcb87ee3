package window

import (
	"context"
	"time"

	"marketgate/internal/admission/models"
	psync "marketgate/pkg/platform/sync"
	"marketgate/pkg/requestcontext"
)

// InMemoryStore keeps fixed windows in per-shard maps guarded by a
// ShardedMutex, so hot addresses on different shards do not contend.
type InMemoryStore struct {
	locks  *psync.ShardedMutex
	shards []map[string]*models.RateWindow
}

func New() *InMemoryStore {
	locks := psync.NewShardedMutex()
	shards := make([]map[string]*models.RateWindow, locks.Len())
	for i := range shards {
		shards[i] = make(map[string]*models.RateWindow)
	}
	return &InMemoryStore{locks: locks, shards: shards}
}

// Hit counts one request against key. If the current window has elapsed (or
// none exists) a new one starts at now with a count of 1.
func (s *InMemoryStore) Hit(ctx context.Context, key string, window time.Duration) (*models.RateWindow, error) {
	now := requestcontext.Now(ctx)
	shard := s.locks.ShardFor(key)

	s.locks.LockShard(shard)
	defer s.locks.UnlockShard(shard)

	w, ok := s.shards[shard][key]
	if !ok || w.Elapsed(now) {
		w = &models.RateWindow{Key: key, WindowStart: now, Window: window}
		s.shards[shard][key] = w
	}
	w.Count++

	out := *w
	return &out, nil
}

// Get returns the live window for key, or nil.
func (s *InMemoryStore) Get(ctx context.Context, key string) (*models.RateWindow, error) {
	now := requestcontext.Now(ctx)
	shard := s.locks.ShardFor(key)

	s.locks.LockShard(shard)
	defer s.locks.UnlockShard(shard)

	w, ok := s.shards[shard][key]
	if !ok || w.Elapsed(now) {
		return nil, nil
	}
	out := *w
	return &out, nil
}

func (s *InMemoryStore) Reset(_ context.Context, key string) error {
	shard := s.locks.ShardFor(key)

	s.locks.LockShard(shard)
	defer s.locks.UnlockShard(shard)

	delete(s.shards[shard], key)
	return nil
}

// Sweep evicts every window that has elapsed at now.
func (s *InMemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	evicted := 0
	for i := range s.shards {
		s.locks.LockShard(i)
		for key, w := range s.shards[i] {
			if w.Elapsed(now) {
				delete(s.shards[i], key)
				evicted++
			}
		}
		s.locks.UnlockShard(i)
	}
	return evicted, nil
}

func (s *InMemoryStore) Len() int {
	n := 0
	for i := range s.shards {
		s.locks.LockShard(i)
		n += len(s.shards[i])
		s.locks.UnlockShard(i)
	}
	return n
}
