package sync

import (
	"hash/fnv"
	"sync"
)

// DefaultShards is the shard count used by NewShardedMutex.
const DefaultShards = 32

// ShardedMutex spreads per-key locking across a fixed set of mutexes so
// unrelated keys rarely contend. Callers that keep per-shard state can use
// ShardFor to index it.
type ShardedMutex struct {
	shards []sync.Mutex
}

func NewShardedMutex() *ShardedMutex {
	return NewShardedMutexN(DefaultShards)
}

// NewShardedMutexN creates a ShardedMutex with n shards (minimum 1).
func NewShardedMutexN(n int) *ShardedMutex {
	if n < 1 {
		n = 1
	}
	return &ShardedMutex{shards: make([]sync.Mutex, n)}
}

func (m *ShardedMutex) Lock(key string) {
	m.shards[m.ShardFor(key)].Lock()
}

func (m *ShardedMutex) Unlock(key string) {
	m.shards[m.ShardFor(key)].Unlock()
}

// LockShard and UnlockShard address a shard directly, for full scans.
func (m *ShardedMutex) LockShard(i int)   { m.shards[i].Lock() }
func (m *ShardedMutex) UnlockShard(i int) { m.shards[i].Unlock() }

// Len returns the number of shards.
func (m *ShardedMutex) Len() int {
	return len(m.shards)
}

// ShardFor returns the shard index for key. Empty keys map to shard 0.
func (m *ShardedMutex) ShardFor(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(m.shards)))
}
