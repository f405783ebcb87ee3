package attempts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"marketgate/pkg/requestcontext"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
	s.now = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) at(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(offset))
}

func (s *InMemoryStoreSuite) TestGet() {
	s.Run("missing address returns nil without error", func() {
		record, err := s.store.Get(s.at(0), "198.51.100.1")
		s.NoError(err)
		s.Nil(record)
	})

	s.Run("returns a copy", func() {
		_, _, err := s.store.RecordFailure(s.at(0), "198.51.100.2", 5, 15*time.Minute)
		s.Require().NoError(err)

		record, err := s.store.Get(s.at(0), "198.51.100.2")
		s.Require().NoError(err)
		record.Count = 99

		again, _ := s.store.Get(s.at(0), "198.51.100.2")
		s.Equal(1, again.Count)
	})
}

func (s *InMemoryStoreSuite) TestRecordFailure() {
	const addr = "203.0.113.7"

	s.Run("locks exactly at threshold", func() {
		for i := 1; i <= 4; i++ {
			record, locked, err := s.store.RecordFailure(s.at(0), addr, 5, 15*time.Minute)
			s.Require().NoError(err)
			s.Equal(i, record.Count)
			s.False(locked)
			s.True(record.LockUntil.IsZero())
		}

		record, locked, err := s.store.RecordFailure(s.at(0), addr, 5, 15*time.Minute)
		s.Require().NoError(err)
		s.True(locked)
		s.Equal(5, record.Count)
		s.Equal(s.now.Add(15*time.Minute), record.LockUntil)
	})

	s.Run("failures while locked keep the original lock", func() {
		record, locked, err := s.store.RecordFailure(s.at(time.Minute), addr, 5, 15*time.Minute)
		s.Require().NoError(err)
		s.False(locked)
		s.Equal(6, record.Count)
		s.Equal(s.now.Add(15*time.Minute), record.LockUntil)
	})

	s.Run("expired lock restarts the count", func() {
		record, err := s.store.Get(s.at(15*time.Minute), addr)
		s.NoError(err)
		s.Nil(record)

		again, locked, err := s.store.RecordFailure(s.at(16*time.Minute), addr, 5, 15*time.Minute)
		s.Require().NoError(err)
		s.False(locked)
		s.Equal(1, again.Count)
	})
}

func (s *InMemoryStoreSuite) TestClear() {
	_, _, _ = s.store.RecordFailure(s.at(0), "198.51.100.3", 5, time.Minute)
	s.Require().NoError(s.store.Clear(s.at(0), "198.51.100.3"))

	record, _ := s.store.Get(s.at(0), "198.51.100.3")
	s.Nil(record)
}

func (s *InMemoryStoreSuite) TestSweep() {
	_, _, _ = s.store.RecordFailure(s.at(0), "idle", 5, 15*time.Minute)
	_, _, _ = s.store.RecordFailure(s.at(50*time.Minute), "recent", 5, 15*time.Minute)
	for i := 0; i < 5; i++ {
		_, _, _ = s.store.RecordFailure(s.at(55*time.Minute), "locked", 5, 15*time.Minute)
	}

	evicted, err := s.store.Sweep(context.Background(), s.now.Add(time.Hour))
	s.Require().NoError(err)

	s.Equal(1, evicted)
	s.Equal(2, s.store.Len())

	record, _ := s.store.Get(s.at(time.Hour), "locked")
	s.Require().NotNil(record)
	s.Equal(5, record.Count)
}

func (s *InMemoryStoreSuite) TestConcurrentFailuresDoNotOvercount() {
	const goroutines = 100
	var wg sync.WaitGroup
	var lockedCount int
	var mu sync.Mutex

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, locked, err := s.store.RecordFailure(s.at(0), "203.0.113.200", 5, time.Minute)
			s.NoError(err)
			if locked {
				mu.Lock()
				lockedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	record, _ := s.store.Get(s.at(0), "203.0.113.200")
	s.Equal(goroutines, record.Count)
	s.Equal(1, lockedCount)
}
