//go:build integration

package attempts_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"marketgate/internal/admission/models"
	"marketgate/internal/admission/store/attempts"
	"marketgate/pkg/requestcontext"
	"marketgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *attempts.RedisStore
	now   time.Time
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = attempts.NewRedis(s.redis.Client, time.Hour)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(context.Background()))
	s.now = time.Now().Truncate(time.Millisecond)
}

func (s *RedisStoreSuite) at(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(offset))
}

func (s *RedisStoreSuite) TestLockAtThreshold() {
	const addr = "2001:db8::7"
	for i := 1; i < 5; i++ {
		_, locked, err := s.store.RecordFailure(s.at(0), addr, 5, 15*time.Minute)
		s.Require().NoError(err)
		s.False(locked)
	}

	record, locked, err := s.store.RecordFailure(s.at(0), addr, 5, 15*time.Minute)
	s.Require().NoError(err)
	s.True(locked)
	s.Equal(5, record.Count)
	s.Equal(s.now.Add(15*time.Minute).UnixMilli(), record.LockUntil.UnixMilli())

	stored, err := s.store.Get(s.at(time.Minute), addr)
	s.Require().NoError(err)
	s.True(stored.IsLocked(s.now.Add(time.Minute)))

	ttl, err := s.redis.Client.PTTL(context.Background(), models.AttemptKey(addr)).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 14*time.Minute)
}

func (s *RedisStoreSuite) TestExpiredLockResetsOnAccess() {
	const addr = "198.51.100.20"
	for i := 0; i < 5; i++ {
		_, _, err := s.store.RecordFailure(s.at(0), addr, 5, 15*time.Minute)
		s.Require().NoError(err)
	}

	record, err := s.store.Get(s.at(16*time.Minute), addr)
	s.Require().NoError(err)
	s.Nil(record)
}

func (s *RedisStoreSuite) TestClear() {
	_, _, err := s.store.RecordFailure(s.at(0), "198.51.100.21", 5, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Clear(s.at(0), "198.51.100.21"))

	record, err := s.store.Get(s.at(0), "198.51.100.21")
	s.NoError(err)
	s.Nil(record)
}
