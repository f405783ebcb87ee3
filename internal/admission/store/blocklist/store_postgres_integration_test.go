//go:build integration

package blocklist_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"marketgate/internal/admission/models"
	"marketgate/internal/admission/store/blocklist"
	"marketgate/pkg/requestcontext"
	"marketgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *blocklist.PostgresStore
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = blocklist.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "blocked_addresses"))
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) ctx(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(offset))
}

func (s *PostgresStoreSuite) TestAddIsUpsert() {
	entry, err := models.NewBlockedAddress("198.51.100.50", "spam", "oncall", s.now, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Add(s.ctx(0), entry))

	entry.Reason = "fraud"
	s.Require().NoError(s.store.Add(s.ctx(0), entry))

	list, err := s.store.List(s.ctx(0))
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("fraud", list[0].Reason)
}

func (s *PostgresStoreSuite) TestExpiryAndPurge() {
	until := s.now.Add(time.Hour)
	entry, err := models.NewBlockedAddress("2001:db8::50", "abuse", "oncall", s.now, &until)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Add(s.ctx(0), entry))

	blocked, err := s.store.IsBlocked(s.ctx(30*time.Minute), "2001:db8::50")
	s.Require().NoError(err)
	s.True(blocked)

	blocked, err = s.store.IsBlocked(s.ctx(2*time.Hour), "2001:db8::50")
	s.Require().NoError(err)
	s.False(blocked)

	purged, err := s.store.PurgeExpired(s.ctx(2 * time.Hour))
	s.Require().NoError(err)
	s.Equal(1, purged)
}

func (s *PostgresStoreSuite) TestRemove() {
	entry, err := models.NewBlockedAddress("198.51.100.51", "spam", "oncall", s.now, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Add(s.ctx(0), entry))

	removed, err := s.store.Remove(s.ctx(0), "198.51.100.51")
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.store.Remove(s.ctx(0), "198.51.100.51")
	s.Require().NoError(err)
	s.False(removed)
}
