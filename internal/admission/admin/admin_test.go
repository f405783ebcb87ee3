package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"marketgate/internal/admission/admin/mocks"
	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
	dErrors "marketgate/pkg/domain-errors"
	"marketgate/pkg/requestcontext"
)

// Covers constructor guards, input validation, error mapping, and the audit
// trail emitted for every operator action.

type AdminServiceSuite struct {
	suite.Suite
	ctrl               *gomock.Controller
	mockBlocklist      *mocks.MockBlocklistStore
	mockLockouts       *mocks.MockLockoutManager
	mockWindows        *mocks.MockWindowResetter
	mockAuditPublisher *mocks.MockAuditPublisher
	service            *Service
	now                time.Time
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockBlocklist = mocks.NewMockBlocklistStore(s.ctrl)
	s.mockLockouts = mocks.NewMockLockoutManager(s.ctrl)
	s.mockWindows = mocks.NewMockWindowResetter(s.ctrl)
	s.mockAuditPublisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var err error
	s.service, err = New(
		s.mockBlocklist,
		s.mockLockouts,
		s.mockWindows,
		WithLogger(logger),
		WithAuditPublisher(s.mockAuditPublisher),
	)
	s.Require().NoError(err)
}

func (s *AdminServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AdminServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *AdminServiceSuite) TestNew() {
	s.Run("nil blocklist store", func() {
		_, err := New(nil, s.mockLockouts, s.mockWindows)
		s.ErrorContains(err, "blocklist store is required")
	})

	s.Run("nil lockout manager", func() {
		_, err := New(s.mockBlocklist, nil, s.mockWindows)
		s.ErrorContains(err, "lockout manager is required")
	})

	s.Run("nil window resetter", func() {
		_, err := New(s.mockBlocklist, s.mockLockouts, nil)
		s.ErrorContains(err, "window resetter is required")
	})
}

func (s *AdminServiceSuite) TestBlockAddress() {
	s.Run("stores canonical entry and emits audit", func() {
		var stored *models.BlockedAddress
		s.mockBlocklist.EXPECT().Add(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, entry *models.BlockedAddress) error {
				stored = entry
				return nil
			})
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event observability.Event) error {
				s.Equal(observability.EventBlocklistAdded, event.Action)
				s.Equal("203.0.113.9", event.Subject)
				s.Equal("applied", event.Decision)
				return nil
			})

		entry, err := s.service.BlockAddress(s.ctx(), &models.BlockAddressRequest{
			Address: " ::ffff:203.0.113.9 ",
			Reason:  "credential stuffing",
		}, "ops-1")

		s.Require().NoError(err)
		s.Equal("203.0.113.9", entry.Address)
		s.Equal("ops-1", entry.CreatedBy)
		s.Equal(s.now, entry.CreatedAt)
		s.Same(entry, stored)
	})

	s.Run("rejects invalid address without touching store", func() {
		_, err := s.service.BlockAddress(s.ctx(), &models.BlockAddressRequest{
			Address: "not-an-ip",
			Reason:  "spam",
		}, "ops-1")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects missing reason", func() {
		_, err := s.service.BlockAddress(s.ctx(), &models.BlockAddressRequest{
			Address: "203.0.113.9",
		}, "ops-1")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store failure maps to internal", func() {
		s.mockBlocklist.EXPECT().Add(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		_, err := s.service.BlockAddress(s.ctx(), &models.BlockAddressRequest{
			Address: "203.0.113.9",
			Reason:  "spam",
		}, "ops-1")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *AdminServiceSuite) TestUnblockAddress() {
	s.Run("removes entry and emits audit", func() {
		s.mockBlocklist.EXPECT().Remove(gomock.Any(), "203.0.113.9").Return(true, nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event observability.Event) error {
				s.Equal(observability.EventBlocklistRemoved, event.Action)
				return nil
			})

		s.NoError(s.service.UnblockAddress(s.ctx(), "203.0.113.9", "ops-1"))
	})

	s.Run("missing entry is not found", func() {
		s.mockBlocklist.EXPECT().Remove(gomock.Any(), "203.0.113.9").Return(false, nil)

		err := s.service.UnblockAddress(s.ctx(), "203.0.113.9", "ops-1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("invalid address", func() {
		err := s.service.UnblockAddress(s.ctx(), "bogus", "ops-1")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *AdminServiceSuite) TestListBlocked() {
	s.Run("returns store entries", func() {
		entries := []*models.BlockedAddress{{Address: "203.0.113.9", Reason: "spam"}}
		s.mockBlocklist.EXPECT().List(gomock.Any()).Return(entries, nil)

		got, err := s.service.ListBlocked(s.ctx())
		s.Require().NoError(err)
		s.Equal(entries, got)
	})

	s.Run("store failure maps to internal", func() {
		s.mockBlocklist.EXPECT().List(gomock.Any()).Return(nil, errors.New("db down"))

		_, err := s.service.ListBlocked(s.ctx())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *AdminServiceSuite) TestLockouts() {
	s.Run("status passes canonical address", func() {
		status := &models.LockoutStatusResponse{Address: "198.51.100.7", FailureCount: 3}
		s.mockLockouts.EXPECT().Status(gomock.Any(), "198.51.100.7").Return(status, nil)

		got, err := s.service.LockoutStatus(s.ctx(), "::ffff:198.51.100.7")
		s.Require().NoError(err)
		s.Equal(3, got.FailureCount)
	})

	s.Run("clear emits audit", func() {
		s.mockLockouts.EXPECT().Clear(gomock.Any(), "198.51.100.7").Return(nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event observability.Event) error {
				s.Equal(observability.EventLockoutCleared, event.Action)
				s.Equal("198.51.100.7", event.Subject)
				return nil
			})

		s.NoError(s.service.ClearLockout(s.ctx(), "198.51.100.7", "ops-1"))
	})

	s.Run("clear failure skips audit", func() {
		s.mockLockouts.EXPECT().Clear(gomock.Any(), "198.51.100.7").Return(errors.New("redis down"))

		s.Error(s.service.ClearLockout(s.ctx(), "198.51.100.7", "ops-1"))
	})
}

func (s *AdminServiceSuite) TestResetWindow() {
	s.Run("resets normalized limiter", func() {
		s.mockWindows.EXPECT().ResetWindow(gomock.Any(), "auth", "198.51.100.7").Return(nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event observability.Event) error {
				s.Equal(observability.EventRateWindowCleared, event.Action)
				return nil
			})

		err := s.service.ResetWindow(s.ctx(), &models.ResetWindowRequest{
			Limiter: " AUTH ",
			Address: "198.51.100.7",
		}, "ops-1")
		s.NoError(err)
	})

	s.Run("unknown limiter is rejected", func() {
		err := s.service.ResetWindow(s.ctx(), &models.ResetWindowRequest{
			Limiter: "uploads",
			Address: "198.51.100.7",
		}, "ops-1")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("resetter error propagates", func() {
		s.mockWindows.EXPECT().ResetWindow(gomock.Any(), "general", "198.51.100.7").
			Return(dErrors.New(dErrors.CodeNotFound, "unknown limiter"))

		err := s.service.ResetWindow(s.ctx(), &models.ResetWindowRequest{
			Limiter: "general",
			Address: "198.51.100.7",
		}, "ops-1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
