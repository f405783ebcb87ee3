package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"marketgate/internal/admission/config"
	"marketgate/internal/admission/models"
	"marketgate/internal/admission/service/ratelimit"
	"marketgate/internal/admission/store/window"
	"marketgate/pkg/requestcontext"
)

type RateLimitMiddlewareSuite struct {
	suite.Suite
	limiter *ratelimit.Limiter
	now     time.Time
}

func TestRateLimitMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(RateLimitMiddlewareSuite))
}

func (s *RateLimitMiddlewareSuite) SetupTest() {
	var err error
	s.limiter, err = ratelimit.New(window.New(), config.DefaultLimiters()[models.ClassAuth])
	s.Require().NoError(err)
	s.now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (s *RateLimitMiddlewareSuite) serve(limiter RateLimiter, next http.Handler, offset time.Duration) *httptest.ResponseRecorder {
	req := newRequest(http.MethodPost, "/auth/login", nil)
	req = req.WithContext(requestcontext.WithTime(req.Context(), s.now.Add(offset)))
	rec := httptest.NewRecorder()
	RateLimit(limiter, WithLogger(discardLogger()))(next).ServeHTTP(rec, req)
	return rec
}

func (s *RateLimitMiddlewareSuite) TestHeadersAndRejection() {
	next := &okHandler{}

	for i := 1; i <= 5; i++ {
		rec := s.serve(s.limiter, next, 0)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("5", rec.Header().Get(HeaderRateLimitLimit))
		s.Equal(strconv.Itoa(5-i), rec.Header().Get(HeaderRateLimitRemaining))
		s.Equal("900", rec.Header().Get(HeaderRateLimitReset))
	}

	rec := s.serve(s.limiter, next, time.Minute)
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Equal("840", rec.Header().Get("Retry-After"))
	s.Equal("0", rec.Header().Get(HeaderRateLimitRemaining))

	body := decode(s.T(), rec)
	s.Equal(false, body["success"])
	s.Equal("Too many authentication attempts, please try again later.", body["message"])
	s.InDelta(840, body["retryAfter"], 0)
	s.Equal(5, next.calls)
}

func (s *RateLimitMiddlewareSuite) TestNewWindowAdmitsAgain() {
	next := &okHandler{}
	for range 6 {
		s.serve(s.limiter, next, 0)
	}

	rec := s.serve(s.limiter, next, 15*time.Minute)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("4", rec.Header().Get(HeaderRateLimitRemaining))
}

func (s *RateLimitMiddlewareSuite) TestSkippedRequestsAreNotCounted() {
	cfg := config.DefaultLimiters()[models.ClassAuth]
	cfg.Skip = func(*http.Request) bool { return true }
	limiter, err := ratelimit.New(window.New(), cfg)
	s.Require().NoError(err)

	next := &okHandler{}
	for range 10 {
		rec := s.serve(limiter, next, 0)
		s.Equal(http.StatusOK, rec.Code)
		s.Empty(rec.Header().Get(HeaderRateLimitLimit))
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*models.RateLimitResult, error) {
	return nil, errors.New("redis: i/o timeout")
}
func (failingLimiter) Name() string            { return "auth" }
func (failingLimiter) Message() string         { return "" }
func (failingLimiter) Skip(*http.Request) bool { return false }

func (s *RateLimitMiddlewareSuite) TestStoreErrorsFailOpen() {
	next := &okHandler{}
	rec := s.serve(failingLimiter{}, next, 0)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(1, next.calls)
}
