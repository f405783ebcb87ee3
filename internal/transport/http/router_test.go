package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	adminsvc "marketgate/internal/admission/admin"
	"marketgate/internal/admission/controller"
	adminhandler "marketgate/internal/admission/handler"
	"marketgate/internal/admission/middleware"
	"marketgate/internal/admission/store/attempts"
	"marketgate/internal/admission/store/blocklist"
	"marketgate/internal/admission/store/window"
	"marketgate/internal/auth/login"
	"marketgate/internal/platform/health"
	"marketgate/pkg/testutil"
)

const testAdminToken = "router-admin-token"

// Exercises the full chain order on a real router: lockout before limiter
// before validation, post-handler outcome recording, blocklist, and the
// admin surface.
type RouterSuite struct {
	suite.Suite
	router       http.Handler
	deps         Deps
	credentials  *login.CredentialStore
	upstreamHits int
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	blocked := blocklist.New()

	ctrl, err := controller.New(controller.Deps{
		AttemptStore: attempts.New(),
		WindowStore:  window.New(),
		Blocklist:    blocked,
		Logger:       logger,
	}, nil, middleware.SecurityConfig{APIOrigin: "http://localhost:8080"})
	s.Require().NoError(err)

	s.credentials, err = login.NewCredentialStore(login.WithCost(bcrypt.MinCost))
	s.Require().NoError(err)
	s.Require().NoError(s.credentials.Register(context.Background(), "alice@example.com", "Str0ng!pass"))

	admins, err := adminsvc.New(blocked, ctrl.Lockout(), ctrl, adminsvc.WithLogger(logger))
	s.Require().NoError(err)

	s.upstreamHits = 0
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.upstreamHits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.deps = Deps{
		Controller: ctrl,
		Login:      login.New(s.credentials, logger),
		Admin:      adminhandler.New(admins, logger),
		Health:     health.New("test"),
		Upstream:   upstream,
		AdminToken: testAdminToken,
		Logger:     logger,
	}
	s.router = NewRouter(s.deps)
}

const clientAddress = "198.51.100.44"

func (s *RouterSuite) send(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := testutil.FromAddress(testutil.NewJSONRequest(method, path, body), clientAddress)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) login(password string) (*httptest.ResponseRecorder, map[string]any) {
	rec := s.send(http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"`+password+`"}`, nil)
	return rec, testutil.DecodeBody(rec)
}

func (s *RouterSuite) TestLockoutAfterRepeatedFailures() {
	for i := 1; i <= 4; i++ {
		rec, body := s.login("wrong")
		s.Equal(http.StatusUnauthorized, rec.Code, "attempt %d", i)
		s.Nil(body["locked"], "attempt %d", i)
	}

	rec, body := s.login("wrong")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(true, body["locked"])
	s.Equal(float64(900), body["remainingTime"])

	rec, body = s.login("Str0ng!pass")
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Equal(true, body["locked"])
	s.Equal("900", rec.Header().Get("Retry-After"))
}

func (s *RouterSuite) TestSuccessResetsFailureCount() {
	for range 3 {
		s.login("wrong")
	}
	rec, _ := s.login("Str0ng!pass")
	s.Equal(http.StatusOK, rec.Code)

	rec, body := s.login("wrong")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Nil(body["locked"])
}

func (s *RouterSuite) TestSecurityHeadersOnEveryAdmittedResponse() {
	rec := s.send(http.MethodGet, "/api/listings", "", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
	s.Equal("DENY", rec.Header().Get("X-Frame-Options"))
	s.NotEmpty(rec.Header().Get("Content-Security-Policy"))
	s.Equal("100", rec.Header().Get("RateLimit-Limit"))
	s.Equal(1, s.upstreamHits)
}

func (s *RouterSuite) TestValidationRejectsBeforeHandler() {
	rec := s.send(http.MethodPost, "/auth/register",
		`{"email":"bad","password":"weak","name":"B"}`, nil)

	s.Equal(http.StatusBadRequest, rec.Code)
	body := testutil.DecodeBody(rec)
	s.Equal("Validation failed", body["message"])
	s.Len(body["errors"], 3)
}

func (s *RouterSuite) TestPayloadTooLarge() {
	req := testutil.NewJSONRequest(http.MethodPost, "/api/listings", "{}")
	req.ContentLength = 11 * 1024 * 1024
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
	s.Zero(s.upstreamHits)
}

// oversizedStream is a JSON body one byte over 10 MiB with no declared length.
func oversizedStream() io.Reader {
	const limit = 10 << 20
	prefix, suffix := `{"email":"alice@example.com","password":"`, `"}`
	filler := limit + 1 - len(prefix) - len(suffix)
	return io.MultiReader(strings.NewReader(prefix), strings.NewReader(strings.Repeat("a", filler)), strings.NewReader(suffix))
}

func (s *RouterSuite) sendChunked(router http.Handler, path string) *httptest.ResponseRecorder {
	req := testutil.FromAddress(testutil.NewJSONRequest(http.MethodPost, path, nil), clientAddress)
	req.Body = io.NopCloser(oversizedStream())
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestChunkedBodyOverLimit() {
	s.Run("auth route", func() {
		rec := s.sendChunked(s.router, "/auth/login")

		s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
		body := testutil.DecodeBody(rec)
		s.Equal(false, body["success"])
		s.Equal("Payload too large", body["message"])
		s.Nil(body["errors"])
	})

	s.Run("proxied api route", func() {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer backend.Close()

		proxy, err := NewUpstream(backend.URL, s.deps.Logger)
		s.Require().NoError(err)
		deps := s.deps
		deps.Upstream = proxy

		rec := s.sendChunked(NewRouter(deps), "/api/listings")

		s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
		body := testutil.DecodeBody(rec)
		s.Equal(false, body["success"])
		s.Equal("Payload too large", body["message"])
	})
}

func (s *RouterSuite) TestHealthBypassesAdmission() {
	rec := s.send(http.MethodGet, "/health/live", "", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Empty(rec.Header().Get("RateLimit-Limit"))
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
	s.Equal("DENY", rec.Header().Get("X-Frame-Options"))
	s.NotEmpty(rec.Header().Get("Content-Security-Policy"))
	s.NotEmpty(rec.Header().Get("Strict-Transport-Security"))
}

func (s *RouterSuite) TestMetricsCarrySecurityHeaders() {
	deps := s.deps
	deps.Metrics = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
	rec := httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
	s.Empty(rec.Header().Get("RateLimit-Limit"))
}

func (s *RouterSuite) TestAdminBlocklistRoundTrip() {
	adminHeaders := map[string]string{"X-Admin-Token": testAdminToken}

	s.Run("requires token", func() {
		rec := s.send(http.MethodGet, "/admin/blocklist", "", nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("block then request is forbidden", func() {
		rec := s.send(http.MethodPost, "/admin/blocklist",
			`{"address":"203.0.113.50","reason":"scraping"}`, adminHeaders)
		s.Require().Equal(http.StatusCreated, rec.Code)

		req := testutil.FromAddress(testutil.NewJSONRequest(http.MethodGet, "/api/listings", nil), "203.0.113.50")
		blockedRec := httptest.NewRecorder()
		s.router.ServeHTTP(blockedRec, req)
		s.Equal(http.StatusForbidden, blockedRec.Code)
	})

	s.Run("lockout cleared by operator", func() {
		for range 5 {
			s.login("wrong")
		}
		rec := s.send(http.MethodDelete, "/admin/lockouts/"+clientAddress, "", adminHeaders)
		s.Equal(http.StatusOK, rec.Code)

		// the auth window is still exhausted, so reset it too
		rec = s.send(http.MethodPost, "/admin/rate-limit/reset",
			`{"limiter":"auth","address":"`+clientAddress+`"}`, adminHeaders)
		s.Equal(http.StatusOK, rec.Code)

		loginRec, _ := s.login("Str0ng!pass")
		s.Equal(http.StatusOK, loginRec.Code)
	})
}
