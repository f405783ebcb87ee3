package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	t.Run("production policy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw := SecurityHeaders(SecurityConfig{APIOrigin: "https://api.marketgate.io", Production: true})

		mw(&okHandler{}).ServeHTTP(rec, newRequest(http.MethodGet, "/", nil))

		h := rec.Header()
		assert.Equal(t, "max-age=31536000; includeSubDomains; preload", h.Get("Strict-Transport-Security"))
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
		assert.Equal(t, "DENY", h.Get("X-Frame-Options"))

		csp := h.Get("Content-Security-Policy")
		assert.Contains(t, csp, "default-src 'self'")
		assert.Contains(t, csp, "connect-src 'self' https://api.marketgate.io")
		assert.Contains(t, csp, "frame-ancestors 'none'")
		assert.Contains(t, csp, "object-src 'none'")
	})

	t.Run("development disables hsts", func(t *testing.T) {
		rec := httptest.NewRecorder()

		SecurityHeaders(SecurityConfig{})(&okHandler{}).ServeHTTP(rec, newRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "max-age=0", rec.Header().Get("Strict-Transport-Security"))
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "connect-src 'self';")
	})

	t.Run("headers are also set on rejections", func(t *testing.T) {
		rec := httptest.NewRecorder()
		next := &okHandler{status: http.StatusTooManyRequests}

		SecurityHeaders(SecurityConfig{})(next).ServeHTTP(rec, newRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})
}

func TestContentSecurityPolicyIsStable(t *testing.T) {
	cfg := SecurityConfig{APIOrigin: "https://api.example.com"}
	assert.Equal(t, ContentSecurityPolicy(cfg), ContentSecurityPolicy(cfg))
}

func TestCORS(t *testing.T) {
	mw := CORS(SecurityConfig{CORSOrigins: []string{"https://shop.example.com"}})

	t.Run("allowed origin preflight", func(t *testing.T) {
		req := newRequest(http.MethodOptions, "/auth/login", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()

		mw(&okHandler{}).ServeHTTP(rec, req)

		assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin gets no grant", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/auth/login", nil)
		req.Header.Set("Origin", "https://evil.example.net")
		rec := httptest.NewRecorder()

		mw(&okHandler{}).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
