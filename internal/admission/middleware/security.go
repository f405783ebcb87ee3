package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

const (
	hstsProduction  = "max-age=31536000; includeSubDomains; preload"
	hstsDevelopment = "max-age=0"
)

// SecurityConfig is read once when the header layer is built.
type SecurityConfig struct {
	// APIOrigin is added to connect-src. Empty leaves only 'self'.
	APIOrigin   string
	Production  bool
	CORSOrigins []string
}

type header struct {
	name  string
	value string
}

// SecurityHeaders attaches the static policy headers to every response.
func SecurityHeaders(cfg SecurityConfig) func(http.Handler) http.Handler {
	headers := policyHeaders(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, hdr := range headers {
				h.Set(hdr.name, hdr.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func policyHeaders(cfg SecurityConfig) []header {
	hsts := hstsDevelopment
	if cfg.Production {
		hsts = hstsProduction
	}
	return []header{
		{"Content-Security-Policy", contentSecurityPolicy(cfg.APIOrigin)},
		{"Strict-Transport-Security", hsts},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"X-Frame-Options", "DENY"},
		{"Cross-Origin-Opener-Policy", "same-origin"},
		{"X-DNS-Prefetch-Control", "off"},
	}
}

// ContentSecurityPolicy exposes the computed policy for diagnostics.
func ContentSecurityPolicy(cfg SecurityConfig) string {
	return contentSecurityPolicy(cfg.APIOrigin)
}

func contentSecurityPolicy(apiOrigin string) string {
	connect := "'self'"
	if origin := strings.TrimSpace(apiOrigin); origin != "" {
		connect += " " + origin
	}
	directives := []string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: https:",
		"font-src 'self'",
		"connect-src " + connect,
		"media-src 'self'",
		"object-src 'none'",
		"frame-src 'none'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}
	return strings.Join(directives, "; ")
}

// CORS applies the configured origin allowlist. An empty list grants no
// cross-origin access.
func CORS(cfg SecurityConfig) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{HeaderRateLimitLimit, HeaderRateLimitRemaining, HeaderRateLimitReset, "Retry-After", HeaderLockoutRemaining},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(cfg.CORSOrigins) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}
	return cors.Handler(opts)
}
