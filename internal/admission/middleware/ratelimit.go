package middleware

import (
	"context"
	"net/http"
	"strconv"

	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
	"marketgate/internal/platform/privacy"
	"marketgate/pkg/requestcontext"
)

const (
	HeaderRateLimitLimit     = "RateLimit-Limit"
	HeaderRateLimitRemaining = "RateLimit-Remaining"
	HeaderRateLimitReset     = "RateLimit-Reset"
)

type RateLimiter interface {
	Allow(ctx context.Context, address string) (*models.RateLimitResult, error)
	Name() string
	Message() string
	Skip(r *http.Request) bool
}

// RateLimit counts every request against limiter and rejects with 429 once
// the window is exhausted. Store errors let the request through.
func RateLimit(limiter RateLimiter, opts ...Option) func(http.Handler) http.Handler {
	o := newOptions(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			address := clientAddress(r)

			result, err := limiter.Allow(ctx, address)
			if err != nil {
				o.warn(r, "rate limit check failed", "error", err,
					"limiter", limiter.Name(),
					"address_prefix", privacy.AnonymizeIP(address))
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(ctx, w, result)

			if !result.Allowed {
				o.rejected("rate_limited")
				observability.LogAudit(ctx, o.logger, o.auditPublisher, observability.EventRateLimited,
					"address", address,
					"path", r.URL.Path,
					"method", r.Method,
					"limiter", limiter.Name(),
					"reason", "window_exhausted",
				)
				writeRejection(w, http.StatusTooManyRequests, result.RetryAfter, models.RateLimitedResponse{
					Success:    false,
					Message:    limiter.Message(),
					RetryAfter: result.RetryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// addRateLimitHeaders sets the standard RateLimit-* headers. Reset is the
// number of seconds until the window ends.
func addRateLimitHeaders(ctx context.Context, w http.ResponseWriter, result *models.RateLimitResult) {
	reset := models.CeilSeconds(result.ResetAt.Sub(requestcontext.Now(ctx)))
	w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(result.Limit))
	w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(result.Remaining))
	w.Header().Set(HeaderRateLimitReset, strconv.Itoa(reset))
}
