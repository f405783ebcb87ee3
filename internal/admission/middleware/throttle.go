package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
)

const throttledMessage = "Service is temporarily overloaded. Please try again later."

// GlobalThrottle guards the whole process with one token bucket and sheds
// load with 503 once it is drained.
func GlobalThrottle(limiter *rate.Limiter, opts ...Option) func(http.Handler) http.Handler {
	o := newOptions(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reservation := limiter.Reserve()
			if !reservation.OK() || reservation.Delay() > 0 {
				retryAfter := 1
				if reservation.OK() {
					retryAfter = max(models.CeilSeconds(reservation.Delay()), 1)
				}
				reservation.Cancel()

				o.rejected("throttled")
				observability.LogAudit(r.Context(), o.logger, o.auditPublisher, observability.EventThrottled,
					"address", clientAddress(r),
					"path", r.URL.Path,
					"reason", "global_capacity",
				)
				writeRejection(w, http.StatusServiceUnavailable, retryAfter, models.RejectionResponse{
					Success:    false,
					Message:    throttledMessage,
					RetryAfter: retryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewThrottle builds the bucket from requests per second and burst.
func NewThrottle(rps float64, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(rps), burst)
}
