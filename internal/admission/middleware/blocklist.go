package middleware

import (
	"context"
	"net/http"

	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
	"marketgate/internal/platform/privacy"
)

type BlocklistChecker interface {
	IsBlocked(ctx context.Context, address string) (bool, error)
}

// Blocklist rejects blocked addresses with 403. Lookup errors let the
// request through.
func Blocklist(checker BlocklistChecker, opts ...Option) func(http.Handler) http.Handler {
	o := newOptions(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			address := clientAddress(r)
			blocked, err := checker.IsBlocked(r.Context(), address)
			if err != nil {
				o.warn(r, "blocklist lookup failed", "error", err, "address_prefix", privacy.AnonymizeIP(address))
				next.ServeHTTP(w, r)
				return
			}
			if blocked {
				o.rejected("address_blocked")
				observability.LogAudit(r.Context(), o.logger, o.auditPublisher, observability.EventAddressBlocked,
					"address", address,
					"path", r.URL.Path,
					"method", r.Method,
					"reason", "blocklisted",
				)
				writeRejection(w, http.StatusForbidden, 0, models.RejectionResponse{
					Success: false,
					Message: "Access denied",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
