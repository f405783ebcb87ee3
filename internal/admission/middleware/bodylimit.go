package middleware

import (
	"net/http"

	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
)

// PayloadLimit rejects a declared Content-Length above maxBytes with 413 and
// caps undeclared bodies at maxBytes while they are read.
func PayloadLimit(maxBytes int64, opts ...Option) func(http.Handler) http.Handler {
	o := newOptions(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				o.rejected("payload_too_large")
				observability.LogAudit(r.Context(), o.logger, o.auditPublisher, observability.EventPayloadTooLarge,
					"address", clientAddress(r),
					"path", r.URL.Path,
					"method", r.Method,
					"content_length", r.ContentLength,
					"reason", "content_length_exceeded",
				)
				writeRejection(w, http.StatusRequestEntityTooLarge, 0, models.RejectionResponse{
					Success: false,
					Message: "Payload too large",
				})
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
