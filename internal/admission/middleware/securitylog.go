package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"marketgate/pkg/requestcontext"
)

// SecurityLog writes one structured line per request for the log
// aggregator. Rejections and failed auth attempts log at warn.
func SecurityLog(logger *slog.Logger, isAuthPath func(path string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			ctx := r.Context()
			status := rec.statusCode()
			args := []any{
				"address", clientAddress(r),
				"path", r.URL.Path,
				"method", r.Method,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", requestcontext.RequestID(ctx),
				"user_agent", requestcontext.UserAgent(ctx),
				"log_type", "security",
			}

			switch {
			case status >= 400 && isAuthPath != nil && isAuthPath(r.URL.Path):
				logger.WarnContext(ctx, "auth request failed", args...)
			case isSecurityRejection(status):
				logger.WarnContext(ctx, "request rejected", args...)
			default:
				logger.InfoContext(ctx, "request completed", args...)
			}
		})
	}
}

func isSecurityRejection(status int) bool {
	switch status {
	case http.StatusForbidden, http.StatusRequestEntityTooLarge, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	return false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(p)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
