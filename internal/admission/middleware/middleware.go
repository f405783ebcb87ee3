// Package middleware holds the admission stages. Each stage is a
// func(http.Handler) http.Handler that either rejects with a JSON envelope
// or calls through.
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"marketgate/internal/admission/metrics"
	"marketgate/internal/admission/observability"
	"marketgate/pkg/platform/httputil"
	"marketgate/pkg/requestcontext"
)

// Option configures logging, metrics and audit for a stage.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher observability.AuditPublisher
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithAuditPublisher(publisher observability.AuditPublisher) Option {
	return func(o *options) {
		o.auditPublisher = publisher
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) warn(r *http.Request, msg string, args ...any) {
	if o.logger != nil {
		o.logger.WarnContext(r.Context(), msg, args...)
	}
}

func (o *options) rejected(reason string) {
	if o.metrics != nil {
		o.metrics.IncrementRejections(reason)
	}
}

// Chain composes stages so the first one runs outermost.
func Chain(stages ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(stages) - 1; i >= 0; i-- {
			next = stages[i](next)
		}
		return next
	}
}

// clientAddress prefers the address resolved by the metadata middleware.
func clientAddress(r *http.Request) string {
	if ip := requestcontext.ClientIP(r.Context()); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeRejection(w http.ResponseWriter, status, retryAfter int, body any) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	httputil.WriteJSON(w, status, body)
}
