// Package ratelimit provides named fixed-window limiters keyed by client address.
//
// Each Limiter counts every request from an address in the current window and
// rejects once the count exceeds Max. Limiters sharing a store never share
// counters because keys carry the limiter name.
//
// Usage:
//
//	auth, _ := ratelimit.New(windowStore, config.DefaultLimiters()[models.ClassAuth])
//	result, _ := auth.Allow(ctx, clientIP)
//	if !result.Allowed {
//	    // Return 429 Too Many Requests with Retry-After: result.RetryAfter
//	}
package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"marketgate/internal/admission/config"
	"marketgate/internal/admission/metrics"
	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
	dErrors "marketgate/pkg/domain-errors"
	"marketgate/pkg/requestcontext"
)

// Store counts hits in fixed windows. Hit opens a fresh window when the
// previous one has elapsed.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (*models.RateWindow, error)
	Reset(ctx context.Context, key string) error
}

// Limiter is one named fixed-window limiter. Safe for concurrent use.
type Limiter struct {
	store   Store
	config  config.LimiterConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Limiter.
type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// New validates cfg and returns a limiter backed by store.
func New(store Store, cfg config.LimiterConfig, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("window store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Limiter{store: store, config: cfg}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Limiter) Name() string { return l.config.Name }

func (l *Limiter) Config() config.LimiterConfig { return l.config }

// Message is the rejection message, falling back to a generic one.
func (l *Limiter) Message() string {
	if l.config.Message == "" {
		return "Too many requests, please try again later."
	}
	return l.config.Message
}

// Skip reports whether r is exempt from this limiter.
func (l *Limiter) Skip(r *http.Request) bool {
	return l.config.Skip != nil && l.config.Skip(r)
}

// Allow counts one request from address and reports whether it is within
// the limit. The (Max+1)th request in a window is the first rejected.
func (l *Limiter) Allow(ctx context.Context, address string) (*models.RateLimitResult, error) {
	ctx, span := observability.StartSpan(ctx, "ratelimit.allow",
		attribute.String("ratelimit.limiter", l.config.Name),
	)

	key := models.WindowKey(l.config.Name, address)
	w, err := l.store.Hit(ctx, key, l.config.Window)
	if err != nil {
		observability.EndSpan(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count request")
	}
	defer span.End()

	now := requestcontext.Now(ctx)
	result := &models.RateLimitResult{
		Allowed:   w.Count <= l.config.Max,
		Limit:     l.config.Max,
		Remaining: max(l.config.Max-w.Count, 0),
		ResetAt:   w.ResetAt(),
	}
	if !result.Allowed {
		result.RetryAfter = models.CeilSeconds(w.ResetAt().Sub(now))
	}

	if l.metrics != nil {
		l.metrics.IncrementLimiterDecision(l.config.Name, result.Allowed)
	}
	span.SetAttributes(
		attribute.Bool("ratelimit.allowed", result.Allowed),
		attribute.Int("ratelimit.count", w.Count),
	)
	return result, nil
}

// Reset clears the current window for address.
func (l *Limiter) Reset(ctx context.Context, address string) error {
	if err := l.store.Reset(ctx, models.WindowKey(l.config.Name, address)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset rate window")
	}
	if l.logger != nil {
		l.logger.InfoContext(ctx, "rate window reset", "limiter", l.config.Name)
	}
	return nil
}
