// Package controller composes the admission stages into the ordered chains
// mounted on the router.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"marketgate/internal/admission/config"
	"marketgate/internal/admission/metrics"
	"marketgate/internal/admission/middleware"
	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
	"marketgate/internal/admission/service/lockout"
	"marketgate/internal/admission/service/ratelimit"
	"marketgate/internal/admission/validation"
	dErrors "marketgate/pkg/domain-errors"
)

// Deps are the stores and sinks shared by every stage. Blocklist and
// Throttle are optional.
type Deps struct {
	AttemptStore   lockout.Store
	WindowStore    ratelimit.Store
	Blocklist      middleware.BlocklistChecker
	Throttle       *rate.Limiter
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	AuditPublisher observability.AuditPublisher
}

type Controller struct {
	lockout   *lockout.Service
	limiters  map[models.RouteClass]*ratelimit.Limiter
	validator *validation.Validator

	global      func(http.Handler) http.Handler
	headers     func(http.Handler) http.Handler
	lockoutGate func(http.Handler) http.Handler
	rateLimits  map[models.RouteClass]func(http.Handler) http.Handler
}

func New(deps Deps, cfg *config.Config, security middleware.SecurityConfig) (*Controller, error) {
	if deps.AttemptStore == nil {
		return nil, errors.New("attempt store is required")
	}
	if deps.WindowStore == nil {
		return nil, errors.New("window store is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid admission config: %w", err)
	}

	lockoutSvc, err := lockout.New(deps.AttemptStore,
		lockout.WithConfig(cfg.Lockout),
		lockout.WithLogger(deps.Logger),
		lockout.WithMetrics(deps.Metrics),
		lockout.WithAuditPublisher(deps.AuditPublisher),
	)
	if err != nil {
		return nil, err
	}

	stageOpts := []middleware.Option{
		middleware.WithLogger(deps.Logger),
		middleware.WithMetrics(deps.Metrics),
		middleware.WithAuditPublisher(deps.AuditPublisher),
	}

	c := &Controller{
		lockout:    lockoutSvc,
		limiters:   make(map[models.RouteClass]*ratelimit.Limiter, len(cfg.Limiters)),
		rateLimits: make(map[models.RouteClass]func(http.Handler) http.Handler, len(cfg.Limiters)),
		validator: validation.New(
			validation.WithLogger(deps.Logger),
			validation.WithMetrics(deps.Metrics),
			validation.WithAuditPublisher(deps.AuditPublisher),
		),
	}
	for class, limiterCfg := range cfg.Limiters {
		limiter, err := ratelimit.New(deps.WindowStore, limiterCfg,
			ratelimit.WithLogger(deps.Logger),
			ratelimit.WithMetrics(deps.Metrics),
		)
		if err != nil {
			return nil, err
		}
		c.limiters[class] = limiter
		c.rateLimits[class] = middleware.RateLimit(limiter, stageOpts...)
	}

	c.headers = middleware.SecurityHeaders(security)
	global := []func(http.Handler) http.Handler{
		middleware.SecurityLog(deps.Logger, lockoutSvc.IsAuthPath),
		c.headers,
		middleware.CORS(security),
	}
	if deps.Throttle != nil {
		global = append(global, middleware.GlobalThrottle(deps.Throttle, stageOpts...))
	}
	global = append(global, middleware.PayloadLimit(cfg.MaxPayloadBytes, stageOpts...))
	if deps.Blocklist != nil {
		global = append(global, middleware.Blocklist(deps.Blocklist, stageOpts...))
	}
	c.global = middleware.Chain(global...)
	c.lockoutGate = middleware.Lockout(lockoutSvc, stageOpts...)

	return c, nil
}

// Global is the chain every request passes: security log, headers, CORS,
// throttle, payload guard, blocklist.
func (c *Controller) Global() func(http.Handler) http.Handler {
	return c.global
}

// Headers is the security header stage alone, for routes that bypass the
// rest of admission (health, metrics).
func (c *Controller) Headers() func(http.Handler) http.Handler {
	return c.headers
}

// For returns lockout (gated classes only), then the class limiter, then
// validation when rules are given. It panics on a class without a limiter
// since routes are registered at startup.
func (c *Controller) For(class models.RouteClass, rules ...validation.Rule) func(http.Handler) http.Handler {
	limit, ok := c.rateLimits[class]
	if !ok {
		panic(fmt.Sprintf("admission: no limiter configured for route class %q", class))
	}

	stages := make([]func(http.Handler) http.Handler, 0, 3)
	if class.Gated() {
		stages = append(stages, c.lockoutGate)
	}
	stages = append(stages, limit)
	if len(rules) > 0 {
		stages = append(stages, c.validator.Validate(rules...))
	}
	return middleware.Chain(stages...)
}

// Lockout exposes the gate for the admin surface.
func (c *Controller) Lockout() *lockout.Service {
	return c.lockout
}

// ResetWindow clears address's window on the named limiter.
func (c *Controller) ResetWindow(ctx context.Context, limiter, address string) error {
	l, ok := c.limiters[models.RouteClass(limiter)]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "unknown limiter %q", limiter)
	}
	return l.Reset(ctx, address)
}

// IsAuthPath reports whether path outcomes feed the lockout gate.
func (c *Controller) IsAuthPath(path string) bool {
	return c.lockout.IsAuthPath(path)
}
