// Package resilient wraps the distributed admission stores with a circuit
// breaker. While the breaker is open, calls go to a process-local fallback
// so limits keep applying per instance instead of failing open.
package resilient

import (
	"context"
	"log/slog"

	"marketgate/pkg/platform/circuit"
)

type guard struct {
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*guard)

func WithLogger(logger *slog.Logger) Option {
	return func(g *guard) {
		g.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(g *guard) {
		if b != nil {
			g.breaker = b
		}
	}
}

func newGuard(name string, opts []Option) *guard {
	g := &guard{
		breaker: circuit.New(name),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// call runs primary, switching to fallback while the circuit is open. A
// primary error on a closed circuit is returned as is.
func call[T any](ctx context.Context, g *guard, primary, fallback func() (T, error)) (T, error) {
	if !g.breaker.Allow() {
		return fallback()
	}

	v, err := primary()
	if err != nil {
		useFallback, change := g.breaker.RecordFailure()
		if change.Opened {
			g.logger.ErrorContext(ctx, "circuit breaker opened",
				"circuit", g.breaker.Name(),
				"error", err,
			)
		}
		if useFallback {
			return fallback()
		}
		return v, err
	}

	if change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "circuit breaker closed",
			"circuit", g.breaker.Name(),
		)
	}
	return v, nil
}
