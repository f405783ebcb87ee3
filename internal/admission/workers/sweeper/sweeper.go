package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"marketgate/internal/admission/metrics"
)

const DefaultInterval = 5 * time.Minute

// Sweepable evicts records that are no longer needed at now.
type Sweepable interface {
	Sweep(ctx context.Context, now time.Time) (evicted int, err error)
}

// SweepFunc adapts a function to Sweepable.
type SweepFunc func(ctx context.Context, now time.Time) (int, error)

func (f SweepFunc) Sweep(ctx context.Context, now time.Time) (int, error) {
	return f(ctx, now)
}

// sizer is implemented by memory stores that report their record count.
type sizer interface {
	Len() int
}

type target struct {
	name  string
	store Sweepable
}

// SweepResult contains the results of one sweep run.
type SweepResult struct {
	Evicted  map[string]int
	Duration time.Duration
}

func (r *SweepResult) Total() int {
	total := 0
	for _, n := range r.Evicted {
		total += n
	}
	return total
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service periodically sweeps every registered store.
type Service struct {
	targets  []target
	logger   *slog.Logger
	interval time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

func New(opts ...Option) *Service {
	s := &Service{
		logger:   slog.Default(),
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a store under name. Not safe to call after Start.
func (s *Service) Register(name string, store Sweepable) {
	s.targets = append(s.targets, target{name: name, store: store})
}

func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.Error("admission_sweep_failed",
					"error", err,
					"duration_ms", res.Duration.Milliseconds(),
				)
				s.observe("error", res)
				continue
			}
			s.logger.Info("admission_sweep_completed",
				"evicted", res.Total(),
				"duration_ms", res.Duration.Milliseconds(),
			)
			s.observe("success", res)

		case <-ctx.Done():
			s.logger.Info("admission sweeper stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce sweeps every target once. A failing target does not stop the
// others; their errors are joined.
func (s *Service) RunOnce(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	now := s.now()
	res := &SweepResult{Evicted: make(map[string]int, len(s.targets))}

	var errs []error
	for _, t := range s.targets {
		n, err := t.store.Sweep(ctx, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res.Evicted[t.name] = n
	}
	res.Duration = time.Since(start)
	return res, errors.Join(errs...)
}

func (s *Service) observe(status string, res *SweepResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementSweepRuns(status)
	s.metrics.ObserveSweepDuration(res.Duration.Seconds())
	for name, n := range res.Evicted {
		s.metrics.IncrementSweepEvicted(name, n)
	}
	for _, t := range s.targets {
		if sz, ok := t.store.(sizer); ok {
			s.metrics.SetTrackedRecords(t.name, sz.Len())
		}
	}
}
