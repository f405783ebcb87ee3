package lockout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"marketgate/internal/admission/config"
	"marketgate/internal/admission/metrics"
	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
	"marketgate/internal/platform/privacy"
	dErrors "marketgate/pkg/domain-errors"
	"marketgate/pkg/requestcontext"
)

// Store holds one attempt record per address. RecordFailure applies the
// lock itself so concurrent failures cannot skip past the threshold.
type Store interface {
	Get(ctx context.Context, address string) (*models.AttemptRecord, error)
	RecordFailure(ctx context.Context, address string, threshold int, lockFor time.Duration) (*models.AttemptRecord, bool, error)
	Clear(ctx context.Context, address string) error
}

type Service struct {
	store          Store
	config         config.LockoutConfig
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher observability.AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg config.LockoutConfig) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher observability.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("lockout store is required")
	}

	svc := &Service{
		store:  store,
		config: config.DefaultConfig().Lockout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.config.Threshold <= 0 || svc.config.Duration <= 0 {
		return nil, fmt.Errorf("lockout threshold and duration must be positive")
	}
	return svc, nil
}

// IsAuthPath reports whether outcomes on path are counted.
func (s *Service) IsAuthPath(path string) bool {
	return s.config.IsAuthPath(path)
}

// Check answers whether address may proceed. An address without a record,
// or whose lock has run out, is allowed.
func (s *Service) Check(ctx context.Context, address string) (*models.LockoutDecision, error) {
	ctx, span := observability.StartSpan(ctx, "lockout.check")
	record, err := s.store.Get(ctx, address)
	if err != nil {
		observability.EndSpan(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get attempt record")
	}
	defer span.End()

	now := requestcontext.Now(ctx)
	if record == nil || !record.IsLocked(now) {
		span.SetAttributes(attribute.Bool("lockout.allowed", true))
		return &models.LockoutDecision{Allowed: true}, nil
	}

	span.SetAttributes(attribute.Bool("lockout.allowed", false))
	return &models.LockoutDecision{
		Allowed:           false,
		RetryAfterSeconds: record.RetryAfterSeconds(now),
		LockedUntil:       record.LockUntil,
	}, nil
}

// RecordOutcome counts a finished auth request. A status of 400 or above is
// a failure; anything lower resets the address.
func (s *Service) RecordOutcome(ctx context.Context, address, path string, status int) (*models.Outcome, error) {
	if !s.IsAuthPath(path) {
		return &models.Outcome{}, nil
	}

	if status < 400 {
		if err := s.store.Clear(ctx, address); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset attempt record")
		}
		return &models.Outcome{Recorded: true}, nil
	}

	ctx, span := observability.StartSpan(ctx, "lockout.record_failure",
		attribute.Int("http.status_code", status),
	)
	record, lockedNow, err := s.store.RecordFailure(ctx, address, s.config.Threshold, s.config.Duration)
	if err != nil {
		observability.EndSpan(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record auth failure")
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.IncrementAuthFailures()
	}

	now := requestcontext.Now(ctx)
	outcome := &models.Outcome{
		Recorded:     true,
		FailureCount: record.Count,
		Locked:       record.IsLocked(now),
	}
	if outcome.Locked {
		outcome.RemainingTime = record.RetryAfterSeconds(now)
	}

	if lockedNow {
		if s.metrics != nil {
			s.metrics.IncrementLockouts()
		}
		observability.LogAudit(ctx, s.logger, s.auditPublisher, observability.EventAddressLocked,
			"address", address,
			"address_prefix", privacy.AnonymizeIP(address),
			"path", path,
			"failure_count", record.Count,
			"locked_until", record.LockUntil,
			"reason", "failure_threshold",
		)
	}
	span.SetAttributes(attribute.Bool("lockout.locked", outcome.Locked))
	return outcome, nil
}

// Status returns the admin view of address.
func (s *Service) Status(ctx context.Context, address string) (*models.LockoutStatusResponse, error) {
	record, err := s.store.Get(ctx, address)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get attempt record")
	}

	resp := &models.LockoutStatusResponse{Address: address}
	if record == nil {
		return resp, nil
	}
	now := requestcontext.Now(ctx)
	resp.FailureCount = record.Count
	if record.IsLocked(now) {
		until := record.LockUntil
		resp.Locked = true
		resp.LockedUntil = &until
		resp.RemainingTime = record.RetryAfterSeconds(now)
	}
	return resp, nil
}

// Clear removes the record for address, unlocking it.
func (s *Service) Clear(ctx context.Context, address string) error {
	if err := s.store.Clear(ctx, address); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear attempt record")
	}
	return nil
}
