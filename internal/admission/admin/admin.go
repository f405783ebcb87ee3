package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"

	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
	dErrors "marketgate/pkg/domain-errors"
	"marketgate/pkg/requestcontext"
)

type Service struct {
	blocklist      BlocklistStore
	lockouts       LockoutManager
	windows        WindowResetter
	auditPublisher AuditPublisher
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(blocklist BlocklistStore, lockouts LockoutManager, windows WindowResetter, opts ...Option) (*Service, error) {
	if blocklist == nil {
		return nil, fmt.Errorf("blocklist store is required")
	}
	if lockouts == nil {
		return nil, fmt.Errorf("lockout manager is required")
	}
	if windows == nil {
		return nil, fmt.Errorf("window resetter is required")
	}

	svc := &Service{
		blocklist: blocklist,
		lockouts:  lockouts,
		windows:   windows,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) BlockAddress(ctx context.Context, req *models.BlockAddressRequest, actor string) (*models.BlockedAddress, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry, err := models.NewBlockedAddress(req.Address, req.Reason, actor, requestcontext.Now(ctx), req.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if err := s.blocklist.Add(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add blocked address")
	}

	s.logAudit(ctx, observability.EventBlocklistAdded,
		"address", entry.Address,
		"reason", entry.Reason,
		"actor", actor,
		"expires_at", entry.ExpiresAt,
	)
	return entry, nil
}

func (s *Service) UnblockAddress(ctx context.Context, address, actor string) error {
	canonical, err := canonicalAddress(address)
	if err != nil {
		return err
	}

	removed, err := s.blocklist.Remove(ctx, canonical)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove blocked address")
	}
	if !removed {
		return dErrors.New(dErrors.CodeNotFound, "address is not blocked")
	}

	s.logAudit(ctx, observability.EventBlocklistRemoved,
		"address", canonical,
		"actor", actor,
	)
	return nil
}

func (s *Service) ListBlocked(ctx context.Context) ([]*models.BlockedAddress, error) {
	entries, err := s.blocklist.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blocked addresses")
	}
	return entries, nil
}

func (s *Service) LockoutStatus(ctx context.Context, address string) (*models.LockoutStatusResponse, error) {
	canonical, err := canonicalAddress(address)
	if err != nil {
		return nil, err
	}
	return s.lockouts.Status(ctx, canonical)
}

func (s *Service) ClearLockout(ctx context.Context, address, actor string) error {
	canonical, err := canonicalAddress(address)
	if err != nil {
		return err
	}
	if err := s.lockouts.Clear(ctx, canonical); err != nil {
		return err
	}

	s.logAudit(ctx, observability.EventLockoutCleared,
		"address", canonical,
		"actor", actor,
	)
	return nil
}

func (s *Service) ResetWindow(ctx context.Context, req *models.ResetWindowRequest, actor string) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	canonical, err := canonicalAddress(req.Address)
	if err != nil {
		return err
	}
	if err := s.windows.ResetWindow(ctx, req.Limiter, canonical); err != nil {
		return err
	}

	s.logAudit(ctx, observability.EventRateWindowCleared,
		"address", canonical,
		"limiter", req.Limiter,
		"actor", actor,
	)
	return nil
}

func (s *Service) logAudit(ctx context.Context, event string, attrs ...any) {
	attrs = append(attrs, "decision", "applied")
	observability.LogAudit(ctx, s.logger, s.auditPublisher, event, attrs...)
}

// canonicalAddress matches the form the resolver stores addresses in.
func canonicalAddress(address string) (string, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(address))
	if err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "address must be a valid IP address")
	}
	return addr.Unmap().String(), nil
}
