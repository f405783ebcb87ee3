package admin

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
)

// BlocklistStore persists operator-managed deny entries.
type BlocklistStore interface {
	Add(ctx context.Context, entry *models.BlockedAddress) error
	// Remove reports whether an entry existed.
	Remove(ctx context.Context, address string) (bool, error)
	List(ctx context.Context) ([]*models.BlockedAddress, error)
}

// LockoutManager inspects and clears attempt records.
type LockoutManager interface {
	Status(ctx context.Context, address string) (*models.LockoutStatusResponse, error)
	Clear(ctx context.Context, address string) error
}

// WindowResetter clears one limiter window for one address.
type WindowResetter interface {
	ResetWindow(ctx context.Context, limiter, address string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event observability.Event) error
}
