package resilient

import (
	"context"
	"errors"
	"time"

	"marketgate/internal/admission/models"
	"marketgate/internal/admission/service/ratelimit"
)

type WindowStore struct {
	primary  ratelimit.Store
	fallback ratelimit.Store
	guard    *guard
}

func NewWindowStore(primary, fallback ratelimit.Store, opts ...Option) (*WindowStore, error) {
	if primary == nil || fallback == nil {
		return nil, errors.New("primary and fallback window stores are required")
	}
	return &WindowStore{
		primary:  primary,
		fallback: fallback,
		guard:    newGuard("window_store", opts),
	}, nil
}

func (s *WindowStore) Hit(ctx context.Context, key string, window time.Duration) (*models.RateWindow, error) {
	return call(ctx, s.guard,
		func() (*models.RateWindow, error) { return s.primary.Hit(ctx, key, window) },
		func() (*models.RateWindow, error) { return s.fallback.Hit(ctx, key, window) },
	)
}

// Reset clears both stores so a window counted during an outage is gone too.
func (s *WindowStore) Reset(ctx context.Context, key string) error {
	fallbackErr := s.fallback.Reset(ctx, key)
	_, err := call(ctx, s.guard,
		func() (struct{}, error) { return struct{}{}, s.primary.Reset(ctx, key) },
		func() (struct{}, error) { return struct{}{}, fallbackErr },
	)
	return err
}
