package resilient

import (
	"context"
	"errors"
	"time"

	"marketgate/internal/admission/models"
	"marketgate/internal/admission/service/lockout"
)

type AttemptStore struct {
	primary  lockout.Store
	fallback lockout.Store
	guard    *guard
}

func NewAttemptStore(primary, fallback lockout.Store, opts ...Option) (*AttemptStore, error) {
	if primary == nil || fallback == nil {
		return nil, errors.New("primary and fallback attempt stores are required")
	}
	return &AttemptStore{
		primary:  primary,
		fallback: fallback,
		guard:    newGuard("attempt_store", opts),
	}, nil
}

func (s *AttemptStore) Get(ctx context.Context, address string) (*models.AttemptRecord, error) {
	return call(ctx, s.guard,
		func() (*models.AttemptRecord, error) { return s.primary.Get(ctx, address) },
		func() (*models.AttemptRecord, error) { return s.fallback.Get(ctx, address) },
	)
}

type recordResult struct {
	record *models.AttemptRecord
	locked bool
}

func (s *AttemptStore) RecordFailure(ctx context.Context, address string, threshold int, lockFor time.Duration) (*models.AttemptRecord, bool, error) {
	res, err := call(ctx, s.guard,
		func() (recordResult, error) {
			rec, locked, err := s.primary.RecordFailure(ctx, address, threshold, lockFor)
			return recordResult{rec, locked}, err
		},
		func() (recordResult, error) {
			rec, locked, err := s.fallback.RecordFailure(ctx, address, threshold, lockFor)
			return recordResult{rec, locked}, err
		},
	)
	return res.record, res.locked, err
}

func (s *AttemptStore) Clear(ctx context.Context, address string) error {
	fallbackErr := s.fallback.Clear(ctx, address)
	_, err := call(ctx, s.guard,
		func() (struct{}, error) { return struct{}{}, s.primary.Clear(ctx, address) },
		func() (struct{}, error) { return struct{}{}, fallbackErr },
	)
	return err
}
