package login

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	dErrors "marketgate/pkg/domain-errors"
	"marketgate/pkg/secrets"
)

// CredentialStore holds bcrypt-hashed passwords keyed by normalized email.
type CredentialStore struct {
	mu     sync.RWMutex
	hashes map[string]string
	hasher *secrets.Hasher
	// dummy keeps unknown-email verification as slow as a real one.
	dummy string
}

type StoreOption func(*storeOptions)

type storeOptions struct {
	cost int
}

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) StoreOption {
	return func(o *storeOptions) {
		o.cost = cost
	}
}

func NewCredentialStore(opts ...StoreOption) (*CredentialStore, error) {
	o := storeOptions{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(&o)
	}

	hasher := secrets.NewHasher(o.cost)
	dummy, err := hasher.Hash("marketgate-unknown-account")
	if err != nil {
		return nil, err
	}
	return &CredentialStore{
		hashes: make(map[string]string),
		hasher: hasher,
		dummy:  dummy,
	}, nil
}

// Register stores a new account. An existing email is a conflict.
func (s *CredentialStore) Register(_ context.Context, email, password string) error {
	key := normalize(email)
	if key == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.hashes[key]; exists {
		return dErrors.New(dErrors.CodeConflict, "account already exists")
	}
	s.hashes[key] = hash
	return nil
}

// Verify returns CodeUnauthorized for both unknown emails and wrong passwords.
func (s *CredentialStore) Verify(_ context.Context, email, password string) error {
	s.mu.RLock()
	hash, ok := s.hashes[normalize(email)]
	s.mu.RUnlock()

	if !ok {
		_ = s.hasher.Verify(password, s.dummy)
		return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := s.hasher.Verify(password, hash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return err
	}
	return nil
}

func (s *CredentialStore) Exists(_ context.Context, email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[normalize(email)]
	return ok
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
