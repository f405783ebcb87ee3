package models

import (
	"math"
	"net/netip"
	"time"

	dErrors "marketgate/pkg/domain-errors"
)

// RouteClass selects the limiter instance (and whether the lockout gate
// applies) for a group of routes.
type RouteClass string

const (
	// ClassAuth: login and registration. Lockout gate plus auth limiter.
	ClassAuth RouteClass = "auth"
	// ClassGeneral: business routes. General limiter only.
	ClassGeneral RouteClass = "general"
	// ClassPasswordReset: reset requests. Strictest limiter.
	ClassPasswordReset RouteClass = "password-reset"
)

func (c RouteClass) IsValid() bool {
	switch c {
	case ClassAuth, ClassGeneral, ClassPasswordReset:
		return true
	}
	return false
}

// Gated reports whether the lockout gate sits in front of the class.
func (c RouteClass) Gated() bool {
	return c == ClassAuth
}

func (c RouteClass) String() string {
	return string(c)
}

// AttemptRecord counts consecutive failed auth attempts from one address.
// LockUntil is zero while the address is not locked.
type AttemptRecord struct {
	Address   string    `json:"address"`
	Count     int       `json:"count"`
	LockUntil time.Time `json:"lock_until,omitzero"`
	LastSeen  time.Time `json:"last_seen"`
}

func (r *AttemptRecord) IsLocked(now time.Time) bool {
	return !r.LockUntil.IsZero() && r.LockUntil.After(now)
}

// LockExpired reports a lock that was set and has since run out.
func (r *AttemptRecord) LockExpired(now time.Time) bool {
	return !r.LockUntil.IsZero() && !r.LockUntil.After(now)
}

// RetryAfterSeconds is the whole seconds (rounded up) until the lock lifts.
func (r *AttemptRecord) RetryAfterSeconds(now time.Time) int {
	if !r.IsLocked(now) {
		return 0
	}
	return CeilSeconds(r.LockUntil.Sub(now))
}

// RateWindow is one fixed window for one address on one limiter.
type RateWindow struct {
	Key         string        `json:"key"`
	WindowStart time.Time     `json:"window_start"`
	Window      time.Duration `json:"window"`
	Count       int           `json:"count"`
}

func (w *RateWindow) ResetAt() time.Time {
	return w.WindowStart.Add(w.Window)
}

// Elapsed reports whether now falls outside the window.
func (w *RateWindow) Elapsed(now time.Time) bool {
	return now.Sub(w.WindowStart) >= w.Window
}

// LockoutDecision is the gate's pre-check answer.
type LockoutDecision struct {
	Allowed           bool
	RetryAfterSeconds int
	LockedUntil       time.Time
}

// Outcome is what RecordOutcome did with a finished auth request.
type Outcome struct {
	Recorded      bool
	Locked        bool
	FailureCount  int
	RemainingTime int // seconds, set when Locked
}

type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

// BlockedAddress is an operator-managed deny entry.
type BlockedAddress struct {
	Address   string     `json:"address"`
	Reason    string     `json:"reason"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewBlockedAddress validates and canonicalizes address.
func NewBlockedAddress(address, reason, createdBy string, createdAt time.Time, expiresAt *time.Time) (*BlockedAddress, error) {
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "address must be a valid IP address")
	}
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "reason cannot be empty")
	}
	if expiresAt != nil && !expiresAt.After(createdAt) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "expires_at must be after created_at")
	}
	return &BlockedAddress{
		Address:   addr.Unmap().String(),
		Reason:    reason,
		CreatedBy: createdBy,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (b *BlockedAddress) IsExpired(now time.Time) bool {
	return b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}

// CeilSeconds rounds d up to whole seconds, never below zero.
func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
