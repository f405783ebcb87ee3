package models

import (
	"net/netip"
	"strings"
	"time"

	dErrors "marketgate/pkg/domain-errors"
)

type BlockAddressRequest struct {
	Address   string     `json:"address"`
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (r *BlockAddressRequest) Normalize() {
	if r == nil {
		return
	}
	r.Address = strings.TrimSpace(r.Address)
	r.Reason = strings.TrimSpace(r.Reason)
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *BlockAddressRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Address) > 64 {
		return dErrors.New(dErrors.CodeValidation, "address must be 64 characters or less")
	}
	if len(r.Reason) > 500 {
		return dErrors.New(dErrors.CodeValidation, "reason must be 500 characters or less")
	}
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if _, err := netip.ParseAddr(r.Address); err != nil {
		return dErrors.New(dErrors.CodeValidation, "address must be a valid IP address")
	}
	if r.ExpiresAt != nil && r.ExpiresAt.Before(time.Now()) {
		return dErrors.New(dErrors.CodeValidation, "expires_at must be in the future")
	}
	return nil
}

type ResetWindowRequest struct {
	Limiter string `json:"limiter"`
	Address string `json:"address"`
}

func (r *ResetWindowRequest) Normalize() {
	if r == nil {
		return
	}
	r.Limiter = strings.TrimSpace(strings.ToLower(r.Limiter))
	r.Address = strings.TrimSpace(r.Address)
}

func (r *ResetWindowRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Limiter == "" {
		return dErrors.New(dErrors.CodeValidation, "limiter is required")
	}
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	if !RouteClass(r.Limiter).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "limiter must be one of auth, general, password-reset")
	}
	return nil
}
