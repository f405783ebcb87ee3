package models

import "time"

// LockedOutResponse is the 429 body for a locked address.
type LockedOutResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Locked        bool   `json:"locked"`
	RemainingTime int    `json:"remainingTime"`
}

// RateLimitedResponse is the 429 body for an exhausted limiter window.
type RateLimitedResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

type ValidationFailedResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

// RejectionResponse covers 403/413/503 rejections.
type RejectionResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// LockoutStatusResponse is the admin view of an attempt record.
type LockoutStatusResponse struct {
	Address       string     `json:"address"`
	FailureCount  int        `json:"failure_count"`
	Locked        bool       `json:"locked"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
	RemainingTime int        `json:"remaining_time"`
}

type BlocklistResponse struct {
	Entries []*BlockedAddress `json:"entries"`
}

type AdminActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
