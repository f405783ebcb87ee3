// Package observability provides audit logging, tracing and user agent helpers for admission control.
package observability

import (
	"context"
	"log/slog"
	"time"

	"marketgate/pkg/requestcontext"
)

// Audit event names.
const (
	EventAddressLocked     = "address_locked"
	EventLockedRejected    = "locked_address_rejected"
	EventRateLimited       = "rate_limited"
	EventValidationFailed  = "validation_failed"
	EventPayloadTooLarge   = "payload_too_large"
	EventAddressBlocked    = "blocked_address_rejected"
	EventThrottled         = "global_throttle_rejected"
	EventBlocklistAdded    = "blocklist_entry_added"
	EventBlocklistRemoved  = "blocklist_entry_removed"
	EventLockoutCleared    = "lockout_cleared"
	EventRateWindowCleared = "rate_window_reset"
)

// Event is a security-relevant admission decision.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	Path      string    `json:"path,omitempty"`
	Decision  string    `json:"decision"`
	Reason    string    `json:"reason,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// AuditPublisher emits audit events for security-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event Event) error
}

// LogAudit logs to the structured logger and, when set, the publisher.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event string, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}

	args := append(attrList, "event", event, "log_type", "audit")
	if logger != nil {
		logger.InfoContext(ctx, event, args...)
	}

	if publisher == nil {
		return
	}

	decision := extractString(attrList, "decision")
	if decision == "" {
		decision = "denied"
	}

	err := publisher.Emit(ctx, Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    event,
		Subject:   firstString(attrList, "address", "ip", "address_prefix"),
		Path:      extractString(attrList, "path"),
		Decision:  decision,
		Reason:    extractString(attrList, "reason"),
		Actor:     extractString(attrList, "actor"),
		RequestID: requestID,
	})
	if err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}

func firstString(attrList []any, keys ...string) string {
	for _, k := range keys {
		if v := extractString(attrList, k); v != "" {
			return v
		}
	}
	return ""
}

// extractString finds the string value following key in a slog-style key/value list.
func extractString(attrList []any, key string) string {
	for i := 0; i+1 < len(attrList); i += 2 {
		k, ok := attrList[i].(string)
		if !ok || k != key {
			continue
		}
		if v, ok := attrList[i+1].(string); ok {
			return v
		}
	}
	return ""
}
