package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
	"marketgate/internal/platform/privacy"
)

const (
	lockedMessage = "Account temporarily locked due to too many failed attempts. Please try again later."

	// HeaderLockoutRemaining carries remainingTime when the body is not a JSON object.
	HeaderLockoutRemaining = "X-Lockout-Remaining"
)

type LockoutGate interface {
	Check(ctx context.Context, address string) (*models.LockoutDecision, error)
	RecordOutcome(ctx context.Context, address, path string, status int) (*models.Outcome, error)
	IsAuthPath(path string) bool
}

// Lockout rejects locked addresses with 429 before the handler runs. On auth
// paths the downstream response is held until it finishes so its final
// status can be recorded, and the response that triggers a lock is
// annotated with locked and remainingTime.
func Lockout(gate LockoutGate, opts ...Option) func(http.Handler) http.Handler {
	o := newOptions(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			address := clientAddress(r)

			decision, err := gate.Check(ctx, address)
			if err != nil {
				o.warn(r, "lockout check failed", "error", err, "address_prefix", privacy.AnonymizeIP(address))
			} else if !decision.Allowed {
				o.rejected("locked_out")
				observability.LogAudit(ctx, o.logger, o.auditPublisher, observability.EventLockedRejected,
					"address", address,
					"path", r.URL.Path,
					"method", r.Method,
					"retry_after", decision.RetryAfterSeconds,
					"reason", "locked_out",
				)
				writeRejection(w, http.StatusTooManyRequests, decision.RetryAfterSeconds, models.LockedOutResponse{
					Success:       false,
					Message:       lockedMessage,
					Locked:        true,
					RemainingTime: decision.RetryAfterSeconds,
				})
				return
			}

			if !gate.IsAuthPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			buf := newBufferedWriter(w)
			next.ServeHTTP(buf, r)

			outcome, err := gate.RecordOutcome(ctx, address, r.URL.Path, buf.statusCode())
			if err != nil {
				o.warn(r, "failed to record auth outcome", "error", err, "address_prefix", privacy.AnonymizeIP(address))
				buf.flush()
				return
			}
			if outcome.Locked {
				buf.annotateLock(outcome.RemainingTime)
			}
			buf.flush()
		})
	}
}

// bufferedWriter holds status and body until flush. Headers go straight to
// the underlying header map since nothing is sent before flush.
type bufferedWriter struct {
	w      http.ResponseWriter
	status int
	body   bytes.Buffer
}

func newBufferedWriter(w http.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{w: w}
}

func (b *bufferedWriter) Header() http.Header {
	return b.w.Header()
}

func (b *bufferedWriter) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedWriter) Unwrap() http.ResponseWriter {
	return b.w
}

func (b *bufferedWriter) statusCode() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}

// annotateLock merges locked and remainingTime into a JSON object body, or
// falls back to a header for anything else.
func (b *bufferedWriter) annotateLock(remaining int) {
	if isJSON(b.w.Header().Get("Content-Type")) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(b.body.Bytes(), &obj); err == nil && obj != nil {
			obj["locked"] = json.RawMessage("true")
			obj["remainingTime"] = json.RawMessage(strconv.Itoa(remaining))
			if encoded, err := json.Marshal(obj); err == nil {
				b.body.Reset()
				b.body.Write(encoded)
				b.body.WriteByte('\n')
				return
			}
		}
	}
	b.w.Header().Set(HeaderLockoutRemaining, strconv.Itoa(remaining))
}

func (b *bufferedWriter) flush() {
	if b.w.Header().Get("Content-Length") != "" {
		b.w.Header().Set("Content-Length", strconv.Itoa(b.body.Len()))
	}
	b.w.WriteHeader(b.statusCode())
	_, _ = b.w.Write(b.body.Bytes())
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
