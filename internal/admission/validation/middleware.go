package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"marketgate/internal/admission/metrics"
	"marketgate/internal/admission/models"
	"marketgate/internal/admission/observability"
	"marketgate/pkg/platform/httputil"
	"marketgate/pkg/requestcontext"
)

const (
	failureMessage = "Validation failed"
	bodyField      = "body"
)

type payloadKey struct{}

// Payload is a decoded JSON object body after normalization.
type Payload map[string]any

// String returns field as a string, or "" when absent or not a string.
func (p Payload) String(field string) string {
	s, _ := p[field].(string)
	return s
}

func WithPayload(ctx context.Context, p Payload) context.Context {
	return context.WithValue(ctx, payloadKey{}, p)
}

// PayloadFromContext returns the validated payload, or nil.
func PayloadFromContext(ctx context.Context) Payload {
	p, _ := ctx.Value(payloadKey{}).(Payload)
	return p
}

// Validator builds validation middleware sharing one logger and metrics set.
type Validator struct {
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher observability.AuditPublisher
}

type Option func(*Validator)

func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Validator) {
		v.metrics = m
	}
}

func WithAuditPublisher(publisher observability.AuditPublisher) Option {
	return func(v *Validator) {
		v.auditPublisher = publisher
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate returns middleware with no logging or metrics attached.
func Validate(rules ...Rule) func(http.Handler) http.Handler {
	return New().Validate(rules...)
}

// Validate returns middleware that decodes the JSON object body, runs rules
// and either rejects with 400 listing every failure or forwards the request
// with normalized values written back into the body and context.
func (v *Validator) Validate(rules ...Rule) func(http.Handler) http.Handler {
	pipeline := NewPipeline(rules...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			payload, err := decodeObject(r)
			if errors.Is(err, errBodyTooLarge) {
				v.rejectTooLarge(w, r)
				return
			}
			if err != nil {
				v.reject(w, r, []models.FieldError{{
					Field:   bodyField,
					Message: err.Error(),
					Value:   nil,
				}})
				return
			}

			result := pipeline.Run(payload)
			for _, fault := range result.Faults {
				if v.logger != nil {
					v.logger.ErrorContext(ctx, "validation rule fault", "error", fault, "path", r.URL.Path)
				}
			}
			if !result.Valid() {
				v.reject(w, r, toFieldErrors(result.Failures))
				return
			}

			for field, value := range result.Values {
				payload[field] = value
			}
			body, err := json.Marshal(payload)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
			r.Header.Set("Content-Length", strconv.Itoa(len(body)))

			next.ServeHTTP(w, r.WithContext(WithPayload(ctx, payload)))
		})
	}
}

func (v *Validator) reject(w http.ResponseWriter, r *http.Request, errs []models.FieldError) {
	ctx := r.Context()
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
		if v.metrics != nil {
			v.metrics.IncrementValidationFailure(e.Field)
		}
	}
	if v.metrics != nil {
		v.metrics.IncrementRejections("validation_failed")
	}

	attrs := []any{
		"address", requestcontext.ClientIP(ctx),
		"path", r.URL.Path,
		"method", r.Method,
		"user_agent", requestcontext.UserAgent(ctx),
		"fields", fields,
		"reason", "validation_failed",
	}
	attrs = append(attrs, observability.DescribeUserAgent(requestcontext.UserAgent(ctx)).LogAttrs()...)
	observability.LogAudit(ctx, v.logger, v.auditPublisher, observability.EventValidationFailed, attrs...)

	httputil.WriteJSON(w, http.StatusBadRequest, models.ValidationFailedResponse{
		Success: false,
		Message: failureMessage,
		Errors:  errs,
	})
}

// rejectTooLarge answers a body that hit the MaxBytesReader cap set by the
// payload guard. Chunked bodies only fail here, when they are read.
func (v *Validator) rejectTooLarge(w http.ResponseWriter, r *http.Request) {
	if v.metrics != nil {
		v.metrics.IncrementRejections("payload_too_large")
	}
	observability.LogAudit(r.Context(), v.logger, v.auditPublisher, observability.EventPayloadTooLarge,
		"address", requestcontext.ClientIP(r.Context()),
		"path", r.URL.Path,
		"method", r.Method,
		"reason", "body_limit_exceeded",
	)
	httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, models.RejectionResponse{
		Success: false,
		Message: "Payload too large",
	})
}

// bodyError messages are returned to clients verbatim.
type bodyError string

func (e bodyError) Error() string { return string(e) }

const (
	errBodyTooLarge  bodyError = "Request body too large"
	errBodyUnread    bodyError = "Unable to read request body"
	errInvalidJSON   bodyError = "Invalid JSON in request body"
	errNotJSONObject bodyError = "Request body must be a JSON object"
)

// decodeObject reads a JSON object. An empty body decodes to an empty object.
func decodeObject(r *http.Request) (Payload, error) {
	if r.Body == nil {
		return Payload{}, nil
	}
	raw, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errBodyTooLarge
		}
		return nil, errBodyUnread
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Payload{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, errInvalidJSON
	}
	if dec.More() {
		return nil, errInvalidJSON
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, errNotJSONObject
	}
	return Payload(obj), nil
}

func toFieldErrors(failures []Failure) []models.FieldError {
	out := make([]models.FieldError, 0, len(failures))
	for _, f := range failures {
		out = append(out, models.FieldError{Field: f.Field, Message: f.Message, Value: f.Value})
	}
	return out
}
