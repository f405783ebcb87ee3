// Package login serves the downstream auth endpoints that sit behind the
// admission chains. It trusts the validation stage for input shape and
// reads the normalized body from the request context.
package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"marketgate/internal/admission/validation"
	dErrors "marketgate/pkg/domain-errors"
	"marketgate/pkg/platform/httputil"
	"marketgate/pkg/requestcontext"
)

type Credentials interface {
	Register(ctx context.Context, email, password string) error
	Verify(ctx context.Context, email, password string) error
	Exists(ctx context.Context, email string) bool
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Handler struct {
	credentials Credentials
	logger      *slog.Logger
}

func New(credentials Credentials, logger *slog.Logger) *Handler {
	return &Handler{
		credentials: credentials,
		logger:      logger,
	}
}

// Chains wraps each auth route in its admission chain.
type Chains struct {
	Login         func(http.Handler) http.Handler
	Register      func(http.Handler) http.Handler
	PasswordReset func(http.Handler) http.Handler
}

// Mount registers the auth routes. A nil chain mounts the route bare.
func (h *Handler) Mount(r chi.Router, chains Chains) {
	r.With(orPass(chains.Login)).Post("/auth/login", h.HandleLogin)
	r.With(orPass(chains.Register)).Post("/auth/register", h.HandleRegister)
	r.With(orPass(chains.PasswordReset)).Post("/auth/password-reset", h.HandlePasswordReset)
}

func orPass(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

// HandleLogin implements POST /auth/login.
// Input: { "email": "...", "password": "..." }
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payload := validation.PayloadFromContext(ctx)
	if payload == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	err := h.credentials.Verify(ctx, payload.String("email"), payload.String("password"))
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, &Response{Success: true, Message: "Login successful"})
	case dErrors.HasCode(err, dErrors.CodeUnauthorized):
		httputil.WriteJSON(w, http.StatusUnauthorized, &Response{Success: false, Message: "Invalid credentials"})
	default:
		h.logger.ErrorContext(ctx, "failed to verify credentials",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
	}
}

// HandleRegister implements POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payload := validation.PayloadFromContext(ctx)
	if payload == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	if err := h.credentials.Register(ctx, payload.String("email"), payload.String("password")); err != nil {
		h.logger.WarnContext(ctx, "failed to register account",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &Response{Success: true, Message: "Account created"})
}

// HandlePasswordReset implements POST /auth/password-reset. The response
// does not reveal whether the account exists.
func (h *Handler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payload := validation.PayloadFromContext(ctx)
	if payload == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	if h.credentials.Exists(ctx, payload.String("email")) {
		h.logger.InfoContext(ctx, "password reset requested",
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteJSON(w, http.StatusAccepted, &Response{
		Success: true,
		Message: "If the account exists, a reset link has been sent",
	})
}
