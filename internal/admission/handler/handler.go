package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"marketgate/internal/admission/models"
	"marketgate/pkg/platform/httputil"
	"marketgate/pkg/platform/middleware/admin"
	"marketgate/pkg/requestcontext"
)

const maxAdminBody = 64 * 1024

type Service interface {
	BlockAddress(ctx context.Context, req *models.BlockAddressRequest, actor string) (*models.BlockedAddress, error)
	UnblockAddress(ctx context.Context, address, actor string) error
	ListBlocked(ctx context.Context) ([]*models.BlockedAddress, error)
	LockoutStatus(ctx context.Context, address string) (*models.LockoutStatusResponse, error)
	ClearLockout(ctx context.Context, address, actor string) error
	ResetWindow(ctx context.Context, req *models.ResetWindowRequest, actor string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterAdmin mounts operator routes. Callers guard r with admin auth.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/blocklist", h.HandleListBlocked)
	r.Post("/admin/blocklist", h.HandleBlockAddress)
	r.Delete("/admin/blocklist/{address}", h.HandleUnblockAddress)
	r.Get("/admin/lockouts/{address}", h.HandleLockoutStatus)
	r.Delete("/admin/lockouts/{address}", h.HandleClearLockout)
	r.Post("/admin/rate-limit/reset", h.HandleResetWindow)
}

// HandleBlockAddress implements POST /admin/blocklist.
// Input: { "address": "203.0.113.9", "reason": "...", "expires_at": "..." }
// Output: 201 with the stored entry
func (h *Handler) HandleBlockAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxAdminBody)
	req, ok := httputil.DecodeJSON[models.BlockAddressRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.BlockAddress(ctx, req, admin.GetAdminActorID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to block address",
			"error", err,
			"address", req.Address,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

// HandleUnblockAddress implements DELETE /admin/blocklist/{address}.
func (h *Handler) HandleUnblockAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if err := h.service.UnblockAddress(ctx, address, admin.GetAdminActorID(ctx)); err != nil {
		h.logger.WarnContext(ctx, "failed to unblock address",
			"error", err,
			"address", address,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.AdminActionResponse{
		Success: true,
		Message: "address unblocked",
	})
}

// HandleListBlocked implements GET /admin/blocklist.
func (h *Handler) HandleListBlocked(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.service.ListBlocked(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list blocked addresses",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []*models.BlockedAddress{}
	}
	httputil.WriteJSON(w, http.StatusOK, &models.BlocklistResponse{Entries: entries})
}

// HandleLockoutStatus implements GET /admin/lockouts/{address}.
func (h *Handler) HandleLockoutStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	status, err := h.service.LockoutStatus(ctx, address)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read lockout status",
			"error", err,
			"address", address,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// HandleClearLockout implements DELETE /admin/lockouts/{address}.
func (h *Handler) HandleClearLockout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if err := h.service.ClearLockout(ctx, address, admin.GetAdminActorID(ctx)); err != nil {
		h.logger.WarnContext(ctx, "failed to clear lockout",
			"error", err,
			"address", address,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.AdminActionResponse{
		Success: true,
		Message: "lockout cleared",
	})
}

// HandleResetWindow implements POST /admin/rate-limit/reset.
// Input: { "limiter": "auth", "address": "198.51.100.7" }
func (h *Handler) HandleResetWindow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxAdminBody)
	req, ok := httputil.DecodeAndPrepare[models.ResetWindowRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.ResetWindow(ctx, req, admin.GetAdminActorID(ctx)); err != nil {
		h.logger.WarnContext(ctx, "failed to reset rate window",
			"error", err,
			"limiter", req.Limiter,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.AdminActionResponse{
		Success: true,
		Message: "rate window reset",
	})
}
