package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"marketgate/internal/platform/privacy"
	"marketgate/pkg/platform/httputil"
	"marketgate/pkg/requestcontext"
)

type contextKeyAdminActorID struct{}

// ActorFallback attributes admin actions when no X-Admin-Actor-ID is sent.
const ActorFallback = "admin"

// GetAdminActorID returns the acting operator, or "" outside admin routes.
func GetAdminActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(contextKeyAdminActorID{}).(string); ok {
		return actorID
	}
	return ""
}

// RequireAdminToken guards operator routes with a shared X-Admin-Token.
// An empty expected token disables the admin surface entirely.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get("X-Admin-Token")
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"address_prefix", privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
				)
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
					Message: "Admin token required",
					Error:   "unauthorized",
				})
				return
			}

			actorID := r.Header.Get("X-Admin-Actor-ID")
			if actorID == "" {
				actorID = ActorFallback
			}
			ctx = context.WithValue(ctx, contextKeyAdminActorID{}, actorID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
