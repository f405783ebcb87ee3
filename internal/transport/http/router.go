package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"

	"marketgate/internal/admission/controller"
	adminhandler "marketgate/internal/admission/handler"
	"marketgate/internal/admission/models"
	"marketgate/internal/admission/validation"
	"marketgate/internal/auth/login"
	"marketgate/internal/platform/health"
	"marketgate/pkg/platform/middleware/admin"
	"marketgate/pkg/platform/middleware/metadata"
	request "marketgate/pkg/platform/middleware/request"
	"marketgate/pkg/platform/middleware/requesttime"
)

// Deps are the handlers mounted by NewRouter. Admin, Upstream and Metrics
// are optional; their routes are not registered when nil.
type Deps struct {
	Controller     *controller.Controller
	Login          *login.Handler
	Admin          *adminhandler.Handler
	Health         *health.Handler
	Metrics        http.Handler
	RequestMetrics *request.Metrics
	Upstream       http.Handler

	// RequestTimeout bounds each admitted request; zero disables it.
	RequestTimeout time.Duration

	AdminToken     string
	TrustedProxies []netip.Prefix
	Logger         *slog.Logger
}

// NewRouter wires all public endpoints behind the admission chains. Health
// and metrics only get the security headers, so they are never throttled or
// blocked.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(metadata.NewMiddleware(&metadata.Config{TrustedProxies: d.TrustedProxies}).Handler)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(request.Recovery(d.Logger))

	r.Group(func(r chi.Router) {
		r.Use(d.Controller.Headers())
		if d.Health != nil {
			d.Health.Register(r)
		}
		if d.Metrics != nil {
			r.Handle("/metrics", d.Metrics)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(d.Controller.Global())
		r.Use(request.LatencyMiddleware(d.RequestMetrics))
		r.Use(request.ContentTypeJSON)
		if d.RequestTimeout > 0 {
			r.Use(request.Timeout(d.RequestTimeout))
		}

		d.Login.Mount(r, login.Chains{
			Login:         d.Controller.For(models.ClassAuth, validation.LoginRules()...),
			Register:      d.Controller.For(models.ClassAuth, validation.RegisterRules()...),
			PasswordReset: d.Controller.For(models.ClassPasswordReset, validation.PasswordResetRules()...),
		})

		if d.Upstream != nil {
			r.With(d.Controller.For(models.ClassAuth, validation.LoginRules()...)).
				Post("/api/auth/login", d.Upstream.ServeHTTP)
			r.With(d.Controller.For(models.ClassGeneral)).
				Handle("/api/*", d.Upstream)
		}

		if d.Admin != nil {
			r.Group(func(r chi.Router) {
				r.Use(d.Controller.For(models.ClassGeneral))
				r.Use(admin.RequireAdminToken(d.AdminToken, d.Logger))
				d.Admin.RegisterAdmin(r)
			})
		}
	})

	return r
}
