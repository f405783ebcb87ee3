package httptransport

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	platformhttp "marketgate/pkg/platform/httputil"
	"marketgate/pkg/requestcontext"
)

// NewUpstream forwards admitted /api traffic to the marketplace backend.
// Paths are passed through unchanged.
func NewUpstream(rawURL string, logger *slog.Logger) (http.Handler, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("upstream url must be absolute: %q", rawURL)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			if id := requestcontext.RequestID(pr.In.Context()); id != "" {
				pr.Out.Header.Set("X-Request-ID", id)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logger.WarnContext(r.Context(), "request body over limit",
					"limit", tooLarge.Limit,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				platformhttp.WriteJSON(w, http.StatusRequestEntityTooLarge, platformhttp.ErrorResponse{
					Message: "Payload too large",
					Error:   "payload_too_large",
				})
				return
			}
			logger.ErrorContext(r.Context(), "upstream request failed",
				"error", err,
				"path", r.URL.Path,
				"request_id", requestcontext.RequestID(r.Context()),
			)
			platformhttp.WriteJSON(w, http.StatusBadGateway, platformhttp.ErrorResponse{
				Message: "Upstream unavailable",
				Error:   "bad_gateway",
			})
		},
	}
	return proxy, nil
}
