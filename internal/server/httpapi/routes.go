// Package httpapi exposes the identity and chat flows as a JSON HTTP API.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bierclub/bier/internal/logging"
)

// NewRouter mounts the API under /api plus /healthz and /metrics.
//
// Routes:
//
//	POST /api/register                  public
//	POST /api/login                     public
//	POST /api/verify-email              public
//	POST /api/forgot-password           public
//	POST /api/reset-password            public
//	POST /api/logout                    bearer
//	GET  /api/me                        bearer
//	POST /api/verify-email/resend       bearer
//	POST /api/clubs/{clubID}/messages   bearer
//	GET  /api/clubs/{clubID}/messages   bearer
func NewRouter(h *Handler, logger logging.Logger, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(withRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/verify-email", h.VerifyEmail)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(h.bearerAuth)

			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
			r.Post("/verify-email/resend", h.ResendVerification)
			r.Post("/clubs/{clubID}/messages", h.SendMessage)
			r.Get("/clubs/{clubID}/messages", h.ListMessages)
		})
	})

	return r
}
