package httpapi

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bierclub/bier/internal/common"
	"github.com/bierclub/bier/internal/logging"
	"github.com/bierclub/bier/internal/server/auth"
	"github.com/bierclub/bier/internal/server/services"
)

func withRequestLogging(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chiMiddleware.GetReqID(r.Context()),
			)
		})
	}
}

// bearerAuth resolves the Authorization header to an identity and stores
// it in the request context. Authentication failures are the same 401;
// storage failures are a 500.
func (h *Handler) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if !ok {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		id, err := h.Users.Authenticate(r.Context(), token)
		if err != nil {
			h.respondError(w, r, err, msgUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(services.WithIdentity(r.Context(), id)))
	})
}

// requestContext builds the per-request context handed to the services.
func requestContext(r *http.Request) services.RequestContext {
	id, _ := services.IdentityFrom(r.Context())
	return services.RequestContext{Identity: id, UserAgent: r.UserAgent()}
}
