// Package httpapi is the thin HTTP layer. It delegates to domain services
// without embedding business logic so transport concerns remain isolated.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	contacthandler "contactvault/internal/contacts/handler"
	"contactvault/internal/platform/middleware"
	"contactvault/pkg/platform/httputil"
)

// HealthChecker reports whether a backing resource is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter wires all endpoints. The metrics and health endpoints stay
// outside the auth boundary; everything else requires a bearer token.
func NewRouter(
	contacts *contacthandler.Handler,
	validator middleware.JWTValidator,
	logger *slog.Logger,
	checkers ...HealthChecker,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", handleHealth(checkers))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(validator, logger))
		contacts.Register(protected)
	})

	return r
}

func handleHealth(checkers []HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, checker := range checkers {
			if checker == nil {
				continue
			}
			if err := checker.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"error":  err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
