package httpapi

import (
	"net/http"

	"genfity-report-service/internal/auth"
	"genfity-report-service/internal/http/handlers"
	"genfity-report-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter mounts the report API. Every /api/merchant route is scoped to
// the merchant carried by the bearer token.
func NewRouter(h *handlers.Handler, verifier auth.SessionVerifier) http.Handler {
	cfg := h.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(h.Logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"X-Request-Id",
				"Cache-Control",
				"Pragma",
			},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api/merchant", func(r chi.Router) {
		r.Use(setResponseHeader("X-Report-Service-Origin", "native"))
		r.Use(middleware.MerchantAuth(verifier, cfg.JWTSecret))

		r.Get("/reports", h.MerchantReports)
		r.Get("/reports/sales-dashboard", h.MerchantReportsSalesDashboard)
		r.Get("/revenue", h.MerchantRevenue)
		r.Get("/reports/snapshots", h.MerchantReportSnapshotList)
		r.Post("/reports/snapshots", h.MerchantReportSnapshotCreate)
	})

	return r
}

func setResponseHeader(name string, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(name, value)
			next.ServeHTTP(w, r)
		})
	}
}
