package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/liuren-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
//	GET  /health
//	GET  /api/v1/elements
//	GET  /api/v1/elements/{name}
//	GET  /api/v1/symbols
//	GET  /api/v1/bazi?date=&time=&gender=&method=
//	GET  /api/v1/daymaster/{date}
//	GET  /api/v1/calendar/lunar/{date}
//	GET  /api/v1/strokes/{chars}
//	POST /api/v1/divinations            (API key)
//	GET  /api/v1/divinations            (API key)
//	GET  /api/v1/divinations/stats      (API key)
//	GET  /api/v1/divinations/{id}       (API key)
func SetupRoutes(h *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		RecoveryMiddleware(logger),
		CORSMiddleware(cfg.CORSOrigin),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/elements", h.ListElements)
		r.Get("/elements/{name}", h.GetElement)
		r.Get("/symbols", h.ListSymbols)
		r.Get("/bazi", h.GetBazi)
		r.Get("/daymaster/{date}", h.GetDayMaster)
		r.Get("/calendar/lunar/{date}", h.GetLunarDate)
		r.Get("/strokes/{chars}", h.GetStrokes)

		r.Route("/divinations", func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, logger))
			r.Post("/", h.CreateDivination)
			r.Get("/", h.ListDivinations)
			r.Get("/stats", h.GetDivinationStats)
			r.Get("/{id}", h.GetDivination)
		})
	})

	return r
}
