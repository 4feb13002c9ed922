package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"printfleet/internal/http/handlers"
	"printfleet/internal/infra"
	"printfleet/internal/infra/geoip"
	"printfleet/internal/middleware"
	"printfleet/internal/ws"
)

// NewRouter wires the middleware stack and the resource routes.
func NewRouter(app *handlers.App, hub *ws.Hub, cfg *infra.Config, logger zerolog.Logger, countries geoip.CountryResolver) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, countries))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

	r.Get("/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", ws.Handler(hub, cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Route("/printers", func(r chi.Router) {
			r.Get("/", app.PrintersList)
			r.Post("/", app.PrintersCreate)
			r.Post("/discover", app.PrintersDiscover)
			r.Get("/{id}", app.PrintersGet)
			r.Put("/{id}", app.PrintersUpdate)
			r.Delete("/{id}", app.PrintersDelete)
			r.Post("/{id}/start", app.PrintersStart)
			r.Post("/{id}/pause", app.PrintersPause)
			r.Post("/{id}/resume", app.PrintersResume)
			r.Post("/{id}/stop", app.PrintersStop)
			r.Put("/{id}/progress", app.PrintersProgress)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", app.JobsList)
			r.Get("/queued", app.JobsQueued)
			r.Get("/active", app.JobsActive)
			r.Get("/completed", app.JobsCompleted)
			r.Post("/", app.JobsCreate)
			r.Post("/assign", app.JobsAssign)
			r.Get("/{id}", app.JobsGet)
			r.Put("/{id}", app.JobsUpdate)
			r.Delete("/{id}", app.JobsDelete)
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Get("/", app.MaintenanceList)
			r.Get("/upcoming", app.MaintenanceUpcoming)
			r.Get("/overdue", app.MaintenanceOverdue)
			r.Get("/printer/{printerId}", app.MaintenanceHistory)
			r.Post("/", app.MaintenanceCreate)
			r.Get("/{id}", app.MaintenanceGet)
			r.Put("/{id}", app.MaintenanceUpdate)
			r.Delete("/{id}", app.MaintenanceDelete)
		})
	})

	return r
}
