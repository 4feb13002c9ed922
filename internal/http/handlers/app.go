package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"printfleet/internal/domain"
	"printfleet/internal/fleet"
)

// DiscoveryScanner triggers a LAN discovery sweep; results arrive over the
// WebSocket fan-out, not the HTTP response.
type DiscoveryScanner interface {
	Scan(ctx context.Context) error
}

// App bundles the services the HTTP handlers dispatch to.
type App struct {
	Printers    *fleet.Printers
	Jobs        *fleet.JobQueue
	Maintenance *fleet.Maintenance
	Lifecycle   *fleet.Lifecycle
	Discovery   DiscoveryScanner
	Logger      zerolog.Logger
}

// NewApp constructs the handler container.
func NewApp(printers *fleet.Printers, jobs *fleet.JobQueue, maintenance *fleet.Maintenance, lifecycle *fleet.Lifecycle, discovery DiscoveryScanner, logger zerolog.Logger) *App {
	return &App{
		Printers:    printers,
		Jobs:        jobs,
		Maintenance: maintenance,
		Lifecycle:   lifecycle,
		Discovery:   discovery,
		Logger:      logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) message(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"message": msg})
}

// domainError maps service errors onto the HTTP taxonomy: missing entities
// are 404, state and validation violations are 400, everything else is an
// opaque 500.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.message(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrDuplicateName):
		a.message(w, http.StatusBadRequest, err.Error())
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.message(w, http.StatusInternalServerError, "internal server error")
	}
}
