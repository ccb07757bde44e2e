package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Pinger reports whether the license store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness/readiness probes and the build version.
type HealthHandler struct {
	store   Pinger
	version string
	logger  *slog.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(store Pinger, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		version: version,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// Routes returns a chi router for health endpoints.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HealthCheck)
	r.Get("/ready", h.ReadinessCheck)
	return r
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthCheck handles GET /api/health.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{Status: "ok", Version: h.version})
}

// ReadinessCheck handles GET /api/health/ready. Ready means the license
// store answers a ping.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.store != nil {
		if err := h.store.PingContext(ctx); err != nil {
			h.logger.WarnContext(r.Context(), "readiness check failed",
				slog.String("error", err.Error()))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, healthResponse{Status: "unavailable", Version: h.version})
			return
		}
	}

	render.JSON(w, r, healthResponse{Status: "ready", Version: h.version})
}
