package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ReleaseHandler serves latest-release metadata for the download page.
type ReleaseHandler struct {
	service ReleaseService
	logger  *slog.Logger
}

// NewReleaseHandler creates a release handler.
func NewReleaseHandler(service ReleaseService, logger *slog.Logger) *ReleaseHandler {
	return &ReleaseHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "release")),
	}
}

// Routes returns a chi router for release endpoints.
func (h *ReleaseHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Latest)
	return r
}

// Latest handles GET /api/latest-release. It always answers 200: on upstream
// failure the service substitutes the static fallback.
func (h *ReleaseHandler) Latest(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Latest(r.Context()))
}
