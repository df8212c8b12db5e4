package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"pushpulse/internal/services"
)

// HealthHandler reports service liveness and dataset state.
type HealthHandler struct {
	service *services.AnalysisService
	version string
	started time.Time
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(service *services.AnalysisService, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
		started: time.Now(),
	}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	return r
}

// GetHealth handles GET /api/health.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	datasetLoaded := true
	if _, err := h.service.Info(r.Context()); err != nil {
		datasetLoaded = false
	}

	render.JSON(w, r, map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"uptime":         time.Since(h.started).String(),
		"dataset_loaded": datasetLoaded,
	})
}
