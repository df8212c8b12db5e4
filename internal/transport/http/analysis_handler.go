package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"pushpulse/internal/analysis"
	"pushpulse/internal/dataset"
	apierrors "pushpulse/internal/errors"
	"pushpulse/internal/exporter"
	"pushpulse/internal/services"
)

// AnalysisHandler exposes the dataset and comparison endpoints consumed
// by the dashboard.
type AnalysisHandler struct {
	service        *services.AnalysisService
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validate       *validator.Validate
	maxUploadBytes int64
}

// NewAnalysisHandler creates the analysis handler.
func NewAnalysisHandler(service *services.AnalysisService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "analysis_handler")),
		errorHandler:   errorHandler,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the analysis routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/dataset", h.UploadDataset)
	r.Get("/dataset", h.GetDataset)
	r.Get("/summary", h.GetSummary)
	r.Get("/comparison", h.GetComparison)
	r.Get("/comparison/export", h.ExportComparison)

	return r
}

// UploadDataset handles POST /api/dataset: a multipart report upload
// that replaces the shared dataset.
func (h *AnalysisHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Report file is required"))
		return
	}
	defer file.Close()

	if err := h.service.LoadFromReader(r.Context(), file, header.Filename); err != nil {
		h.errorHandler.HandleError(w, r, loadErrorToAPI(err))
		return
	}

	info, err := h.service.Info(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, info)
}

// GetDataset handles GET /api/dataset.
func (h *AnalysisHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceErrorToAPI(err))
		return
	}
	render.JSON(w, r, info)
}

// GetSummary handles GET /api/summary: overview mean open rates per
// selected platform over the filtered rows.
func (h *AnalysisHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	platforms, err := parsePlatforms(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("platforms", err.Error()))
		return
	}

	summaries, err := h.service.Summaries(r.Context(), parseFilter(r.URL.Query()), platforms)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceErrorToAPI(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{"summaries": summaries})
}

// GetComparison handles GET /api/comparison.
func (h *AnalysisHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	req, apiErr := h.parseComparisonRequest(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	report, err := h.service.Compare(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceErrorToAPI(err))
		return
	}
	render.JSON(w, r, report)
}

// ExportComparison handles GET /api/comparison/export: the comparison
// table as a downloadable CSV with raw values.
func (h *AnalysisHandler) ExportComparison(w http.ResponseWriter, r *http.Request) {
	req, apiErr := h.parseComparisonRequest(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	report, err := h.service.Compare(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceErrorToAPI(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="variant_comparison.csv"`)
	if err := exporter.WriteComparison(w, report); err != nil {
		h.logger.ErrorContext(r.Context(), "comparison export failed", slog.String("error", err.Error()))
	}
}

func (h *AnalysisHandler) parseComparisonRequest(r *http.Request) (analysis.Request, *apierrors.APIError) {
	q := r.URL.Query()

	req := analysis.Request{
		Filter: parseFilter(q),
	}
	for _, raw := range queryList(q, "group_by") {
		req.GroupBy = append(req.GroupBy, analysis.GroupColumn(raw))
	}

	platforms, err := parsePlatforms(q)
	if err != nil {
		return analysis.Request{}, apierrors.ErrValidation("platforms", err.Error())
	}
	req.Platforms = platforms

	if err := h.validate.Struct(req); err != nil {
		return analysis.Request{}, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"VALIDATION_FAILED",
			"Invalid comparison parameters",
			err.Error(),
		)
	}
	return req, nil
}

// parseFilter reads the day/entity/slot selections. An absent key means
// "all observed values"; a present key with only empty values is an
// explicit empty selection.
func parseFilter(q url.Values) analysis.Filter {
	return analysis.Filter{
		Days:     querySelection(q, "days"),
		Entities: querySelection(q, "entities"),
		Slots:    querySelection(q, "slots"),
	}
}

func querySelection(q url.Values, key string) []string {
	raw, ok := q[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func queryList(q url.Values, key string) []string {
	out := make([]string, 0, len(q[key]))
	for _, v := range q[key] {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parsePlatforms(q url.Values) ([]dataset.Platform, error) {
	raw := queryList(q, "platforms")
	platforms := make([]dataset.Platform, 0, len(raw))
	for _, v := range raw {
		p := dataset.Platform(v)
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown platform %q", v)
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}

func serviceErrorToAPI(err error) error {
	switch {
	case errors.Is(err, services.ErrNoDataset):
		return apierrors.ErrDatasetNotFound
	case errors.Is(err, services.ErrUnknownPlatform):
		return apierrors.ErrValidation("platforms", err.Error())
	case errors.Is(err, services.ErrUnknownGroupColumn):
		return apierrors.ErrValidation("group_by", err.Error())
	}
	return err
}

func loadErrorToAPI(err error) error {
	var missing *dataset.MissingColumnError
	if errors.As(err, &missing) {
		return apierrors.MissingColumnAPIError(missing.Column)
	}
	if errors.Is(err, services.ErrEmptyUpload) {
		return apierrors.ErrValidation("file", "Report contains no data rows")
	}
	return apierrors.ReportParseError(err)
}
