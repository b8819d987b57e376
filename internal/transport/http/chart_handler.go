package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/gerardrbentley/fidelity-account-overview/internal/errors"
	"github.com/gerardrbentley/fidelity-account-overview/internal/services"
)

// ChartHandler serves rendered chart pages.
type ChartHandler struct {
	service      *services.ChartService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(service *services.ChartService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes.
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{kind}", h.GetChart)
	return r
}

// GetChart handles GET /api/charts/{kind}. It responds with a standalone
// HTML page rendering the chart for the active selection.
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	chart, err := h.service.Build(r.Context(), kind)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChartUnknown):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("kind",
				"Chart kind must be one of bar, pie, sunburst, symbol-value, symbol-gain, symbol-gain-percent or symbol-pie"))
		case errors.Is(err, services.ErrNoPortfolio):
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError("portfolio"))
		default:
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.Render(w); err != nil {
		h.logger.ErrorContext(r.Context(), "chart render failed",
			slog.String("kind", kind),
			slog.String("error", err.Error()))
	}
}
