package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/gerardrbentley/fidelity-account-overview/internal/errors"
	"github.com/gerardrbentley/fidelity-account-overview/internal/exporter"
	"github.com/gerardrbentley/fidelity-account-overview/internal/holdings"
	"github.com/gerardrbentley/fidelity-account-overview/internal/services"
	"github.com/gerardrbentley/fidelity-account-overview/pkg/contracts/domain"
)

// PortfolioHandler handles portfolio HTTP requests with RFC 7807 errors.
type PortfolioHandler struct {
	service        *services.PortfolioService
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validate       *validator.Validate
	maxUploadBytes int64
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(service *services.PortfolioService, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PortfolioHandler {
	return &PortfolioHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "portfolio_handler")),
		errorHandler:   errorHandler,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the portfolio routes.
func (h *PortfolioHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/portfolio", h.Upload)
	r.Get("/portfolio", h.Info)
	r.Get("/raw", h.Raw)
	r.Get("/holdings", h.Holdings)
	r.Get("/accounts", h.Accounts)
	r.Get("/symbols", h.Symbols)
	r.Get("/selection", h.GetSelection)
	r.Put("/selection", h.PutSelection)
	r.Get("/summary", h.Summary)
	r.Get("/export/csv", h.ExportCSV)
	r.Get("/export/xlsx", h.ExportExcel)

	return r
}

// selectionRequest is the PUT /api/selection body.
type selectionRequest struct {
	Accounts []string `json:"accounts" validate:"required"`
	Symbols  []string `json:"symbols" validate:"required"`
}

// datasetResponse renders a dataset as column names plus string records.
type datasetResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func newDatasetResponse(ds *holdings.Dataset) datasetResponse {
	return datasetResponse{Columns: ds.Columns, Rows: ds.Records()}
}

// Upload handles POST /api/portfolio. The portfolio CSV comes as the
// "file" field of a multipart form.
func (h *PortfolioHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				fmt.Sprintf("Upload exceeds the %d byte limit", h.maxUploadBytes)))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A CSV file upload is required"))
		return
	}
	defer file.Close()

	info, err := h.service.LoadCSV(r.Context(), file, header.Filename)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, info)
}

// Info handles GET /api/portfolio.
func (h *PortfolioHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// Raw handles GET /api/raw. It returns the dataset as uploaded, before
// cleaning.
func (h *PortfolioHandler) Raw(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Raw(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, newDatasetResponse(ds))
}

// Holdings handles GET /api/holdings. It returns the cleaned holdings of
// the active selection as typed records.
func (h *PortfolioHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Filtered(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	records, err := domain.HoldingsFromDataset(ds)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"holdings": records,
		"count":    len(records),
	})
}

// Accounts handles GET /api/accounts.
func (h *PortfolioHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.Accounts(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"accounts": accounts})
}

// Symbols handles GET /api/symbols.
func (h *PortfolioHandler) Symbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.service.Symbols(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"symbols": symbols})
}

// GetSelection handles GET /api/selection.
func (h *PortfolioHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := h.service.Selection(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, sel)
}

// PutSelection handles PUT /api/selection.
func (h *PortfolioHandler) PutSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, validationProblem(err))
		return
	}

	sel := holdings.Selection{Accounts: req.Accounts, Symbols: req.Symbols}
	if err := h.service.UpdateSelection(r.Context(), sel); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, sel)
}

// Summary handles GET /api/summary.
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Summary(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	summary, err := domain.SummaryFromDataset(ds)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// ExportCSV handles GET /api/export/csv. It streams the active selection
// as a CSV download.
func (h *PortfolioHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Filtered(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="holdings.csv"`)
	if err := exporter.WriteCSV(w, ds, exporter.CSVOptions{BOMPrefix: true}); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("error", err.Error()))
	}
}

// ExportExcel handles GET /api/export/xlsx. The workbook carries the
// filtered holdings plus the per-account summary.
func (h *PortfolioHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	filtered, err := h.service.Filtered(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="holdings.xlsx"`)
	if err := exporter.WriteExcel(w, filtered, summary); err != nil {
		h.logger.ErrorContext(r.Context(), "excel export failed",
			slog.String("error", err.Error()))
	}
}

// handleServiceError maps service errors onto problem responses.
func (h *PortfolioHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoPortfolio):
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("portfolio"))
	case errors.Is(err, services.ErrEmptyUpload):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Uploaded file is empty"))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// validationProblem converts validator.ValidationErrors into an API error.
func validationProblem(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.InvalidRequestWithError(err)
	}
	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
		})
	}
	return apierrors.NewValidationErrors(fields)
}
