package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/gerardrbentley/fidelity-account-overview/internal/errors"
	"github.com/gerardrbentley/fidelity-account-overview/internal/services"
)

func newChartRouter(t *testing.T, svc *services.PortfolioService) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := apierrors.NewErrorHandler(logger, false)
	handler := NewChartHandler(services.NewChartService(svc, logger), logger, errorHandler)

	r := chi.NewRouter()
	r.Mount("/api/charts", handler.Routes())
	return r
}

func TestGetChartRendersHTML(t *testing.T) {
	svc := testPortfolioService(t)
	loadSampleCSV(t, svc)
	router := newChartRouter(t, svc)

	kinds := []string{"bar", "pie", "sunburst", "symbol-value", "symbol-gain", "symbol-gain-percent", "symbol-pie"}
	for _, kind := range kinds {
		req := httptest.NewRequest(http.MethodGet, "/api/charts/"+kind, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, kind)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "echarts")
	}
}

func TestGetChartUnknownKind(t *testing.T) {
	svc := testPortfolioService(t)
	loadSampleCSV(t, svc)
	router := newChartRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/charts/histogram", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetChartWithoutPortfolio(t *testing.T) {
	router := newChartRouter(t, testPortfolioService(t))

	req := httptest.NewRequest(http.MethodGet, "/api/charts/bar", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
