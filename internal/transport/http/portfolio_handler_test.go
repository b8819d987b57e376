package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerardrbentley/fidelity-account-overview/internal/config"
	apierrors "github.com/gerardrbentley/fidelity-account-overview/internal/errors"
	"github.com/gerardrbentley/fidelity-account-overview/internal/services"
)

const sampleCSV = `Account Name,Symbol,Quantity,Last Price,Current Value,Total Gain/Loss Dollar,Total Gain/Loss Percent,Cost Basis Per Share,Type
Brokerage,AAPL,10,$150.00,"$1,500.00",$500.00,50.00%,$100.00,Stock
Roth IRA,VTI,5,$220.00,"$1,100.00",$50.00,4.76%,$210.00,ETF
`

func testPortfolioService(t *testing.T) *services.PortfolioService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewPortfolioService(config.PortfolioConfig{CacheEntries: 16}, nil, logger)
}

func newTestRouter(t *testing.T, svc *services.PortfolioService) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := apierrors.NewErrorHandler(logger, false)
	handler := NewPortfolioHandler(svc, 1<<20, logger, errorHandler)

	r := chi.NewRouter()
	r.Mount("/api", handler.Routes())
	return r
}

func loadSampleCSV(t *testing.T, svc *services.PortfolioService) {
	t.Helper()
	_, err := svc.LoadCSV(context.Background(), strings.NewReader(sampleCSV), "sample.csv")
	require.NoError(t, err)
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestUploadPortfolio(t *testing.T) {
	svc := testPortfolioService(t)
	router := newTestRouter(t, svc)

	body, contentType := multipartUpload(t, "file", "portfolio.csv", sampleCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "portfolio.csv", info["source"])
	assert.EqualValues(t, 2, info["clean_rows"])
}

func TestUploadRequiresFileField(t *testing.T) {
	router := newTestRouter(t, testPortfolioService(t))

	body, contentType := multipartUpload(t, "wrong", "portfolio.csv", sampleCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation")
}

func TestUploadBadDatasetReturns422(t *testing.T) {
	router := newTestRouter(t, testPortfolioService(t))

	badCSV := "Account Name,Symbol,Quantity,Last Price,Current Value,Cost Basis Per Share,Type\nBrokerage,AAPL,10,not-a-price,$1.00,$1.00,Stock\n"
	body, contentType := multipartUpload(t, "file", "bad.csv", badCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEndpointsReturn404WithoutPortfolio(t *testing.T) {
	router := newTestRouter(t, testPortfolioService(t))

	for _, path := range []string{"/api/portfolio", "/api/raw", "/api/holdings", "/api/accounts", "/api/symbols", "/api/selection", "/api/summary", "/api/export/csv", "/api/export/xlsx"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestGetHoldings(t *testing.T) {
	svc := testPortfolioService(t)
	loadSampleCSV(t, svc)
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Holdings []map[string]interface{} `json:"holdings"`
		Count    int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "AAPL", resp.Holdings[0]["symbol"])
}

func TestGetAccountsAndSymbols(t *testing.T) {
	svc := testPortfolioService(t)
	loadSampleCSV(t, svc)
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"accounts":["Brokerage","Roth IRA"]}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/symbols", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"symbols":["AAPL","VTI"]}`, rec.Body.String())
}

func TestPutSelection(t *testing.T) {
	svc := testPortfolioService(t)
	loadSampleCSV(t, svc)
	router := newTestRouter(t, svc)

	payload := `{"accounts":["Roth IRA"],"symbols":["VTI"]}`
	req := httptest.NewRequest(http.MethodPut, "/api/selection", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestPutSelectionValidatesBody(t *testing.T) {
	svc := testPortfolioService(t)
	loadSampleCSV(t, svc)
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPut, "/api/selection", strings.NewReader(`{"symbols":["VTI"]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSummary(t *testing.T) {
	svc := testPortfolioService(t)
	loadSampleCSV(t, svc)
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		Accounts []struct {
			AccountName  string  `json:"account_name"`
			CurrentValue float64 `json:"current_value"`
		} `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Len(t, summary.Accounts, 2)
	assert.Equal(t, "Brokerage", summary.Accounts[0].AccountName)
	assert.InDelta(t, 1500.0, summary.Accounts[0].CurrentValue, 0.001)
}

func TestExportCSV(t *testing.T) {
	svc := testPortfolioService(t)
	loadSampleCSV(t, svc)
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/export/csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "holdings.csv")
	assert.Contains(t, rec.Body.String(), "account_name")
	assert.Contains(t, rec.Body.String(), "AAPL")
}

func TestExportExcel(t *testing.T) {
	svc := testPortfolioService(t)
	loadSampleCSV(t, svc)
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/export/xlsx", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "holdings.xlsx")
	// xlsx is a zip archive
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}
