package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/models"
)

func reportMux(svc *mockReportService) *http.ServeMux {
	mux := http.NewServeMux()
	NewReportHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestListReports_FilterParsing(t *testing.T) {
	svc := &mockReportService{}
	templateID := uuid.New()

	url := "/api/generated-reports?status=failed&template_id=" + templateID.String() +
		"&date_from=2024-01-01&date_to=2024-01-31"
	rec := httptest.NewRecorder()
	reportMux(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ReportFailed, svc.filter.Status)
	assert.Equal(t, templateID, svc.filter.TemplateID)
	require.NotNil(t, svc.filter.DateFrom)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *svc.filter.DateFrom)
	require.NotNil(t, svc.filter.DateTo)
}

func TestListReports_BadStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	reportMux(&mockReportService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generated-reports?status=done", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestByDate_RequiresDate(t *testing.T) {
	rec := httptest.NewRecorder()
	reportMux(&mockReportService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generated-reports/by_date", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "date parameter is required")
}

func TestByDate_RejectsBadDate(t *testing.T) {
	rec := httptest.NewRecorder()
	reportMux(&mockReportService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generated-reports/by_date?date=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestByDate_ParsesDate(t *testing.T) {
	svc := &mockReportService{reports: []*models.GeneratedReport{
		{ID: uuid.New(), TemplateID: uuid.New(), Status: models.ReportSuccess},
	}}

	rec := httptest.NewRecorder()
	reportMux(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generated-reports/by_date?date=2024-03-01", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), svc.byDate)
}
