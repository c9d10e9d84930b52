package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/models"
	"github.com/gridreport/gridreport-engine/pkg/repositories"
	"github.com/gridreport/gridreport-engine/pkg/services"
)

// ReportHandler exposes the generated report history.
type ReportHandler struct {
	reports services.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// RegisterRoutes registers the report routes on the given mux.
func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/generated-reports", h.List)
	mux.HandleFunc("GET /api/generated-reports/by_date", h.ByDate)
}

// List handles GET /api/generated-reports with optional status, template_id,
// date_from, and date_to filters.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseReportFilter(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	reports, err := h.reports.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reports)
}

// ByDate handles GET /api/generated-reports/by_date?date=YYYY-MM-DD with an
// optional template_id filter. The date parameter is required.
func (h *ReportHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		h.writeError(w, fmt.Errorf("%w: date parameter is required", apperrors.ErrInvalidRequest))
		return
	}
	date, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: date must be YYYY-MM-DD", apperrors.ErrInvalidRequest))
		return
	}

	templateID, err := optionalUUID(r, "template_id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	reports, err := h.reports.ListByDate(r.Context(), date, templateID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reports)
}

func parseReportFilter(r *http.Request) (repositories.ReportFilter, error) {
	var filter repositories.ReportFilter

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.ReportStatus(raw)
		if !status.Valid() {
			return filter, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidRequest, raw)
		}
		filter.Status = status
	}

	templateID, err := optionalUUID(r, "template_id")
	if err != nil {
		return filter, err
	}
	filter.TemplateID = templateID

	if filter.DateFrom, err = optionalDate(r, "date_from"); err != nil {
		return filter, err
	}
	if filter.DateTo, err = optionalDate(r, "date_to"); err != nil {
		return filter, err
	}

	return filter, nil
}

func optionalUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a UUID", apperrors.ErrInvalidRequest, param)
	}
	return id, nil
}

func optionalDate(r *http.Request, param string) (*time.Time, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", apperrors.ErrInvalidRequest, param)
	}
	return &t, nil
}

func (h *ReportHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *ReportHandler) writeError(w http.ResponseWriter, err error) {
	if werr := WriteError(w, err); werr != nil {
		h.logger.Error("failed to encode error response", zap.Error(werr))
	}
}
