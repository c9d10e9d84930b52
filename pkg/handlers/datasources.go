package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/models"
	"github.com/gridreport/gridreport-engine/pkg/services"
)

// DataSourceHandler exposes the data source registry.
type DataSourceHandler struct {
	sources services.DataSourceService
	auth    Authorizer
	logger  *zap.Logger
}

// Authorizer guards mutating admin routes.
type Authorizer interface {
	Require(next http.Handler) http.Handler
}

// NewDataSourceHandler creates a new DataSourceHandler.
func NewDataSourceHandler(sources services.DataSourceService, auth Authorizer, logger *zap.Logger) *DataSourceHandler {
	return &DataSourceHandler{sources: sources, auth: auth, logger: logger}
}

// RegisterRoutes registers the data source routes on the given mux. Reads are
// open; mutations go through the authorizer.
func (h *DataSourceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/data-sources", h.List)
	mux.HandleFunc("GET /api/data-sources/{id}", h.Get)
	mux.HandleFunc("GET /api/data-sources/{id}/columns", h.Columns)
	mux.Handle("POST /api/data-sources", h.auth.Require(http.HandlerFunc(h.Create)))
	mux.Handle("PUT /api/data-sources/{id}", h.auth.Require(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/data-sources/{id}", h.auth.Require(http.HandlerFunc(h.Delete)))
}

// dataSourceSummary is the slim list-view shape.
type dataSourceSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	TableName   string    `json:"table_name"`
	ColumnCount int       `json:"column_count"`
	IsActive    bool      `json:"is_active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// List handles GET /api/data-sources with an optional ?is_active= filter.
func (h *DataSourceHandler) List(w http.ResponseWriter, r *http.Request) {
	var activeOnly *bool
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		switch raw {
		case "true":
			v := true
			activeOnly = &v
		case "false":
			v := false
			activeOnly = &v
		default:
			h.writeError(w, apperrors.ErrInvalidRequest)
			return
		}
	}

	sources, err := h.sources.List(r.Context(), activeOnly)
	if err != nil {
		h.writeError(w, err)
		return
	}

	summaries := make([]dataSourceSummary, 0, len(sources))
	for _, ds := range sources {
		summaries = append(summaries, dataSourceSummary{
			ID:          ds.ID,
			Name:        ds.Name,
			TableName:   ds.TableName,
			ColumnCount: len(ds.ColumnsMetadata),
			IsActive:    ds.IsActive,
			UpdatedAt:   ds.UpdatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

// dataSourceDetail is the full shape plus the live column set.
type dataSourceDetail struct {
	*models.DataSource
	Columns []string `json:"columns"`
}

// Get handles GET /api/data-sources/{id}. The detail view includes the live
// columns; an uninspectable table shows an empty list rather than an error.
func (h *DataSourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ds, err := h.sources.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	columns, err := h.sources.Columns(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, dataSourceDetail{DataSource: ds, Columns: columns})
}

// Columns handles GET /api/data-sources/{id}/columns.
func (h *DataSourceHandler) Columns(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	columns, err := h.sources.Columns(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"columns": columns})
}

// Create handles POST /api/data-sources.
func (h *DataSourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var ds models.DataSource
	if err := json.NewDecoder(r.Body).Decode(&ds); err != nil {
		h.writeError(w, apperrors.ErrInvalidRequest)
		return
	}

	if err := h.sources.Create(r.Context(), &ds); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, &ds)
}

// Update handles PUT /api/data-sources/{id}.
func (h *DataSourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var ds models.DataSource
	if err := json.NewDecoder(r.Body).Decode(&ds); err != nil {
		h.writeError(w, apperrors.ErrInvalidRequest)
		return
	}
	ds.ID = id

	if err := h.sources.Update(r.Context(), &ds); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, &ds)
}

// Delete handles DELETE /api/data-sources/{id}.
func (h *DataSourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.sources.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DataSourceHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *DataSourceHandler) writeError(w http.ResponseWriter, err error) {
	if werr := WriteError(w, err); werr != nil {
		h.logger.Error("failed to encode error response", zap.Error(werr))
	}
}

// pathID parses the {id} path segment as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, apperrors.ErrNotFound
	}
	return id, nil
}
