package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/models"
	"github.com/gridreport/gridreport-engine/pkg/services"
)

// QueryHandler serves the ad-hoc data query endpoint.
type QueryHandler struct {
	queries services.QueryService
	logger  *zap.Logger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(queries services.QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{queries: queries, logger: logger}
}

// RegisterRoutes registers the query route on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/data-sources/query", h.Query)
}

// Query handles POST /api/data-sources/query.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.ErrInvalidRequest)
		return
	}

	result, err := h.queries.Execute(r.Context(), &req)
	if err != nil {
		h.logger.Info("query rejected",
			zap.String("table", req.TableName),
			zap.Error(err))
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("failed to encode query response", zap.Error(err))
	}
}

func (h *QueryHandler) writeError(w http.ResponseWriter, err error) {
	if werr := WriteError(w, err); werr != nil {
		h.logger.Error("failed to encode error response", zap.Error(werr))
	}
}
