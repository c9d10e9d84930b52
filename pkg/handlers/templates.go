package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/models"
	"github.com/gridreport/gridreport-engine/pkg/services"
)

// TemplateHandler exposes report template CRUD and actions.
type TemplateHandler struct {
	templates services.TemplateService
	auth      Authorizer
	logger    *zap.Logger
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templates services.TemplateService, auth Authorizer, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, auth: auth, logger: logger}
}

// RegisterRoutes registers the template routes on the given mux.
func (h *TemplateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/report-templates", h.List)
	mux.HandleFunc("GET /api/report-templates/active", h.ListActive)
	mux.HandleFunc("GET /api/report-templates/{id}", h.Get)
	mux.Handle("POST /api/report-templates", h.auth.Require(http.HandlerFunc(h.Create)))
	mux.Handle("POST /api/report-templates/{id}/duplicate", h.auth.Require(http.HandlerFunc(h.Duplicate)))
	mux.Handle("PUT /api/report-templates/{id}", h.auth.Require(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/report-templates/{id}", h.auth.Require(http.HandlerFunc(h.Delete)))
}

// List handles GET /api/report-templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, templates)
}

// ListActive handles GET /api/report-templates/active.
func (h *TemplateHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.ListActive(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, templates)
}

// Get handles GET /api/report-templates/{id}.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	tpl, err := h.templates.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tpl)
}

// Create handles POST /api/report-templates.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var tpl models.ReportTemplate
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		h.writeError(w, apperrors.ErrInvalidRequest)
		return
	}

	if err := h.templates.Create(r.Context(), &tpl); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, &tpl)
}

// Duplicate handles POST /api/report-templates/{id}/duplicate. The optional
// body may carry {"name": "..."} to name the copy.
func (h *TemplateHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	// An empty body means "use the default copy name".
	_ = json.NewDecoder(r.Body).Decode(&body)

	copy, err := h.templates.Duplicate(r.Context(), id, body.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, copy)
}

// Update handles PUT /api/report-templates/{id}.
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var tpl models.ReportTemplate
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		h.writeError(w, apperrors.ErrInvalidRequest)
		return
	}
	tpl.ID = id

	if err := h.templates.Update(r.Context(), &tpl); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, &tpl)
}

// Delete handles DELETE /api/report-templates/{id}.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.templates.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *TemplateHandler) writeError(w http.ResponseWriter, err error) {
	if werr := WriteError(w, err); werr != nil {
		h.logger.Error("failed to encode error response", zap.Error(werr))
	}
}
