// Package handlers exposes the HTTP API: data sources, the query endpoint,
// report templates, generated reports, and health.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
)

// errorBody is the wire shape of every error response. AvailableColumns is
// present only for column-membership failures.
type errorBody struct {
	Error            string   `json:"error"`
	AvailableColumns []string `json:"available_columns,omitempty"`
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteError maps err to its HTTP status and writes the error body.
func WriteError(w http.ResponseWriter, err error) error {
	body := errorBody{Error: err.Error()}

	var unknownCols *apperrors.UnknownColumnsError
	if errors.As(err, &unknownCols) {
		body.AvailableColumns = unknownCols.Available
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.HTTPStatus(err))
	return json.NewEncoder(w).Encode(body)
}
