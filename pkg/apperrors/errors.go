// Package apperrors defines the error taxonomy shared across the query path
// and the CRUD surface. Handlers translate these into HTTP status codes via
// HTTPStatus; services and repositories wrap them with context using %w.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrReservedWord      = errors.New("reserved SQL keyword")
	ErrUnknownTable      = errors.New("table not registered or inactive")
	ErrSchemaUnavailable = errors.New("schema introspection failed")
	ErrInvalidDateRange  = errors.New("start_date must not be after end_date")
	ErrMissingDateColumn = errors.New("date_column is required when filtering by date")
	ErrEmptySelectList   = errors.New("query selects no columns, buckets, or aggregations")
	ErrExecutionFailed   = errors.New("query execution failed")
)

// UnknownColumnsError reports request columns that are not present on the
// target table, along with the full live column set so callers can correct
// themselves.
type UnknownColumnsError struct {
	Columns   []string
	Available []string
}

func (e *UnknownColumnsError) Error() string {
	return fmt.Sprintf("unknown columns: %s", strings.Join(e.Columns, ", "))
}

// HTTPStatus maps an error from the query or CRUD path to an HTTP status code.
// Validation failures are 400, missing resources 404, everything touching the
// backing stores 500.
func HTTPStatus(err error) int {
	var unknownCols *UnknownColumnsError
	switch {
	case errors.As(err, &unknownCols),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidIdentifier),
		errors.Is(err, ErrReservedWord),
		errors.Is(err, ErrInvalidDateRange),
		errors.Is(err, ErrMissingDateColumn),
		errors.Is(err, ErrEmptySelectList):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownTable):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
