package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/sql"
)

// DateLayout is the wire format for date bounds.
const DateLayout = "2006-01-02"

// DefaultDateColumn is assumed when a request does not name one.
const DefaultDateColumn = "date"

// Aggregation is one requested aggregate in a query.
type Aggregation struct {
	Column   string `json:"column"`
	Function string `json:"function"`
	Alias    string `json:"alias,omitempty"`
}

// QueryRequest is the body of POST /api/data-sources/query. It lives for a
// single request; Normalize and Validate prepare it for the query service.
type QueryRequest struct {
	TableName     string        `json:"table_name"`
	Columns       []string      `json:"columns"`
	StartDate     string        `json:"start_date,omitempty"`
	EndDate       string        `json:"end_date,omitempty"`
	DateColumn    string        `json:"date_column,omitempty"`
	Limit         *int          `json:"limit,omitempty"`
	GroupByPeriod string        `json:"group_by_period,omitempty"`
	Aggregations  []Aggregation `json:"aggregations,omitempty"`
}

// Normalize applies request defaults: the date column name, the configured
// default limit, and canonical case for enum-valued fields.
func (r *QueryRequest) Normalize(defaultLimit int) {
	if r.DateColumn == "" {
		r.DateColumn = DefaultDateColumn
	}
	if r.Limit == nil {
		r.Limit = &defaultLimit
	}
	r.GroupByPeriod = strings.ToLower(strings.TrimSpace(r.GroupByPeriod))
	for i := range r.Aggregations {
		r.Aggregations[i].Function = strings.ToUpper(strings.TrimSpace(r.Aggregations[i].Function))
	}
}

// Validate performs request-shape validation: the libinjection screen, the
// identifier whitelist on every name the request carries, enum membership
// for period and aggregation functions, date parseability, and limit bounds.
// Registry membership and date-range ordering are the query service's job.
func (r *QueryRequest) Validate(maxLimit int) error {
	screened := map[string]string{
		"table_name":  r.TableName,
		"date_column": r.DateColumn,
		"start_date":  r.StartDate,
		"end_date":    r.EndDate,
	}
	for i, col := range r.Columns {
		screened[fmt.Sprintf("columns[%d]", i)] = col
	}
	for i, agg := range r.Aggregations {
		screened[fmt.Sprintf("aggregations[%d].column", i)] = agg.Column
		screened[fmt.Sprintf("aggregations[%d].alias", i)] = agg.Alias
	}
	if finding := sql.ScreenValues(screened); finding != nil {
		return fmt.Errorf("%w: %s rejected by injection screen", apperrors.ErrInvalidRequest, finding.Field)
	}

	if err := sql.ValidateIdentifier(r.TableName); err != nil {
		return fmt.Errorf("table_name: %w", err)
	}
	for _, col := range r.Columns {
		if err := sql.ValidateIdentifier(col); err != nil {
			return fmt.Errorf("columns: %w", err)
		}
	}
	if r.DateColumn != "" {
		if err := sql.ValidateIdentifier(r.DateColumn); err != nil {
			return fmt.Errorf("date_column: %w", err)
		}
	}
	for _, agg := range r.Aggregations {
		if err := sql.ValidateIdentifier(agg.Column); err != nil {
			return fmt.Errorf("aggregations: %w", err)
		}
		if agg.Alias != "" {
			if err := sql.ValidateIdentifier(agg.Alias); err != nil {
				return fmt.Errorf("aggregations: %w", err)
			}
		}
		if !sql.AggregateFunc(agg.Function).Valid() {
			return fmt.Errorf("%w: unsupported aggregation function %q", apperrors.ErrInvalidRequest, agg.Function)
		}
	}

	if r.GroupByPeriod != "" && !sql.GroupPeriod(r.GroupByPeriod).Valid() {
		return fmt.Errorf("%w: unsupported group_by_period %q", apperrors.ErrInvalidRequest, r.GroupByPeriod)
	}

	if _, err := r.StartTime(); err != nil {
		return err
	}
	if _, err := r.EndTime(); err != nil {
		return err
	}

	if r.Limit == nil || *r.Limit < 1 || *r.Limit > maxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", apperrors.ErrInvalidRequest, maxLimit)
	}
	return nil
}

// StartTime parses the optional start bound.
func (r *QueryRequest) StartTime() (*time.Time, error) {
	return parseDate("start_date", r.StartDate)
}

// EndTime parses the optional end bound.
func (r *QueryRequest) EndTime() (*time.Time, error) {
	return parseDate("end_date", r.EndDate)
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", apperrors.ErrInvalidRequest, field)
	}
	return &t, nil
}
