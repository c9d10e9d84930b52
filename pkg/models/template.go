package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
)

// ChartType enumerates supported chart renderings.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
	ChartArea ChartType = "area"
)

// Valid reports whether t is a supported chart type.
func (t ChartType) Valid() bool {
	switch t {
	case ChartBar, ChartLine, ChartPie, ChartArea:
		return true
	}
	return false
}

// LayoutItem positions one chart on the dashboard grid.
type LayoutItem struct {
	I string `json:"i"`
	X int    `json:"x"`
	Y int    `json:"y"`
	W int    `json:"w"`
	H int    `json:"h"`
}

// ChartConfig binds one chart to the query that feeds it.
type ChartConfig struct {
	ID    string         `json:"id"`
	Type  ChartType      `json:"type"`
	Title string         `json:"title"`
	Query QueryRequest   `json:"query"`
	Style map[string]any `json:"style,omitempty"`
}

// ReportTemplate is a saved dashboard: a grid layout plus the charts (and
// their queries) that populate it.
type ReportTemplate struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Layout      []LayoutItem  `json:"layout"`
	Charts      []ChartConfig `json:"charts"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Validate checks the template before it is persisted. Chart queries are only
// shape-checked here; registry membership is enforced when they actually run.
func (t *ReportTemplate) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrInvalidRequest)
	}
	for _, chart := range t.Charts {
		if !chart.Type.Valid() {
			return fmt.Errorf("%w: unsupported chart type %q", apperrors.ErrInvalidRequest, chart.Type)
		}
		if chart.Query.TableName == "" {
			return fmt.Errorf("%w: chart %q has no table_name", apperrors.ErrInvalidRequest, chart.ID)
		}
	}
	return nil
}
