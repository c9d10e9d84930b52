package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus tracks the outcome of a scheduled report run.
type ReportStatus string

const (
	ReportPending ReportStatus = "pending"
	ReportSuccess ReportStatus = "success"
	ReportFailed  ReportStatus = "failed"
)

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportSuccess, ReportFailed:
		return true
	}
	return false
}

// GeneratedReport records one scheduled run of a template for a report date.
// (template_id, report_date) is unique; re-running a date updates the row.
type GeneratedReport struct {
	ID           uuid.UUID    `json:"id"`
	TemplateID   uuid.UUID    `json:"template_id"`
	ReportDate   time.Time    `json:"report_date"`
	GeneratedAt  time.Time    `json:"generated_at"`
	Status       ReportStatus `json:"status"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}
