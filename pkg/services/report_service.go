package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/models"
	"github.com/gridreport/gridreport-engine/pkg/repositories"
)

// ReportService exposes generated report history and drives scheduled runs.
type ReportService interface {
	List(ctx context.Context, filter repositories.ReportFilter) ([]*models.GeneratedReport, error)
	ListByDate(ctx context.Context, date time.Time, templateID uuid.UUID) ([]*models.GeneratedReport, error)

	// GenerateForDate runs every chart query of every active template and
	// records one report row per template. A failing template is recorded
	// as failed and does not stop the remaining templates.
	GenerateForDate(ctx context.Context, date time.Time) error
}

type reportService struct {
	reports   repositories.GeneratedReportRepository
	templates repositories.ReportTemplateRepository
	queries   QueryService
	logger    *zap.Logger
}

// NewReportService creates a new report service.
func NewReportService(reports repositories.GeneratedReportRepository, templates repositories.ReportTemplateRepository, queries QueryService, logger *zap.Logger) ReportService {
	return &reportService{reports: reports, templates: templates, queries: queries, logger: logger}
}

func (s *reportService) List(ctx context.Context, filter repositories.ReportFilter) ([]*models.GeneratedReport, error) {
	return s.reports.List(ctx, filter)
}

func (s *reportService) ListByDate(ctx context.Context, date time.Time, templateID uuid.UUID) ([]*models.GeneratedReport, error) {
	return s.reports.ListByDate(ctx, date, templateID)
}

func (s *reportService) GenerateForDate(ctx context.Context, date time.Time) error {
	templates, err := s.templates.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active templates: %w", err)
	}

	s.logger.Info("generating reports",
		zap.Time("report_date", date),
		zap.Int("templates", len(templates)))

	for _, tpl := range templates {
		record := &models.GeneratedReport{
			TemplateID: tpl.ID,
			ReportDate: date,
			Status:     models.ReportSuccess,
		}

		if err := s.runTemplate(ctx, tpl); err != nil {
			msg := err.Error()
			record.Status = models.ReportFailed
			record.ErrorMessage = &msg
			s.logger.Warn("template generation failed",
				zap.String("template_id", tpl.ID.String()),
				zap.Error(err))
		}

		if err := s.reports.Upsert(ctx, record); err != nil {
			return fmt.Errorf("failed to record report for template %s: %w", tpl.ID, err)
		}
	}

	return nil
}

// runTemplate executes every chart query of the template. The first failing
// chart fails the whole template run.
func (s *reportService) runTemplate(ctx context.Context, tpl *models.ReportTemplate) error {
	for _, chart := range tpl.Charts {
		query := chart.Query
		if _, err := s.queries.Execute(ctx, &query); err != nil {
			return fmt.Errorf("chart %q: %w", chart.ID, err)
		}
	}
	return nil
}

var _ ReportService = (*reportService)(nil)
