package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/database"
	"github.com/gridreport/gridreport-engine/pkg/models"
)

// ReportFilter narrows a generated report listing. Zero values mean "no
// filter" for that dimension.
type ReportFilter struct {
	TemplateID uuid.UUID
	Status     models.ReportStatus
	DateFrom   *time.Time
	DateTo     *time.Time
}

// GeneratedReportRepository defines data access for generated report records.
type GeneratedReportRepository interface {
	Upsert(ctx context.Context, report *models.GeneratedReport) error
	Get(ctx context.Context, id uuid.UUID) (*models.GeneratedReport, error)
	List(ctx context.Context, filter ReportFilter) ([]*models.GeneratedReport, error)
	ListByDate(ctx context.Context, date time.Time, templateID uuid.UUID) ([]*models.GeneratedReport, error)
}

type generatedReportRepository struct {
	db *database.DB
}

// NewGeneratedReportRepository creates a new generated report repository.
func NewGeneratedReportRepository(db *database.DB) GeneratedReportRepository {
	return &generatedReportRepository{db: db}
}

const reportColumns = `id, template_id, report_date, generated_at, status, error_message`

// Upsert inserts a run record, replacing any earlier run of the same template
// and report date. Re-running a date must not leave duplicate rows.
func (r *generatedReportRepository) Upsert(ctx context.Context, report *models.GeneratedReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}

	query := `
		INSERT INTO generated_reports (id, template_id, report_date, generated_at, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (template_id, report_date) DO UPDATE
		SET generated_at = EXCLUDED.generated_at,
		    status = EXCLUDED.status,
		    error_message = EXCLUDED.error_message`

	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.TemplateID,
		report.ReportDate,
		report.GeneratedAt,
		report.Status,
		report.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert generated report: %w", err)
	}

	return nil
}

func (r *generatedReportRepository) Get(ctx context.Context, id uuid.UUID) (*models.GeneratedReport, error) {
	query := `SELECT ` + reportColumns + ` FROM generated_reports WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *generatedReportRepository) List(ctx context.Context, filter ReportFilter) ([]*models.GeneratedReport, error) {
	query := `SELECT ` + reportColumns + ` FROM generated_reports`
	var clauses []string
	var args []any

	addClause := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.TemplateID != uuid.Nil {
		addClause("template_id = $%d", filter.TemplateID)
	}
	if filter.Status != "" {
		addClause("status = $%d", filter.Status)
	}
	if filter.DateFrom != nil {
		addClause("report_date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addClause("report_date <= $%d", *filter.DateTo)
	}

	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY report_date DESC, generated_at DESC"

	return r.list(ctx, query, args...)
}

// ListByDate returns the runs recorded for one report date, optionally
// narrowed to a single template.
func (r *generatedReportRepository) ListByDate(ctx context.Context, date time.Time, templateID uuid.UUID) ([]*models.GeneratedReport, error) {
	query := `SELECT ` + reportColumns + ` FROM generated_reports WHERE report_date = $1`
	args := []any{date}
	if templateID != uuid.Nil {
		query += ` AND template_id = $2`
		args = append(args, templateID)
	}
	query += ` ORDER BY generated_at DESC`

	return r.list(ctx, query, args...)
}

func (r *generatedReportRepository) list(ctx context.Context, query string, args ...any) ([]*models.GeneratedReport, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list generated reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.GeneratedReport
	for rows.Next() {
		report, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generated reports: %w", err)
	}

	return reports, nil
}

func (r *generatedReportRepository) scanOne(row pgx.Row) (*models.GeneratedReport, error) {
	var report models.GeneratedReport
	err := row.Scan(
		&report.ID,
		&report.TemplateID,
		&report.ReportDate,
		&report.GeneratedAt,
		&report.Status,
		&report.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan generated report: %w", err)
	}
	return &report, nil
}

var _ GeneratedReportRepository = (*generatedReportRepository)(nil)
