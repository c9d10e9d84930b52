package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/database"
	"github.com/gridreport/gridreport-engine/pkg/models"
)

// ReportTemplateRepository defines data access for report templates.
type ReportTemplateRepository interface {
	Create(ctx context.Context, tpl *models.ReportTemplate) error
	Get(ctx context.Context, id uuid.UUID) (*models.ReportTemplate, error)
	List(ctx context.Context) ([]*models.ReportTemplate, error)
	ListActive(ctx context.Context) ([]*models.ReportTemplate, error)
	NameExists(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, tpl *models.ReportTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type reportTemplateRepository struct {
	db *database.DB
}

// NewReportTemplateRepository creates a new report template repository.
func NewReportTemplateRepository(db *database.DB) ReportTemplateRepository {
	return &reportTemplateRepository{db: db}
}

const templateColumns = `id, name, description, layout, charts, is_active, created_at, updated_at`

func (r *reportTemplateRepository) Create(ctx context.Context, tpl *models.ReportTemplate) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	now := time.Now()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	layout, charts, err := marshalTemplateJSON(tpl)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO report_templates (id, name, description, layout, charts, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		tpl.ID,
		tpl.Name,
		tpl.Description,
		layout,
		charts,
		tpl.IsActive,
		tpl.CreatedAt,
		tpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report template: %w", err)
	}

	return nil
}

func (r *reportTemplateRepository) Get(ctx context.Context, id uuid.UUID) (*models.ReportTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM report_templates WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *reportTemplateRepository) List(ctx context.Context) ([]*models.ReportTemplate, error) {
	return r.list(ctx, `SELECT `+templateColumns+` FROM report_templates ORDER BY created_at DESC`)
}

// ListActive returns the templates the scheduler generates reports for.
func (r *reportTemplateRepository) ListActive(ctx context.Context) ([]*models.ReportTemplate, error) {
	return r.list(ctx, `SELECT `+templateColumns+` FROM report_templates WHERE is_active = true ORDER BY created_at DESC`)
}

func (r *reportTemplateRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM report_templates WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check template name: %w", err)
	}
	return exists, nil
}

func (r *reportTemplateRepository) Update(ctx context.Context, tpl *models.ReportTemplate) error {
	tpl.UpdatedAt = time.Now()

	layout, charts, err := marshalTemplateJSON(tpl)
	if err != nil {
		return err
	}

	query := `
		UPDATE report_templates
		SET name = $2, description = $3, layout = $4, charts = $5, is_active = $6, updated_at = $7
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		tpl.ID,
		tpl.Name,
		tpl.Description,
		layout,
		charts,
		tpl.IsActive,
		tpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update report template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *reportTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM report_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *reportTemplateRepository) list(ctx context.Context, query string) ([]*models.ReportTemplate, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list report templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.ReportTemplate
	for rows.Next() {
		tpl, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate report templates: %w", err)
	}

	return templates, nil
}

func (r *reportTemplateRepository) scanOne(row pgx.Row) (*models.ReportTemplate, error) {
	var tpl models.ReportTemplate
	var layout, charts []byte

	err := row.Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.Description,
		&layout,
		&charts,
		&tpl.IsActive,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan report template: %w", err)
	}

	if len(layout) > 0 {
		if err := json.Unmarshal(layout, &tpl.Layout); err != nil {
			return nil, fmt.Errorf("failed to unmarshal layout: %w", err)
		}
	}
	if len(charts) > 0 {
		if err := json.Unmarshal(charts, &tpl.Charts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal charts: %w", err)
		}
	}

	return &tpl, nil
}

func marshalTemplateJSON(tpl *models.ReportTemplate) (layout, charts []byte, err error) {
	layout, err = json.Marshal(tpl.Layout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal layout: %w", err)
	}
	charts, err = json.Marshal(tpl.Charts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal charts: %w", err)
	}
	return layout, charts, nil
}

var _ ReportTemplateRepository = (*reportTemplateRepository)(nil)
