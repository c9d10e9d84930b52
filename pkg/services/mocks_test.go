package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/models"
	"github.com/gridreport/gridreport-engine/pkg/reporting"
	"github.com/gridreport/gridreport-engine/pkg/repositories"
	"github.com/gridreport/gridreport-engine/pkg/sql"
)

// mockDataSourceRepo keys sources by table name for the query-path tests.
type mockDataSourceRepo struct {
	sources map[string]*models.DataSource
	byID    map[uuid.UUID]*models.DataSource

	createErr error
	updateErr error
}

func newMockDataSourceRepo(sources ...*models.DataSource) *mockDataSourceRepo {
	repo := &mockDataSourceRepo{
		sources: make(map[string]*models.DataSource),
		byID:    make(map[uuid.UUID]*models.DataSource),
	}
	for _, ds := range sources {
		repo.sources[ds.TableName] = ds
		repo.byID[ds.ID] = ds
	}
	return repo
}

func (m *mockDataSourceRepo) Create(ctx context.Context, ds *models.DataSource) error {
	if m.createErr != nil {
		return m.createErr
	}
	if ds.ID == uuid.Nil {
		ds.ID = uuid.New()
	}
	m.sources[ds.TableName] = ds
	m.byID[ds.ID] = ds
	return nil
}

func (m *mockDataSourceRepo) Get(ctx context.Context, id uuid.UUID) (*models.DataSource, error) {
	ds, ok := m.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return ds, nil
}

func (m *mockDataSourceRepo) GetActiveByTableName(ctx context.Context, tableName string) (*models.DataSource, error) {
	ds, ok := m.sources[tableName]
	if !ok || !ds.IsActive {
		return nil, apperrors.ErrNotFound
	}
	return ds, nil
}

func (m *mockDataSourceRepo) List(ctx context.Context, activeOnly *bool) ([]*models.DataSource, error) {
	var out []*models.DataSource
	for _, ds := range m.sources {
		if activeOnly == nil || ds.IsActive == *activeOnly {
			out = append(out, ds)
		}
	}
	return out, nil
}

func (m *mockDataSourceRepo) Update(ctx context.Context, ds *models.DataSource) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.byID[ds.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.sources[ds.TableName] = ds
	m.byID[ds.ID] = ds
	return nil
}

func (m *mockDataSourceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ds, ok := m.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(m.sources, ds.TableName)
	delete(m.byID, id)
	return nil
}

// mockBackend serves canned columns and records.
type mockBackend struct {
	columns    map[string][]string
	columnsErr error

	records []reporting.Record
	runErr  error
	lastRun *sql.ResolvedQuery
}

func (m *mockBackend) Columns(ctx context.Context, table string) ([]string, error) {
	if m.columnsErr != nil {
		return nil, m.columnsErr
	}
	cols, ok := m.columns[table]
	if !ok {
		return nil, apperrors.ErrSchemaUnavailable
	}
	return cols, nil
}

func (m *mockBackend) Run(ctx context.Context, query *sql.ResolvedQuery) ([]reporting.Record, error) {
	m.lastRun = query
	if m.runErr != nil {
		return nil, m.runErr
	}
	return m.records, nil
}

func (m *mockBackend) Close() error { return nil }

// mockTemplateRepo stores templates in memory.
type mockTemplateRepo struct {
	templates map[uuid.UUID]*models.ReportTemplate
	names     map[string]bool
}

func newMockTemplateRepo(templates ...*models.ReportTemplate) *mockTemplateRepo {
	repo := &mockTemplateRepo{
		templates: make(map[uuid.UUID]*models.ReportTemplate),
		names:     make(map[string]bool),
	}
	for _, tpl := range templates {
		repo.templates[tpl.ID] = tpl
		repo.names[tpl.Name] = true
	}
	return repo
}

func (m *mockTemplateRepo) Create(ctx context.Context, tpl *models.ReportTemplate) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	m.templates[tpl.ID] = tpl
	m.names[tpl.Name] = true
	return nil
}

func (m *mockTemplateRepo) Get(ctx context.Context, id uuid.UUID) (*models.ReportTemplate, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return tpl, nil
}

func (m *mockTemplateRepo) List(ctx context.Context) ([]*models.ReportTemplate, error) {
	var out []*models.ReportTemplate
	for _, tpl := range m.templates {
		out = append(out, tpl)
	}
	return out, nil
}

func (m *mockTemplateRepo) ListActive(ctx context.Context) ([]*models.ReportTemplate, error) {
	var out []*models.ReportTemplate
	for _, tpl := range m.templates {
		if tpl.IsActive {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (m *mockTemplateRepo) NameExists(ctx context.Context, name string) (bool, error) {
	return m.names[name], nil
}

func (m *mockTemplateRepo) Update(ctx context.Context, tpl *models.ReportTemplate) error {
	if _, ok := m.templates[tpl.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.templates[tpl.ID] = tpl
	return nil
}

func (m *mockTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.templates[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

// mockReportRepo records upserts.
type mockReportRepo struct {
	upserted []*models.GeneratedReport
}

func (m *mockReportRepo) Upsert(ctx context.Context, report *models.GeneratedReport) error {
	m.upserted = append(m.upserted, report)
	return nil
}

func (m *mockReportRepo) Get(ctx context.Context, id uuid.UUID) (*models.GeneratedReport, error) {
	return nil, apperrors.ErrNotFound
}

func (m *mockReportRepo) List(ctx context.Context, filter repositories.ReportFilter) ([]*models.GeneratedReport, error) {
	return m.upserted, nil
}

func (m *mockReportRepo) ListByDate(ctx context.Context, date time.Time, templateID uuid.UUID) ([]*models.GeneratedReport, error) {
	var out []*models.GeneratedReport
	for _, r := range m.upserted {
		if r.ReportDate.Equal(date) && (templateID == uuid.Nil || r.TemplateID == templateID) {
			out = append(out, r)
		}
	}
	return out, nil
}

var (
	_ repositories.DataSourceRepository      = (*mockDataSourceRepo)(nil)
	_ repositories.ReportTemplateRepository  = (*mockTemplateRepo)(nil)
	_ repositories.GeneratedReportRepository = (*mockReportRepo)(nil)
	_ reporting.Backend                      = (*mockBackend)(nil)
)
