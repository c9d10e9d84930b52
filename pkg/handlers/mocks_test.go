package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/models"
	"github.com/gridreport/gridreport-engine/pkg/repositories"
	"github.com/gridreport/gridreport-engine/pkg/services"
)

// passthroughAuth disables auth in handler tests.
type passthroughAuth struct{}

func (passthroughAuth) Require(next http.Handler) http.Handler { return next }

type mockQueryService struct {
	result *services.QueryResult
	err    error
	got    *models.QueryRequest
}

func (m *mockQueryService) Execute(ctx context.Context, req *models.QueryRequest) (*services.QueryResult, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockDataSourceService struct {
	sources map[uuid.UUID]*models.DataSource
	columns []string

	createErr  error
	columnsErr error
}

func newMockDataSourceService(sources ...*models.DataSource) *mockDataSourceService {
	svc := &mockDataSourceService{sources: make(map[uuid.UUID]*models.DataSource)}
	for _, ds := range sources {
		svc.sources[ds.ID] = ds
	}
	return svc
}

func (m *mockDataSourceService) Create(ctx context.Context, ds *models.DataSource) error {
	if m.createErr != nil {
		return m.createErr
	}
	if err := ds.Validate(); err != nil {
		return err
	}
	ds.ID = uuid.New()
	m.sources[ds.ID] = ds
	return nil
}

func (m *mockDataSourceService) Get(ctx context.Context, id uuid.UUID) (*models.DataSource, error) {
	ds, ok := m.sources[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return ds, nil
}

func (m *mockDataSourceService) List(ctx context.Context, activeOnly *bool) ([]*models.DataSource, error) {
	var out []*models.DataSource
	for _, ds := range m.sources {
		if activeOnly == nil || ds.IsActive == *activeOnly {
			out = append(out, ds)
		}
	}
	return out, nil
}

func (m *mockDataSourceService) Update(ctx context.Context, ds *models.DataSource) error {
	if _, ok := m.sources[ds.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.sources[ds.ID] = ds
	return nil
}

func (m *mockDataSourceService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.sources[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.sources, id)
	return nil
}

func (m *mockDataSourceService) Columns(ctx context.Context, id uuid.UUID) ([]string, error) {
	if _, ok := m.sources[id]; !ok {
		return nil, apperrors.ErrNotFound
	}
	if m.columnsErr != nil {
		return nil, m.columnsErr
	}
	return m.columns, nil
}

type mockTemplateService struct {
	templates map[uuid.UUID]*models.ReportTemplate
	duplicate *models.ReportTemplate
	err       error
}

func newMockTemplateService(templates ...*models.ReportTemplate) *mockTemplateService {
	svc := &mockTemplateService{templates: make(map[uuid.UUID]*models.ReportTemplate)}
	for _, tpl := range templates {
		svc.templates[tpl.ID] = tpl
	}
	return svc
}

func (m *mockTemplateService) Create(ctx context.Context, tpl *models.ReportTemplate) error {
	if m.err != nil {
		return m.err
	}
	if err := tpl.Validate(); err != nil {
		return err
	}
	tpl.ID = uuid.New()
	m.templates[tpl.ID] = tpl
	return nil
}

func (m *mockTemplateService) Get(ctx context.Context, id uuid.UUID) (*models.ReportTemplate, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return tpl, nil
}

func (m *mockTemplateService) List(ctx context.Context) ([]*models.ReportTemplate, error) {
	var out []*models.ReportTemplate
	for _, tpl := range m.templates {
		out = append(out, tpl)
	}
	return out, nil
}

func (m *mockTemplateService) ListActive(ctx context.Context) ([]*models.ReportTemplate, error) {
	var out []*models.ReportTemplate
	for _, tpl := range m.templates {
		if tpl.IsActive {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (m *mockTemplateService) Update(ctx context.Context, tpl *models.ReportTemplate) error {
	if _, ok := m.templates[tpl.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.templates[tpl.ID] = tpl
	return nil
}

func (m *mockTemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.templates[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *mockTemplateService) Duplicate(ctx context.Context, id uuid.UUID, name string) (*models.ReportTemplate, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.templates[id]; !ok {
		return nil, apperrors.ErrNotFound
	}
	return m.duplicate, nil
}

type mockReportService struct {
	reports []*models.GeneratedReport
	filter  repositories.ReportFilter
	byDate  time.Time
}

func (m *mockReportService) List(ctx context.Context, filter repositories.ReportFilter) ([]*models.GeneratedReport, error) {
	m.filter = filter
	return m.reports, nil
}

func (m *mockReportService) ListByDate(ctx context.Context, date time.Time, templateID uuid.UUID) ([]*models.GeneratedReport, error) {
	m.byDate = date
	return m.reports, nil
}

func (m *mockReportService) GenerateForDate(ctx context.Context, date time.Time) error {
	return nil
}

var (
	_ services.QueryService      = (*mockQueryService)(nil)
	_ services.DataSourceService = (*mockDataSourceService)(nil)
	_ services.TemplateService   = (*mockTemplateService)(nil)
	_ services.ReportService     = (*mockReportService)(nil)
	_ Authorizer                 = passthroughAuth{}
)
