package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/models"
	"github.com/gridreport/gridreport-engine/pkg/reporting"
	"github.com/gridreport/gridreport-engine/pkg/repositories"
)

// DataSourceService manages the whitelist of queryable tables.
type DataSourceService interface {
	Create(ctx context.Context, ds *models.DataSource) error
	Get(ctx context.Context, id uuid.UUID) (*models.DataSource, error)
	List(ctx context.Context, activeOnly *bool) ([]*models.DataSource, error)
	Update(ctx context.Context, ds *models.DataSource) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Columns returns the live column set of a registered table. A table
	// that cannot be introspected yields an empty list, not an error, so a
	// registration stays inspectable while its backing table is broken.
	Columns(ctx context.Context, id uuid.UUID) ([]string, error)
}

type dataSourceService struct {
	repo    repositories.DataSourceRepository
	backend reporting.Introspector
	logger  *zap.Logger
}

// NewDataSourceService creates a new data source service.
func NewDataSourceService(repo repositories.DataSourceRepository, backend reporting.Introspector, logger *zap.Logger) DataSourceService {
	return &dataSourceService{repo: repo, backend: backend, logger: logger}
}

func (s *dataSourceService) Create(ctx context.Context, ds *models.DataSource) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, ds); err != nil {
		return err
	}
	s.logger.Info("data source registered",
		zap.String("id", ds.ID.String()),
		zap.String("table", ds.TableName))
	return nil
}

func (s *dataSourceService) Get(ctx context.Context, id uuid.UUID) (*models.DataSource, error) {
	return s.repo.Get(ctx, id)
}

func (s *dataSourceService) List(ctx context.Context, activeOnly *bool) ([]*models.DataSource, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *dataSourceService) Update(ctx context.Context, ds *models.DataSource) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, ds)
}

func (s *dataSourceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *dataSourceService) Columns(ctx context.Context, id uuid.UUID) ([]string, error) {
	ds, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	columns, err := s.backend.Columns(ctx, ds.TableName)
	if err != nil {
		s.logger.Warn("introspection failed for registered table",
			zap.String("table", ds.TableName),
			zap.Error(err))
		return []string{}, nil
	}
	return columns, nil
}

var _ DataSourceService = (*dataSourceService)(nil)
