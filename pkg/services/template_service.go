package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/models"
	"github.com/gridreport/gridreport-engine/pkg/repositories"
)

// TemplateService manages report templates.
type TemplateService interface {
	Create(ctx context.Context, tpl *models.ReportTemplate) error
	Get(ctx context.Context, id uuid.UUID) (*models.ReportTemplate, error)
	List(ctx context.Context) ([]*models.ReportTemplate, error)
	ListActive(ctx context.Context) ([]*models.ReportTemplate, error)
	Update(ctx context.Context, tpl *models.ReportTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Duplicate copies a template under a new name. The copy starts
	// inactive so it never feeds the scheduler before someone reviews it.
	Duplicate(ctx context.Context, id uuid.UUID, name string) (*models.ReportTemplate, error)
}

type templateService struct {
	repo   repositories.ReportTemplateRepository
	logger *zap.Logger
}

// NewTemplateService creates a new template service.
func NewTemplateService(repo repositories.ReportTemplateRepository, logger *zap.Logger) TemplateService {
	return &templateService{repo: repo, logger: logger}
}

func (s *templateService) Create(ctx context.Context, tpl *models.ReportTemplate) error {
	if err := tpl.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, tpl)
}

func (s *templateService) Get(ctx context.Context, id uuid.UUID) (*models.ReportTemplate, error) {
	return s.repo.Get(ctx, id)
}

func (s *templateService) List(ctx context.Context) ([]*models.ReportTemplate, error) {
	return s.repo.List(ctx)
}

func (s *templateService) ListActive(ctx context.Context) ([]*models.ReportTemplate, error) {
	return s.repo.ListActive(ctx)
}

func (s *templateService) Update(ctx context.Context, tpl *models.ReportTemplate) error {
	if err := tpl.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, tpl)
}

func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *templateService) Duplicate(ctx context.Context, id uuid.UUID, name string) (*models.ReportTemplate, error) {
	original, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = original.Name + " - copy"
	}
	uniqueName, err := s.uniqueName(ctx, name)
	if err != nil {
		return nil, err
	}

	copy := &models.ReportTemplate{
		Name:        uniqueName,
		Description: original.Description,
		Layout:      original.Layout,
		Charts:      original.Charts,
		IsActive:    false,
	}
	if err := s.repo.Create(ctx, copy); err != nil {
		return nil, err
	}

	s.logger.Info("template duplicated",
		zap.String("source_id", original.ID.String()),
		zap.String("copy_id", copy.ID.String()))
	return copy, nil
}

// uniqueName appends " (n)" to the candidate until no template carries it.
func (s *templateService) uniqueName(ctx context.Context, candidate string) (string, error) {
	name := candidate
	for n := 1; ; n++ {
		exists, err := s.repo.NameExists(ctx, name)
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
		name = fmt.Sprintf("%s (%d)", candidate, n)
	}
}

var _ TemplateService = (*templateService)(nil)
