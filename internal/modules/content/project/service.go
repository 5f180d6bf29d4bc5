package project

import (
	"context"
	"fmt"

	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/modules/content/category"
	"github.com/mx-space/portfolio/internal/pkg/session"
	"github.com/mx-space/portfolio/internal/store"
	"go.uber.org/zap"
)

type Service struct {
	store      store.Store
	categories *category.Service
	logger     *zap.Logger
}

func NewService(st store.Store, categories *category.Service, logger *zap.Logger) *Service {
	return &Service{store: st, categories: categories, logger: logger}
}

// List returns every project, or only those in categoryID when it is set.
func (s *Service) List(ctx context.Context, categoryID *uint) ([]models.ProjectModel, error) {
	if categoryID != nil {
		return s.store.ListProjectsByCategory(ctx, *categoryID)
	}
	return s.store.ListProjects(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.ProjectModel, error) {
	return s.store.GetProject(ctx, id)
}

// Create stores a project on behalf of an authenticated user. The category,
// when given, must be a project category.
func (s *Service) Create(ctx context.Context, actor *models.UserModel, in models.InsertProject) (*models.ProjectModel, error) {
	if actor == nil {
		return nil, session.ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.categories.CheckReference(ctx, "project", in.CategoryID, models.CategoryTypeProject); err != nil {
		return nil, err
	}
	p, err := s.store.CreateProject(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.logger.Info("project created", zap.Uint("id", p.ID), zap.String("title", p.Title), zap.Uint("by", actor.ID))
	return p, nil
}
