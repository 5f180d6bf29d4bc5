package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/pkg/session"
	"github.com/mx-space/portfolio/internal/store"
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// List returns all categories, or only those of typ when it is non-empty.
func (s *Service) List(ctx context.Context, typ models.CategoryType) ([]models.CategoryModel, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return cats, nil
	}
	out := make([]models.CategoryModel, 0, len(cats))
	for _, c := range cats {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, actor *models.UserModel, in models.InsertCategory) (*models.CategoryModel, error) {
	if actor == nil {
		return nil, session.ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.store.CreateCategory(ctx, in)
}

// CheckReference verifies that an optional category id points at an existing
// category of the wanted type. A nil id is accepted.
func (s *Service) CheckReference(ctx context.Context, entity string, id *uint, want models.CategoryType) error {
	if id == nil {
		return nil
	}
	cat, err := s.store.GetCategory(ctx, *id)
	if errors.Is(err, store.ErrNotFound) {
		return models.NewValidationError(entity, fmt.Sprintf("category %d does not exist", *id),
			models.FieldError{Field: "categoryId", Rule: "exists"})
	}
	if err != nil {
		return err
	}
	if cat.Type != want {
		return models.NewValidationError(entity, fmt.Sprintf("category %d is a %s category", *id, cat.Type),
			models.FieldError{Field: "categoryId", Rule: string(want)})
	}
	return nil
}
