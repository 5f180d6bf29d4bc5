package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/pkg/password"
	"go.uber.org/zap"
)

// DefaultCategories is installed into an empty store.
var DefaultCategories = []models.InsertCategory{
	{Name: "Web Development", Type: models.CategoryTypeProject},
	{Name: "Python", Type: models.CategoryTypeProject},
	{Name: "Tutorial", Type: models.CategoryTypeBlog},
	{Name: "Tech Notes", Type: models.CategoryTypeBlog},
}

// SeedOptions controls the initial content of a fresh store.
type SeedOptions struct {
	Categories    []models.InsertCategory
	AdminUsername string
	AdminPassword string
}

// Seed installs categories when none exist and the admin user when it is
// configured and missing. It is safe to run on every start.
func Seed(ctx context.Context, s Store, opts SeedOptions, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	n, err := s.Count(ctx, KindCategory)
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n == 0 {
		cats := opts.Categories
		if cats == nil {
			cats = DefaultCategories
		}
		for _, c := range cats {
			if _, err := s.CreateCategory(ctx, c); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		logger.Info("seeded categories", zap.Int("count", len(cats)))
	}

	if opts.AdminUsername == "" {
		return nil
	}
	if _, err := s.GetUserByUsername(ctx, opts.AdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}
	if opts.AdminPassword == "" {
		logger.Warn("admin password is empty, skipping admin user seed", zap.String("username", opts.AdminUsername))
		return nil
	}
	hash, err := password.Hash(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := s.CreateUser(ctx, models.InsertUser{
		Username:     opts.AdminUsername,
		PasswordHash: hash,
		IsAdmin:      true,
	}); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("seeded admin user", zap.String("username", opts.AdminUsername))
	return nil
}
