package blog

import (
	"context"
	"fmt"

	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/modules/content/category"
	"github.com/mx-space/portfolio/internal/modules/processing/markdown"
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

// List returns every post, or only those in categoryID when it is set.
func (s *Service) List(ctx context.Context, categoryID *uint) ([]models.BlogPostModel, error) {
	if categoryID != nil {
		return s.store.ListBlogPostsByCategory(ctx, *categoryID)
	}
	return s.store.ListBlogPosts(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.BlogPostModel, error) {
	return s.store.GetBlogPost(ctx, id)
}

// Create stores a post on behalf of an authenticated user. The category,
// when given, must be a blog category.
func (s *Service) Create(ctx context.Context, actor *models.UserModel, in models.InsertBlogPost) (*models.BlogPostModel, error) {
	if actor == nil {
		return nil, session.ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.categories.CheckReference(ctx, "blog post", in.CategoryID, models.CategoryTypeBlog); err != nil {
		return nil, err
	}
	p, err := s.store.CreateBlogPost(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create blog post: %w", err)
	}
	s.logger.Info("blog post created", zap.Uint("id", p.ID), zap.String("title", p.Title), zap.Uint("by", actor.ID))
	return p, nil
}

// Rendered is a post with its content converted to HTML.
type Rendered struct {
	ID       uint               `json:"id"`
	Title    string             `json:"title"`
	HTML     string             `json:"html"`
	Headings []markdown.Heading `json:"headings"`
}

func (s *Service) Render(ctx context.Context, id uint) (*Rendered, error) {
	p, err := s.store.GetBlogPost(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := markdown.Render(p.Content)
	return &Rendered{ID: p.ID, Title: p.Title, HTML: doc.HTML, Headings: doc.Headings}, nil
}
