// Package store owns every persisted portfolio record and assigns identities.
package store

import (
	"context"
	"errors"

	"github.com/mx-space/portfolio/internal/models"
)

var (
	// ErrNotFound is returned by point lookups that miss.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// Kind names one entity set.
type Kind string

const (
	KindUser     Kind = "users"
	KindCategory Kind = "categories"
	KindProject  Kind = "projects"
	KindBlogPost Kind = "blog_posts"
	KindMessage  Kind = "messages"
)

// Store is the single writer for portfolio records. Lists come back in
// insertion order; ids are assigned per kind starting at 1 and never reused.
type Store interface {
	ListCategories(ctx context.Context) ([]models.CategoryModel, error)
	GetCategory(ctx context.Context, id uint) (*models.CategoryModel, error)
	CreateCategory(ctx context.Context, in models.InsertCategory) (*models.CategoryModel, error)

	ListProjects(ctx context.Context) ([]models.ProjectModel, error)
	ListProjectsByCategory(ctx context.Context, categoryID uint) ([]models.ProjectModel, error)
	GetProject(ctx context.Context, id uint) (*models.ProjectModel, error)
	CreateProject(ctx context.Context, in models.InsertProject) (*models.ProjectModel, error)

	ListBlogPosts(ctx context.Context) ([]models.BlogPostModel, error)
	ListBlogPostsByCategory(ctx context.Context, categoryID uint) ([]models.BlogPostModel, error)
	GetBlogPost(ctx context.Context, id uint) (*models.BlogPostModel, error)
	CreateBlogPost(ctx context.Context, in models.InsertBlogPost) (*models.BlogPostModel, error)

	ListMessages(ctx context.Context) ([]models.MessageModel, error)
	CreateMessage(ctx context.Context, in models.InsertMessage) (*models.MessageModel, error)

	GetUser(ctx context.Context, id uint) (*models.UserModel, error)
	GetUserByUsername(ctx context.Context, username string) (*models.UserModel, error)
	CreateUser(ctx context.Context, in models.InsertUser) (*models.UserModel, error)

	Count(ctx context.Context, kind Kind) (int64, error)
}
