package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mx-space/portfolio/internal/models"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// GormStore persists records in a relational database. Ids come from the
// table's auto-increment sequence, which serialises assignment per kind.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) ListCategories(ctx context.Context) ([]models.CategoryModel, error) {
	var rows []models.CategoryModel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) GetCategory(ctx context.Context, id uint) (*models.CategoryModel, error) {
	var c models.CategoryModel
	if err := first(s.db.WithContext(ctx), &c, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) CreateCategory(ctx context.Context, in models.InsertCategory) (*models.CategoryModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c := models.CategoryModel{Name: strings.TrimSpace(in.Name), Type: in.Type}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

func (s *GormStore) ListProjects(ctx context.Context) ([]models.ProjectModel, error) {
	var rows []models.ProjectModel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListProjectsByCategory(ctx context.Context, categoryID uint) ([]models.ProjectModel, error) {
	var rows []models.ProjectModel
	err := s.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) GetProject(ctx context.Context, id uint) (*models.ProjectModel, error) {
	var p models.ProjectModel
	if err := first(s.db.WithContext(ctx), &p, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) CreateProject(ctx context.Context, in models.InsertProject) (*models.ProjectModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := in.Model(0)
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

func (s *GormStore) ListBlogPosts(ctx context.Context) ([]models.BlogPostModel, error) {
	var rows []models.BlogPostModel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListBlogPostsByCategory(ctx context.Context, categoryID uint) ([]models.BlogPostModel, error) {
	var rows []models.BlogPostModel
	err := s.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) GetBlogPost(ctx context.Context, id uint) (*models.BlogPostModel, error) {
	var p models.BlogPostModel
	if err := first(s.db.WithContext(ctx), &p, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) CreateBlogPost(ctx context.Context, in models.InsertBlogPost) (*models.BlogPostModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := in.Model(0)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create blog post: %w", err)
	}
	return &p, nil
}

func (s *GormStore) ListMessages(ctx context.Context) ([]models.MessageModel, error) {
	var rows []models.MessageModel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) CreateMessage(ctx context.Context, in models.InsertMessage) (*models.MessageModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m := models.MessageModel{
		Name:    in.Name,
		Email:   in.Email,
		Message: in.Message,
		Created: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return &m, nil
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.UserModel, error) {
	var u models.UserModel
	if err := first(s.db.WithContext(ctx), &u, id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.UserModel, error) {
	var u models.UserModel
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, in models.InsertUser) (*models.UserModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.UserModel{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("create user %q: %w", in.Username, ErrDuplicateUsername)
	}
	u := models.UserModel{Username: in.Username, Password: in.PasswordHash, IsAdmin: in.IsAdmin}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		// The unique index still wins a race between the count and the insert.
		var myErr *mysqldriver.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return nil, fmt.Errorf("create user %q: %w", in.Username, ErrDuplicateUsername)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *GormStore) Count(ctx context.Context, kind Kind) (int64, error) {
	var model interface{}
	switch kind {
	case KindUser:
		model = &models.UserModel{}
	case KindCategory:
		model = &models.CategoryModel{}
	case KindProject:
		model = &models.ProjectModel{}
	case KindBlogPost:
		model = &models.BlogPostModel{}
	case KindMessage:
		model = &models.MessageModel{}
	default:
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
	var n int64
	return n, s.db.WithContext(ctx).Model(model).Count(&n).Error
}

func first(db *gorm.DB, dest interface{}, id uint) error {
	err := db.First(dest, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
