package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mx-space/portfolio/internal/models"
)

// table is one entity set: rows in insertion order plus an id index.
// The mutex covers the counter and the rows so id assignment is serialised per kind.
type table[T any] struct {
	mu    sync.RWMutex
	next  uint
	rows  []T
	index map[uint]int
}

func newTable[T any]() *table[T] {
	return &table[T]{next: 1, index: make(map[uint]int)}
}

// insert assigns the next id, builds the row through build and stores it.
// Nothing is stored (and the id is not consumed) when build fails.
func (t *table[T]) insert(build func(id uint) (T, error)) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.next
	row, err := build(id)
	if err != nil {
		var zero T
		return zero, err
	}
	t.next++
	t.index[id] = len(t.rows)
	t.rows = append(t.rows, row)
	return row, nil
}

func (t *table[T]) get(id uint) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.rows[i], true
}

func (t *table[T]) filter(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) count() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int64(len(t.rows))
}

// MemoryStore keeps all records in process memory. Construct one per app or test.
type MemoryStore struct {
	categories *table[models.CategoryModel]
	projects   *table[models.ProjectModel]
	posts      *table[models.BlogPostModel]
	messages   *table[models.MessageModel]
	users      *table[models.UserModel]

	// usernames guards the uniqueness check together with the users insert.
	usernames sync.Mutex
	now       func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: newTable[models.CategoryModel](),
		projects:   newTable[models.ProjectModel](),
		posts:      newTable[models.BlogPostModel](),
		messages:   newTable[models.MessageModel](),
		users:      newTable[models.UserModel](),
		now:        time.Now,
	}
}

// WithClock overrides the clock used for Message.created.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]models.CategoryModel, error) {
	return s.categories.filter(nil), nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id uint) (*models.CategoryModel, error) {
	c, ok := s.categories.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, in models.InsertCategory) (*models.CategoryModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := s.categories.insert(func(id uint) (models.CategoryModel, error) {
		return models.CategoryModel{ID: id, Name: strings.TrimSpace(in.Name), Type: in.Type}, nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MemoryStore) ListProjects(_ context.Context) ([]models.ProjectModel, error) {
	return cloneProjects(s.projects.filter(nil)), nil
}

func (s *MemoryStore) ListProjectsByCategory(_ context.Context, categoryID uint) ([]models.ProjectModel, error) {
	rows := s.projects.filter(func(p models.ProjectModel) bool {
		return p.CategoryID != nil && *p.CategoryID == categoryID
	})
	return cloneProjects(rows), nil
}

func (s *MemoryStore) GetProject(_ context.Context, id uint) (*models.ProjectModel, error) {
	p, ok := s.projects.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	p = cloneProject(p)
	return &p, nil
}

func (s *MemoryStore) CreateProject(_ context.Context, in models.InsertProject) (*models.ProjectModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.projects.insert(func(id uint) (models.ProjectModel, error) {
		return cloneProject(in.Model(id)), nil
	})
	if err != nil {
		return nil, err
	}
	p = cloneProject(p)
	return &p, nil
}

func (s *MemoryStore) ListBlogPosts(_ context.Context) ([]models.BlogPostModel, error) {
	return clonePosts(s.posts.filter(nil)), nil
}

func (s *MemoryStore) ListBlogPostsByCategory(_ context.Context, categoryID uint) ([]models.BlogPostModel, error) {
	rows := s.posts.filter(func(p models.BlogPostModel) bool {
		return p.CategoryID != nil && *p.CategoryID == categoryID
	})
	return clonePosts(rows), nil
}

func (s *MemoryStore) GetBlogPost(_ context.Context, id uint) (*models.BlogPostModel, error) {
	p, ok := s.posts.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (s *MemoryStore) CreateBlogPost(_ context.Context, in models.InsertBlogPost) (*models.BlogPostModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.posts.insert(func(id uint) (models.BlogPostModel, error) {
		post, err := in.Model(id)
		return clonePost(post), err
	})
	if err != nil {
		return nil, err
	}
	p = clonePost(p)
	return &p, nil
}

func (s *MemoryStore) ListMessages(_ context.Context) ([]models.MessageModel, error) {
	return s.messages.filter(nil), nil
}

func (s *MemoryStore) CreateMessage(_ context.Context, in models.InsertMessage) (*models.MessageModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m, err := s.messages.insert(func(id uint) (models.MessageModel, error) {
		return models.MessageModel{
			ID:      id,
			Name:    in.Name,
			Email:   in.Email,
			Message: in.Message,
			Created: s.now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id uint) (*models.UserModel, error) {
	u, ok := s.users.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.UserModel, error) {
	rows := s.users.filter(func(u models.UserModel) bool { return u.Username == username })
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, in models.InsertUser) (*models.UserModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.usernames.Lock()
	defer s.usernames.Unlock()

	if _, err := s.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, fmt.Errorf("create user %q: %w", in.Username, ErrDuplicateUsername)
	}
	u, err := s.users.insert(func(id uint) (models.UserModel, error) {
		return models.UserModel{ID: id, Username: in.Username, Password: in.PasswordHash, IsAdmin: in.IsAdmin}, nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MemoryStore) Count(_ context.Context, kind Kind) (int64, error) {
	switch kind {
	case KindUser:
		return s.users.count(), nil
	case KindCategory:
		return s.categories.count(), nil
	case KindProject:
		return s.projects.count(), nil
	case KindBlogPost:
		return s.posts.count(), nil
	case KindMessage:
		return s.messages.count(), nil
	default:
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
}

func cloneUint(v *uint) *uint {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneProject(p models.ProjectModel) models.ProjectModel {
	p.Tags = p.Tags.Clone()
	p.Link = cloneString(p.Link)
	p.Github = cloneString(p.Github)
	p.CategoryID = cloneUint(p.CategoryID)
	return p
}

func cloneProjects(rows []models.ProjectModel) []models.ProjectModel {
	for i := range rows {
		rows[i] = cloneProject(rows[i])
	}
	return rows
}

func clonePost(p models.BlogPostModel) models.BlogPostModel {
	p.Tags = p.Tags.Clone()
	p.CategoryID = cloneUint(p.CategoryID)
	return p
}

func clonePosts(rows []models.BlogPostModel) []models.BlogPostModel {
	for i := range rows {
		rows[i] = clonePost(rows[i])
	}
	return rows
}
