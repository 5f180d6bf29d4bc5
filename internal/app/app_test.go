package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mx-space/portfolio/internal/config"
	"github.com/mx-space/portfolio/internal/middleware"
	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/modules/content/contact"
	jwtpkg "github.com/mx-space/portfolio/internal/pkg/jwt"
	"github.com/mx-space/portfolio/internal/pkg/session"
	"github.com/mx-space/portfolio/internal/pkg/telegram"
	"github.com/mx-space/portfolio/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.MessageModel
}

func (n *recordingNotifier) Notify(m *models.MessageModel) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, *m)
}

type testApp struct {
	t      *testing.T
	app    *App
	store  *store.MemoryStore
	router http.Handler
}

// newTestApp seeds categories 1 Python/project and 2 Tutorial/blog plus an
// admin account with password "secret".
func newTestApp(t *testing.T, notifier contact.Notifier) *testApp {
	t.Helper()
	return newTestAppWith(t, notifier, nil, 0)
}

// newTestAppWith keeps sessions in rdb and rate limits the contact form when
// rdb is non-nil.
func newTestAppWith(t *testing.T, notifier contact.Notifier, rdb *redis.Client, contactLimit int) *testApp {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(ctx, st, store.SeedOptions{
		Categories: []models.InsertCategory{
			{Name: "Python", Type: models.CategoryTypeProject},
			{Name: "Tutorial", Type: models.CategoryTypeBlog},
		},
		AdminUsername: "admin",
		AdminPassword: "secret",
	}, zap.NewNop()))

	signer, err := jwtpkg.NewSigner("test-secret")
	require.NoError(t, err)
	cfg := &config.AppConfig{
		Port:             5000,
		Env:              "test",
		JWTSecret:        "test-secret",
		Store:            config.StoreConfig{Driver: config.StoreMemory},
		ContactRateLimit: contactLimit,
	}
	var sessions session.Store = session.NewMemoryStore()
	if rdb != nil {
		sessions = session.NewRedisStore(rdb)
	}
	a := NewWithDeps(cfg, Deps{
		Store:    st,
		Sessions: session.NewManager(sessions, st, signer, time.Hour),
		Notifier: notifier,
		Redis:    rdb,
		Logger:   zap.NewNop(),
	})
	return &testApp{t: t, app: a, store: st, router: a.Router()}
}

func (ta *testApp) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	ta.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ta.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	return w
}

func (ta *testApp) login() string {
	ta.t.Helper()
	w := ta.do(http.MethodPost, "/api/login", obj{"username": "admin", "password": "secret"}, "")
	require.Equal(ta.t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	decode(ta.t, w, &res)
	require.NotEmpty(ta.t, res.Token)
	return res.Token
}

func (ta *testApp) count(kind store.Kind) int64 {
	ta.t.Helper()
	n, err := ta.store.Count(context.Background(), kind)
	require.NoError(ta.t, err)
	return n
}

type obj = map[string]interface{}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func projectBody(title string, categoryID interface{}) obj {
	body := obj{
		"title":       title,
		"description": "A project",
		"content":     "Details",
		"image":       "https://example.com/p.png",
		"tags":        []string{"go", "web"},
	}
	if categoryID != nil {
		body["categoryId"] = categoryID
	}
	return body
}

func blogBody(title string, categoryID interface{}) obj {
	body := obj{
		"title":       title,
		"content":     "# Intro\n\nHello **world**.",
		"summary":     "A post",
		"publishDate": "2024-03-01",
		"tags":        []string{},
	}
	if categoryID != nil {
		body["categoryId"] = categoryID
	}
	return body
}

func TestCreateProjectWithoutSessionIsRejected(t *testing.T) {
	ta := newTestApp(t, nil)

	w := ta.do(http.MethodPost, "/api/projects", projectBody("A", 1), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, w.Body.String())
	assert.Zero(t, ta.count(store.KindProject))

	w = ta.do(http.MethodPost, "/api/projects", projectBody("A", 1), "forged.token.value")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, ta.count(store.KindProject))
}

func TestCreateProjectIDsStrictlyIncrease(t *testing.T) {
	ta := newTestApp(t, nil)
	token := ta.login()

	var last uint
	for i := 0; i < 3; i++ {
		w := ta.do(http.MethodPost, "/api/projects", projectBody("P", nil), token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var p models.ProjectModel
		decode(t, w, &p)
		assert.Greater(t, p.ID, last)
		last = p.ID
	}
	assert.Equal(t, uint(3), last)
}

func TestProjectCategoryTypeIsEnforced(t *testing.T) {
	ta := newTestApp(t, nil)
	token := ta.login()

	w := ta.do(http.MethodPost, "/api/projects", projectBody("A", 1), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var a models.ProjectModel
	decode(t, w, &a)

	w = ta.do(http.MethodPost, "/api/projects", projectBody("B", 2), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var res struct {
		Message string              `json:"message"`
		Errors  []models.FieldError `json:"errors"`
	}
	decode(t, w, &res)
	assert.Contains(t, res.Message, "Invalid project data")
	assert.Equal(t, []models.FieldError{{Field: "categoryId", Rule: "project"}}, res.Errors)

	w = ta.do(http.MethodPost, "/api/projects", projectBody("C", 99), token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown category")

	w = ta.do(http.MethodGet, "/api/projects?category=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.ProjectModel
	decode(t, w, &list)
	assert.Equal(t, []models.ProjectModel{a}, list)
}

func TestCreateProjectValidation(t *testing.T) {
	ta := newTestApp(t, nil)
	token := ta.login()

	w := ta.do(http.MethodPost, "/api/projects", obj{"title": "only"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var res struct {
		Message string              `json:"message"`
		Errors  []models.FieldError `json:"errors"`
	}
	decode(t, w, &res)
	assert.Equal(t, "Invalid project data", res.Message)
	fields := make([]string, 0, len(res.Errors))
	for _, f := range res.Errors {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"description", "content", "image", "tags"}, fields)

	w = ta.do(http.MethodPost, "/api/projects", "not an object", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, ta.count(store.KindProject))
}

func TestListProjectsFilterMatchesFullList(t *testing.T) {
	ta := newTestApp(t, nil)
	token := ta.login()
	for _, cat := range []interface{}{1, nil, 1} {
		w := ta.do(http.MethodPost, "/api/projects", projectBody("P", cat), token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var all, filtered []models.ProjectModel
	decode(t, ta.do(http.MethodGet, "/api/projects", nil, ""), &all)
	decode(t, ta.do(http.MethodGet, "/api/projects?category=1", nil, ""), &filtered)
	require.Len(t, all, 3)

	var want []models.ProjectModel
	for _, p := range all {
		if p.CategoryID != nil && *p.CategoryID == 1 {
			want = append(want, p)
		}
	}
	assert.Equal(t, want, filtered)

	w := ta.do(http.MethodGet, "/api/projects?category=7", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = ta.do(http.MethodGet, "/api/projects?category=web", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProject(t *testing.T) {
	ta := newTestApp(t, nil)

	for _, path := range []string{"/api/projects/1", "/api/projects/abc", "/api/projects/0"} {
		w := ta.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"message":"Project not found"}`, w.Body.String(), path)
	}

	token := ta.login()
	w := ta.do(http.MethodPost, "/api/projects", projectBody("A", nil), token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created, got models.ProjectModel
	decode(t, w, &created)

	w = ta.do(http.MethodGet, "/api/projects/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.Equal(t, created, got)
	assert.Nil(t, got.Link)
}

func TestBlogPostFlow(t *testing.T) {
	ta := newTestApp(t, nil)

	w := ta.do(http.MethodPost, "/api/login", obj{"username": "admin", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "token")
	assert.Empty(t, w.Result().Cookies())

	token := ta.login()
	w = ta.do(http.MethodPost, "/api/blog", blogBody("First", 2), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = ta.do(http.MethodPost, "/api/blog", blogBody("Second", nil), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post models.BlogPostModel
	decode(t, w, &post)
	assert.Equal(t, uint(2), post.ID)
	assert.Equal(t, "2024-03-01", post.PublishDate.String())
	assert.NotNil(t, post.Tags)

	w = ta.do(http.MethodPost, "/api/blog", blogBody("Wrong category", 1), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := blogBody("Bad date", nil)
	bad["publishDate"] = "03/01/2024"
	w = ta.do(http.MethodPost, "/api/blog", bad, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "publishDate")

	var listed []models.BlogPostModel
	decode(t, ta.do(http.MethodGet, "/api/blog?category=2", nil, ""), &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "First", listed[0].Title)

	w = ta.do(http.MethodGet, "/api/blog/3", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Blog post not found"}`, w.Body.String())

	w = ta.do(http.MethodGet, "/api/blog/1/html", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var rendered struct {
		ID       uint   `json:"id"`
		Title    string `json:"title"`
		HTML     string `json:"html"`
		Headings []struct {
			Text string `json:"text"`
		} `json:"headings"`
	}
	decode(t, w, &rendered)
	assert.Equal(t, uint(1), rendered.ID)
	assert.Contains(t, rendered.HTML, "<strong>world</strong>")
	require.Len(t, rendered.Headings, 1)
	assert.Equal(t, "Intro", rendered.Headings[0].Text)
}

func TestSessionCookieAndLogout(t *testing.T) {
	ta := newTestApp(t, nil)

	w := ta.do(http.MethodPost, "/api/login", obj{"username": "admin", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Token string           `json:"token"`
		User  models.UserModel `json:"user"`
	}
	decode(t, w, &res)
	assert.Equal(t, "admin", res.User.Username)
	assert.True(t, res.User.IsAdmin)
	assert.NotContains(t, w.Body.String(), "password")

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, res.Token, cookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"admin"`)

	w = ta.do(http.MethodPost, "/api/logout", nil, res.Token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ta.do(http.MethodGet, "/api/user", nil, res.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ta.do(http.MethodPost, "/api/login", obj{"username": "admin"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactStoresAndNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	ta := newTestApp(t, notifier)

	before := time.Now().Add(-time.Second)
	w := ta.do(http.MethodPost, "/api/contact", obj{
		"name":    "Ann",
		"email":   "ann@example.com",
		"message": "Hello there",
		"created": "1999-01-01T00:00:00Z",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var m models.MessageModel
	decode(t, w, &m)
	assert.Equal(t, uint(1), m.ID)
	assert.True(t, m.Created.After(before), "created is set by the server")

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, m.ID, notifier.sent[0].ID)

	w = ta.do(http.MethodPost, "/api/contact", obj{"name": "Ann", "email": "nope", "message": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"email"`)
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(1), ta.count(store.KindMessage))
}

func TestContactSucceedsWhenSinkFails(t *testing.T) {
	var hits int
	var mu sync.Mutex
	bot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		http.Error(w, `{"ok":false,"description":"Unauthorized"}`, http.StatusUnauthorized)
	}))
	defer bot.Close()

	sink := telegram.New(telegram.Config{BotToken: "t", ChatID: "1", APIBase: bot.URL}, zap.NewNop())
	ta := newTestApp(t, sink)

	w := ta.do(http.MethodPost, "/api/contact", obj{"name": "Bob", "email": "bob@example.com", "message": "Hi"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var m models.MessageModel
	decode(t, w, &m)
	assert.False(t, m.Created.IsZero())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ta.app.Shutdown(ctx))
	mu.Lock()
	assert.Equal(t, 1, hits)
	mu.Unlock()
	assert.Equal(t, int64(1), ta.count(store.KindMessage))
}

func TestMessagesRequireSession(t *testing.T) {
	ta := newTestApp(t, nil)
	w := ta.do(http.MethodPost, "/api/contact", obj{"name": "Ann", "email": "ann@example.com", "message": "m"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusUnauthorized, ta.do(http.MethodGet, "/api/messages", nil, "").Code)

	w = ta.do(http.MethodGet, "/api/messages", nil, ta.login())
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.MessageModel
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Ann", list[0].Name)
}

func TestCategories(t *testing.T) {
	ta := newTestApp(t, nil)

	var cats []models.CategoryModel
	decode(t, ta.do(http.MethodGet, "/api/categories?type=blog", nil, ""), &cats)
	assert.Equal(t, []models.CategoryModel{{ID: 2, Name: "Tutorial", Type: models.CategoryTypeBlog}}, cats)

	assert.Equal(t, http.StatusBadRequest, ta.do(http.MethodGet, "/api/categories?type=video", nil, "").Code)

	body := obj{"name": "Go", "type": "project"}
	assert.Equal(t, http.StatusUnauthorized, ta.do(http.MethodPost, "/api/categories", body, "").Code)

	token := ta.login()
	w := ta.do(http.MethodPost, "/api/categories", body, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var c models.CategoryModel
	decode(t, w, &c)
	assert.Equal(t, uint(3), c.ID)

	w = ta.do(http.MethodPost, "/api/categories", obj{"name": "X", "type": "video"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndFallbackRoutes(t *testing.T) {
	ta := newTestApp(t, nil)

	w := ta.do(http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	decode(t, w, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "memory", health["store"])

	w = ta.do(http.MethodGet, "/api/nothing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Not found"}`, w.Body.String())

	w = ta.do(http.MethodDelete, "/api/projects", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestOriginMatcher(t *testing.T) {
	allowed := originMatcher([]string{"https://example.com", "*.example.org", "localhost:*"})

	assert.True(t, allowed("https://example.com"))
	assert.True(t, allowed("https://blog.example.org"))
	assert.True(t, allowed("http://localhost:3000"))
	assert.False(t, allowed("https://evil.com"))
	assert.False(t, allowed("https://example.org.evil.com"))
	assert.Equal(t, "example.com:8080", originHost("https://example.com:8080"))
	assert.Equal(t, "example.com", originHost("example.com/"))
}

func TestMalformedCategoryFilterIsRejected(t *testing.T) {
	ta := newTestApp(t, nil)
	token := ta.login()
	require.Equal(t, http.StatusCreated, ta.do(http.MethodPost, "/api/projects", projectBody("P", 1), token).Code)

	for _, path := range []string{
		"/api/projects?category=abc",
		"/api/projects?category=0",
		"/api/projects?category=-1",
		"/api/blog?category=abc",
		"/api/blog?category=0",
	} {
		w := ta.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), `"message":"invalid category`, path)
	}
}

func newMiniredis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestContactRateLimitWithRedis(t *testing.T) {
	notifier := &recordingNotifier{}
	ta := newTestAppWith(t, notifier, newMiniredis(t), 2)
	body := obj{"name": "Ann", "email": "ann@example.com", "message": "Hi"}

	for i := 0; i < 2; i++ {
		w := ta.do(http.MethodPost, "/api/contact", body, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := ta.do(http.MethodPost, "/api/contact", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"message"`)
	assert.EqualValues(t, 2, ta.count(store.KindMessage))
	assert.Len(t, notifier.sent, 2)
}

func TestRedisSessionLogoutRevokesWrites(t *testing.T) {
	ta := newTestAppWith(t, nil, newMiniredis(t), 0)
	token := ta.login()

	w := ta.do(http.MethodPost, "/api/projects", projectBody("Before", 1), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ta.do(http.MethodPost, "/api/logout", nil, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ta.do(http.MethodPost, "/api/projects", projectBody("After", 1), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.EqualValues(t, 1, ta.count(store.KindProject))

	var health map[string]interface{}
	decode(t, ta.do(http.MethodGet, "/api/health", nil, ""), &health)
	assert.Equal(t, "up", health["redis"])
}
