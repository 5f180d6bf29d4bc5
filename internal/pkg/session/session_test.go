package session

import (
	"context"
	"testing"
	"time"

	"github.com/mx-space/portfolio/internal/models"
	jwtpkg "github.com/mx-space/portfolio/internal/pkg/jwt"
	"github.com/mx-space/portfolio/internal/pkg/password"
	"github.com/mx-space/portfolio/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	hash, err := password.Hash("secret")
	require.NoError(t, err)
	_, err = st.CreateUser(context.Background(), models.InsertUser{Username: "admin", PasswordHash: hash, IsAdmin: true})
	require.NoError(t, err)

	signer, err := jwtpkg.NewSigner("test-secret")
	require.NoError(t, err)
	return NewManager(NewMemoryStore(), st, signer, time.Hour), st
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	issued, err := m.Login(ctx, " admin ", "secret", "127.0.0.1", "test")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, "admin", issued.User.Username)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.Session.ExpiresAt, time.Minute)

	id, err := m.Authenticate(ctx, "Bearer "+issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.User.ID, id.User.ID)
	assert.Equal(t, issued.Session.ID, id.Session.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	_, err := m.Login(ctx, "admin", "wrong", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = m.Login(ctx, "ghost", "secret", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejects(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	_, err := m.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = m.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)

	other, err := jwtpkg.NewSigner("test-secret")
	require.NoError(t, err)
	orphan, err := other.Sign(1, "no-such-session", time.Hour)
	require.NoError(t, err)
	_, err = m.Authenticate(ctx, orphan)
	assert.ErrorIs(t, err, ErrUnauthorized, "token without a server-side session")
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	issued, err := m.Login(ctx, "admin", "secret", "", "")
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx, issued.Session.ID))

	_, err = m.Authenticate(ctx, issued.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NoError(t, m.Logout(ctx, "unknown"))
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	issued, err := m.Login(ctx, "admin", "secret", "", "")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Authenticate(ctx, issued.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  bearer abc "))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Equal(t, "", NormalizeToken("   "))
}

func TestMemoryStorePrunesExpired(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	require.NoError(t, s.Save(ctx, &models.UserSession{ID: "old", ExpiresAt: now.Add(time.Minute)}))

	s.now = func() time.Time { return now.Add(time.Hour) }
	_, err := s.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, s.Save(ctx, &models.UserSession{ID: "new", ExpiresAt: now.Add(2 * time.Hour)}))
	n, err := s.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, s.sessions, 1)
	assert.ErrorIs(t, s.Revoke(ctx, "old", now), ErrSessionNotFound)
}
