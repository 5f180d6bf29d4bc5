// Package session implements the admin login gate: credential checks,
// server-side sessions and the JWTs bound to them.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mx-space/portfolio/internal/models"
	jwtpkg "github.com/mx-space/portfolio/internal/pkg/jwt"
	"github.com/mx-space/portfolio/internal/pkg/password"
	"github.com/mx-space/portfolio/internal/store"
)

const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized means the request carries no usable session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionNotFound is returned by a Store when the id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
)

// Store keeps server-side session records.
type Store interface {
	Save(ctx context.Context, s *models.UserSession) error
	Get(ctx context.Context, id string) (*models.UserSession, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}

// UserSource resolves accounts for login and for authenticated requests.
type UserSource interface {
	GetUser(ctx context.Context, id uint) (*models.UserModel, error)
	GetUserByUsername(ctx context.Context, username string) (*models.UserModel, error)
}

// Identity is the authenticated caller of a request.
type Identity struct {
	User    *models.UserModel
	Session *models.UserSession
}

// Issued is the result of a successful login.
type Issued struct {
	Token   string
	Session *models.UserSession
	User    *models.UserModel
}

type Manager struct {
	store  Store
	users  UserSource
	signer *jwtpkg.Signer
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(st Store, users UserSource, signer *jwtpkg.Signer, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: st, users: users, signer: signer, ttl: ttl, now: time.Now}
}

// TTL is the lifetime of newly issued sessions.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Login verifies username/password and issues a session bound to the user.
func (m *Manager) Login(ctx context.Context, username, plain, ip, ua string) (*Issued, error) {
	u, err := m.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		_ = password.CompareDummy(plain)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := password.Compare(u.Password, plain); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	now := m.now()
	s := &models.UserSession{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		IP:        strings.TrimSpace(ip),
		UA:        strings.TrimSpace(ua),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	token, err := m.signer.Sign(u.ID, s.ID, m.ttl)
	if err != nil {
		_ = m.store.Revoke(ctx, s.ID, now)
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Issued{Token: token, Session: s, User: u}, nil
}

// Authenticate resolves a raw token to the caller. Every failure maps to ErrUnauthorized.
func (m *Manager) Authenticate(ctx context.Context, token string) (*Identity, error) {
	token = NormalizeToken(token)
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := m.signer.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	s, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: session expired or revoked", ErrUnauthorized)
		}
		return nil, err
	}
	if s.UserID != claims.UserID || !s.Active(m.now()) {
		return nil, fmt.Errorf("%w: session expired or revoked", ErrUnauthorized)
	}
	u, err := m.users.GetUser(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: user gone", ErrUnauthorized)
		}
		return nil, err
	}
	return &Identity{User: u, Session: s}, nil
}

// Logout revokes the session. Unknown sessions are not an error.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	err := m.store.Revoke(ctx, sessionID, m.now())
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
