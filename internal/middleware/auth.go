package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/pkg/response"
	"github.com/mx-space/portfolio/internal/pkg/session"
	"go.uber.org/zap"
)

const (
	ContextKeyUser    = "user"
	ContextKeySession = "session"

	// SessionCookie carries the session token for browser clients.
	SessionCookie = "portfolio_session"
)

// Authenticator resolves a raw token to the calling identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Identity, error)
}

// Auth rejects requests without a valid session before the handler runs.
// An identity already attached by OptionalAuth is reused.
func Auth(auth Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Next()
			return
		}
		id, err := auth.Authenticate(c.Request.Context(), ExtractToken(c))
		if err != nil {
			if !errors.Is(err, session.ErrUnauthorized) {
				log.Error("session lookup failed", zap.Error(err))
			}
			response.Unauthorized(c)
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present, but does not block the request.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := ExtractToken(c); token != "" {
			if id, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				setIdentity(c, id)
			}
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, id *session.Identity) {
	c.Set(ContextKeyUser, id.User)
	c.Set(ContextKeySession, id.Session)
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *gin.Context) *models.UserModel {
	v, _ := c.Get(ContextKeyUser)
	u, _ := v.(*models.UserModel)
	return u
}

// CurrentSession returns the authenticated session, or nil.
func CurrentSession(c *gin.Context) *models.UserSession {
	v, _ := c.Get(ContextKeySession)
	s, _ := v.(*models.UserSession)
	return s
}

// IsAuthenticated returns true if the request has a valid session.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUser(c) != nil
}

// ExtractToken reads the token from the Authorization header, the session cookie or ?token=.
func ExtractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return session.NormalizeToken(auth)
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return session.NormalizeToken(cookie)
	}
	return session.NormalizeToken(c.Query("token"))
}
