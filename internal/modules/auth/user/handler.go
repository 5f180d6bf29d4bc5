package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/portfolio/internal/middleware"
	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/pkg/response"
	"github.com/mx-space/portfolio/internal/pkg/session"
	"go.uber.org/zap"
)

type Handler struct {
	sessions *session.Manager
	logger   *zap.Logger
}

func NewHandler(sessions *session.Manager, logger *zap.Logger) *Handler {
	return &Handler{sessions: sessions, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/login", h.login)
	rg.POST("/logout", authMW, h.logout)
	rg.GET("/user", authMW, h.current)
}

// login POST /login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Invalid(c, "Username and password are required", models.FieldErrors(err))
		return
	}
	issued, err := h.sessions.Login(c.Request.Context(), dto.Username, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.logger.Info("login rejected", zap.String("username", dto.Username), zap.String("ip", c.ClientIP()))
			response.UnauthorizedMsg(c, "Invalid username or password")
			return
		}
		response.InternalError(c, err)
		return
	}
	h.setCookie(c, issued.Token, int(h.sessions.TTL().Seconds()))
	h.logger.Info("login", zap.Uint("user_id", issued.User.ID), zap.String("session_id", issued.Session.ID))
	response.OK(c, loginResponse{Token: issued.Token, User: issued.User})
}

// logout POST /logout
func (h *Handler) logout(c *gin.Context) {
	if s := middleware.CurrentSession(c); s != nil {
		if err := h.sessions.Logout(c.Request.Context(), s.ID); err != nil {
			response.InternalError(c, err)
			return
		}
	}
	h.setCookie(c, "", -1)
	response.NoContent(c)
}

// current GET /user
func (h *Handler) current(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Unauthorized(c)
		return
	}
	response.OK(c, u)
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", c.Request.TLS != nil, true)
}
