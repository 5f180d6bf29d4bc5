package contact

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/portfolio/internal/middleware"
	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/pkg/response"
	"github.com/mx-space/portfolio/internal/pkg/session"
)

const invalidMessage = "Invalid message data"

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the contact form and the admin inbox. limitMW guards
// the public submission route; pass nil to leave it unlimited.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, limitMW gin.HandlerFunc) {
	if limitMW != nil {
		rg.POST("/contact", limitMW, h.submit)
	} else {
		rg.POST("/contact", h.submit)
	}
	rg.GET("/messages", authMW, h.list)
}

// submit POST /contact
func (h *Handler) submit(c *gin.Context) {
	var in models.InsertMessage
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Invalid(c, invalidMessage, models.FieldErrors(err))
		return
	}
	m, err := h.svc.Submit(c.Request.Context(), in)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			response.Invalid(c, ve.Describe(invalidMessage), ve.Fields)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, m)
}

// list GET /messages
func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		if errors.Is(err, session.ErrUnauthorized) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, items)
}
