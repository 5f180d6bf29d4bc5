package category

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/portfolio/internal/middleware"
	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/pkg/response"
	"github.com/mx-space/portfolio/internal/pkg/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	cats := rg.Group("/categories")
	cats.GET("", h.list)
	cats.POST("", authMW, h.create)
}

// list GET /categories?type=project|blog
func (h *Handler) list(c *gin.Context) {
	typ := models.CategoryType(c.Query("type"))
	if typ != "" && !typ.Valid() {
		response.BadRequest(c, "Invalid category type")
		return
	}
	cats, err := h.svc.List(c.Request.Context(), typ)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, cats)
}

func (h *Handler) create(c *gin.Context) {
	var in models.InsertCategory
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Invalid(c, "Invalid category data", models.FieldErrors(err))
		return
	}
	cat, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			response.Invalid(c, ve.Describe("Invalid category data"), ve.Fields)
			return
		}
		if errors.Is(err, session.ErrUnauthorized) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, cat)
}
