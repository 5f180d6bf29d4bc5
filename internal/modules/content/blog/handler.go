package blog

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/portfolio/internal/middleware"
	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/pkg/params"
	"github.com/mx-space/portfolio/internal/pkg/response"
	"github.com/mx-space/portfolio/internal/pkg/session"
	"github.com/mx-space/portfolio/internal/store"
)

const notFoundMessage = "Blog post not found"

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/blog")
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/:id/html", h.render)
	g.POST("", authMW, h.create)
}

// list GET /blog?category=:id
func (h *Handler) list(c *gin.Context) {
	categoryID, err := params.OptionalID(c, "category")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	items, err := h.svc.List(c.Request.Context(), categoryID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, items)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		response.NotFoundMsg(c, notFoundMessage)
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFoundMsg(c, notFoundMessage)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) create(c *gin.Context) {
	var in models.InsertBlogPost
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Invalid(c, "Invalid blog post data", models.FieldErrors(err))
		return
	}
	p, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			response.Invalid(c, ve.Describe("Invalid blog post data"), ve.Fields)
			return
		}
		if errors.Is(err, session.ErrUnauthorized) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, p)
}

// render GET /blog/:id/html
func (h *Handler) render(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		response.NotFoundMsg(c, notFoundMessage)
		return
	}
	doc, err := h.svc.Render(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFoundMsg(c, notFoundMessage)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, doc)
}
