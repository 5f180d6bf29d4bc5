package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/portfolio/internal/middleware"
	"github.com/mx-space/portfolio/internal/modules/auth/user"
	"github.com/mx-space/portfolio/internal/modules/content/blog"
	"github.com/mx-space/portfolio/internal/modules/content/category"
	"github.com/mx-space/portfolio/internal/modules/content/contact"
	"github.com/mx-space/portfolio/internal/modules/content/project"
	"github.com/mx-space/portfolio/internal/pkg/response"
	"github.com/mx-space/portfolio/internal/store"
	"go.uber.org/zap"
)

const apiPrefix = "/api"

func (a *App) registerRoutes() {
	r := a.router
	st := a.deps.Store
	log := a.logger
	authMW := middleware.Auth(a.deps.Sessions, log)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(a.deps.Sessions))

	api.GET("/health", a.health)

	categorySvc := category.NewService(st)
	category.NewHandler(categorySvc).RegisterRoutes(api, authMW)
	project.NewHandler(project.NewService(st, categorySvc, log)).RegisterRoutes(api, authMW)
	blog.NewHandler(blog.NewService(st, categorySvc, log)).RegisterRoutes(api, authMW)

	var limitMW gin.HandlerFunc
	if a.deps.Redis != nil && a.cfg.ContactRateLimit > 0 {
		limitMW = middleware.RateLimit(a.deps.Redis, "contact", a.cfg.ContactRateLimit, time.Minute, log)
	}
	contact.NewHandler(contact.NewService(st, a.deps.Notifier, log)).RegisterRoutes(api, authMW, limitMW)

	user.NewHandler(a.deps.Sessions, log).RegisterRoutes(api, authMW)
}

// health GET /api/health
func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status": "ok",
		"store":  a.cfg.Store.Driver,
		"uptime": humanizeDuration(time.Since(a.started)),
		"jobs":   a.sched.List(),
	}
	if _, err := a.deps.Store.Count(ctx, store.KindCategory); err != nil {
		a.logger.Error("health: store unavailable", zap.Error(err))
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["store_error"] = err.Error()
	}
	if a.deps.Redis != nil {
		if err := a.deps.Redis.Ping(ctx).Err(); err != nil {
			a.logger.Error("health: redis unavailable", zap.Error(err))
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["redis"] = "down"
		} else {
			body["redis"] = "up"
		}
	}
	c.JSON(status, body)
}
