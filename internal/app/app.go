package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mx-space/portfolio/internal/config"
	"github.com/mx-space/portfolio/internal/database"
	"github.com/mx-space/portfolio/internal/middleware"
	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/modules/content/contact"
	pkgcron "github.com/mx-space/portfolio/internal/pkg/cron"
	jwtpkg "github.com/mx-space/portfolio/internal/pkg/jwt"
	pkgredis "github.com/mx-space/portfolio/internal/pkg/redis"
	"github.com/mx-space/portfolio/internal/pkg/session"
	"github.com/mx-space/portfolio/internal/pkg/telegram"
	"github.com/mx-space/portfolio/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer runs on. New builds them from
// config; tests pass their own to NewWithDeps.
type Deps struct {
	Store    store.Store
	Sessions *session.Manager
	Notifier contact.Notifier
	// Redis is optional. Without it the contact form is not rate limited.
	Redis  *redis.Client
	Logger *zap.Logger
}

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	deps    Deps
	logger  *zap.Logger
	started time.Time
	sched   *pkgcron.Scheduler
	cancel  context.CancelFunc
	closers []func() error
}

const sessionSweepInterval = 10 * time.Minute

// New builds the store, Redis client, session manager and notifier from cfg, then the router.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	ctx := context.Background()
	var closers []func() error

	var st store.Store
	switch cfg.Store.Driver {
	case config.StoreMySQL:
		db, err := database.Connect(cfg, true)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		closers = append(closers, func() error { return database.Close(db) })
		st = store.NewGormStore(db)
	default:
		st = store.NewMemoryStore()
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rc, err := pkgredis.Connect(ctx, cfg.Redis.URLValue())
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, rc.Close)
		rdb = rc.Raw()
	}

	var sessions session.Store
	var memSessions *session.MemoryStore
	if cfg.Session.Backend == config.SessionRedis {
		sessions = session.NewRedisStore(rdb)
	} else {
		memSessions = session.NewMemoryStore()
		sessions = memSessions
	}
	signer, err := jwtpkg.NewSigner(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}

	err = store.Seed(ctx, st, store.SeedOptions{
		AdminUsername: cfg.Admin.Username,
		AdminPassword: cfg.Admin.Password,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	notifier := telegram.New(telegram.Config{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		APIBase:  cfg.Telegram.APIBase,
		Timeout:  cfg.Telegram.Timeout,
	}, logger)
	if !notifier.Enabled() {
		logger.Warn("telegram is not configured, contact messages will only be stored")
	}

	a := NewWithDeps(cfg, Deps{
		Store:    st,
		Sessions: session.NewManager(sessions, st, signer, cfg.Session.TTL),
		Notifier: notifier,
		Redis:    rdb,
		Logger:   logger,
	})
	a.closers = closers

	// Redis expires its own keys; only the in-process store needs sweeping.
	if memSessions != nil {
		a.sched.Register(pkgcron.Job{
			Name:     "session-sweep",
			Interval: sessionSweepInterval,
			Fn: func(ctx context.Context) error {
				n, err := memSessions.Prune(ctx)
				if n > 0 {
					logger.Debug("expired sessions pruned", zap.Int("count", n))
				}
				return err
			},
		})
	}
	cronCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.sched.Start(cronCtx)

	logger.Info("app initialized",
		zap.String("store", cfg.Store.Driver),
		zap.String("session_backend", cfg.Session.Backend),
		zap.Bool("redis", rdb != nil),
	)
	return a, nil
}

// NewWithDeps builds the router on top of ready collaborators.
func NewWithDeps(cfg *config.AppConfig, deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	configureBinding()

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(deps.Logger))

	router.Use(newCORS(cfg))

	a := &App{
		cfg:     cfg,
		router:  router,
		deps:    deps,
		logger:  deps.Logger,
		started: time.Now(),
		sched:   pkgcron.New(deps.Logger),
	}
	a.registerRoutes()
	return a
}

var bindingOnce sync.Once

// configureBinding makes gin's validator report JSON field names.
func configureBinding() {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			models.ConfigureBinding(v)
		}
	})
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs, waits for in-flight notifications bounded
// by ctx, then releases the database and Redis connections.
func (a *App) Shutdown(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
		a.sched.Wait()
	}
	if w, ok := a.deps.Notifier.(interface{ Wait() }); ok {
		done := make(chan struct{})
		go func() {
			w.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			a.logger.Warn("notifications still pending at shutdown")
		}
	}
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
