// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"time"

	"tintuc/internal/auth"
	"tintuc/internal/cache"
	"tintuc/internal/config"
	"tintuc/internal/database"
	"tintuc/internal/featureflags"
	"tintuc/internal/mailer"
	"tintuc/internal/middleware"
	"tintuc/internal/models"
	"tintuc/internal/repository"
	"tintuc/internal/scraper"
	"tintuc/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	tokens       *auth.TokenManager
	featureFlags *featureflags.Manager
	newsCache    *scraper.NewsCache

	userRepo    repository.UserRepository
	articleRepo repository.ArticleRepository

	authService    *service.AuthService
	userService    *service.UserService
	articleService *service.ArticleService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)

	prom := middleware.InitMetrics("tintuc-api")

	var mail mailer.Mailer
	mail, err := mailer.NewSMTPMailer(cfg)
	if err != nil {
		middleware.Logger.Warn("SMTP not configured, account emails disabled", "error", err)
		mail = mailer.NoopMailer{}
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		tokens:         tokens,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       userRepo,
		articleRepo:    articleRepo,
	}
	server.authService = service.NewAuthService(userRepo, tokens, mail, cfg.ResetTokenExpiry)
	server.userService = service.NewUserService(userRepo)
	server.articleService = service.NewArticleService(articleRepo)

	fetcher := scraper.NewFetcher(cfg.ScrapeTimeout, "")
	server.newsCache = scraper.NewNewsCache(fetcher, cfg.ScrapeInterval, 0)

	return server, nil
}

// SetNewsCache swaps the scrape cache. Tests use it to inject a cache backed
// by a local HTTP server.
func (s *Server) SetNewsCache(nc *scraper.NewsCache) {
	s.newsCache = nc
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS before anything that can short-circuit, so error responses still
	// carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	max := s.config.RateLimitMax
	if max <= 0 {
		max = 100
	}
	window := s.config.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	app.Use(limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewValidationError("Too many requests, please try again later"))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/refresh-token", s.Refresh)
	authGroup.Get("/verify-email/:token", s.VerifyEmail)
	authGroup.Post("/forgot-password", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "forgot_password"), s.ForgotPassword)
	authGroup.Post("/reset-password", s.ResetPassword)

	// Public article routes. Specific paths before the generic /:id.
	articles := api.Group("/articles")
	articles.Get("/", s.OptionalAuth(), s.GetArticles)
	articles.Get("/featured", s.GetFeaturedArticles)
	articles.Get("/categories", s.GetCategories)
	articles.Get("/:id", s.OptionalAuth(), s.GetArticle)

	// Protected article routes
	articles.Post("/", s.AuthRequired(), s.CreateArticle)
	articles.Patch("/:id", s.AuthRequired(), s.UpdateArticle)
	articles.Delete("/:id", s.AuthRequired(), s.DeleteArticle)

	// Scraped news snapshot
	api.Get("/news", s.GetNews)

	// User routes
	users := api.Group("/users", s.AuthRequired())
	users.Get("/", s.AdminRequired(), s.GetUsers)
	users.Get("/me", s.GetMe)
	users.Get("/:id/profile", s.GetUserProfile)
	users.Get("/:id", s.GetUser)
	users.Patch("/:id", s.UpdateUser)
	users.Delete("/:id", s.AdminRequired(), s.DeleteUser)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional: the app degrades to uncached reads.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server and, when enabled, the scrape refresher.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Tin Tuc API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.Error("unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.config.ScrapeEnabled && s.featureFlags.Enabled(featureflags.FlagScraper, 0) {
		go s.newsCache.Run(s.shutdownCtx)
	} else {
		middleware.Logger.Info("scrape refresher disabled")
	}

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
