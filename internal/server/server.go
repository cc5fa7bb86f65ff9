// Package server contains the HTTP handlers and routing for the public API.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "leanvote/docs" // swagger docs
	"leanvote/internal/cache"
	"leanvote/internal/config"
	"leanvote/internal/database"
	"leanvote/internal/featureflags"
	"leanvote/internal/middleware"
	"leanvote/internal/models"
	"leanvote/internal/repository"
	"leanvote/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	stripe "github.com/stripe/stripe-go/v79"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo      repository.UserRepository
	projectRepo   repository.ProjectRepository
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	purchaseRepo  repository.PurchaseRepository
	changelogRepo repository.ChangelogRepository

	featureFlags *featureflags.Manager
	oauthConfig  *oauth2.Config

	userService      *service.UserService
	projectService   *service.ProjectService
	boardService     *service.BoardService
	postService      *service.PostService
	commentService   *service.CommentService
	changelogService *service.ChangelogService
	widgetService    *service.WidgetService
	billingService   *service.BillingService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	stripe.Key = cfg.StripeSecretKey

	prom := fiberprometheus.New("leanvote-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       repository.NewUserRepository(db),
		projectRepo:    repository.NewProjectRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		purchaseRepo:   repository.NewPurchaseRepository(db),
		changelogRepo:  repository.NewChangelogRepository(db),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	if cfg.GoogleClientID != "" {
		server.oauthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	server.userService = service.NewUserService(server.userRepo, server.projectRepo, cfg.TrialDays)
	server.projectService = service.NewProjectService(server.projectRepo, server.userRepo)
	server.boardService = service.NewBoardService(server.projectRepo)
	server.postService = service.NewPostService(server.postRepo, server.userRepo)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo)
	server.changelogService = service.NewChangelogService(server.changelogRepo, server.projectRepo, server.userRepo)
	server.widgetService = service.NewWidgetService(server.projectRepo, server.postRepo, server.featureFlags)
	server.billingService = service.NewBillingService(
		server.userRepo, server.purchaseRepo, server.projectRepo,
		service.BillingURLs{
			SuccessURL: cfg.BillingSuccessURL,
			CancelURL:  cfg.BillingCancelURL,
			PortalURL:  cfg.BillingPortalReturn,
		})

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses. Widget and board-lookup routes get their own permissive
	// policy in SetupRoutes because they are embedded on customer sites.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// widgetCORS is the permissive policy for endpoints embedded on customer
// sites. No credentials are allowed, so a wildcard origin is safe.
func widgetCORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	})
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "LeanVote Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/google/login", s.GoogleLogin)
	auth.Get("/google/callback", s.GoogleCallback)

	// Public board lookup routes. Open CORS: the landing widget and browser
	// extension call these from arbitrary origins.
	boards := api.Group("/boards", widgetCORS())
	boards.Get("/resolve", middleware.RateLimit(
		s.redis, 30, time.Minute, "board_resolve"), s.ResolveBoard)
	boards.Get("/exists", s.BoardExists)
	boards.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "board_search"), s.SearchBoards)
	// Public board content; OptionalAuth computes has_voted for logged-in voters.
	boards.Get("/:slug/posts", middleware.OptionalAuth, s.GetBoardPosts)
	boards.Get("/:slug/roadmap", middleware.OptionalAuth, s.GetRoadmap)
	boards.Get("/:slug/changelog", s.GetPublishedChangelog)

	// Public post reads
	publicPosts := api.Group("/posts")
	publicPosts.Get("/:id/comments", s.GetComments)
	publicPosts.Get("/:id", middleware.OptionalAuth, s.GetPost)

	// Embeddable widget routes: open CORS, anonymous submissions.
	widget := api.Group("/widget", widgetCORS())
	widget.Get("/:slug/posts", s.GetWidgetPosts)
	widget.Post("/:slug/posts", middleware.RateLimit(
		s.redis, 5, time.Minute, "widget_submit"), s.SubmitWidgetPost)

	// Payment provider webhook. Verified by signature, never by session.
	api.Post("/billing/webhook", s.StripeWebhook)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMySettings)
	users.Post("/me/onboard", s.Onboard)
	users.Get("/me/access", s.GetAccessStatus)
	users.Get("/me/pricing", s.GetPricing)

	// Project (board management) routes
	projects := protected.Group("/projects")
	projects.Post("/", s.CreateProject)
	projects.Get("/", s.GetProjects)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	projects.Post("/:id/default", s.SetDefaultProject)
	projects.Post("/:id/changelog", s.CreateChangelogEntry)
	projects.Get("/:id/changelog", s.GetAllChangelogEntries)
	projects.Get("/:id", s.GetProject)
	projects.Put("/:id", s.UpdateProject)
	projects.Delete("/:id", s.DeleteProject)

	// Protected post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/vote", middleware.RateLimit(
		s.redis, 30, time.Minute, "vote"), s.ToggleVote)
	posts.Put("/:id/status", s.UpdatePostStatus)
	posts.Post("/:id/promote", s.PromoteToRoadmap)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Delete("/:id", s.DeletePost)

	protected.Delete("/comments/:id", s.DeleteComment)

	// Changelog entry management
	changelog := protected.Group("/changelog")
	changelog.Post("/:id/publish", s.PublishChangelogEntry)
	changelog.Put("/:id", s.UpdateChangelogEntry)
	changelog.Delete("/:id", s.DeleteChangelogEntry)

	// Billing routes
	billing := protected.Group("/billing")
	billing.Post("/checkout", s.CreateCheckoutSession)
	billing.Post("/portal", s.CreatePortalSession)

	protected.Get("/feature-flags", s.GetFeatureFlags)
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
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

	// Redis is an optional accelerator; a down cache degrades latency, not
	// correctness, so it does not fail readiness.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "LeanVote API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
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
