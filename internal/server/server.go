// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"time"

	"qawala/internal/bootstrap"
	"qawala/internal/config"
	"qawala/internal/events"
	"qawala/internal/featureflags"
	"qawala/internal/middleware"
	"qawala/internal/models"
	"qawala/internal/notifications"
	"qawala/internal/repository"
	"qawala/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
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
	auth           *middleware.Authenticator
	limiter        *middleware.Limiter
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	dispatcher     *notifications.Dispatcher
	events         events.Publisher
	featureFlags   *featureflags.Manager

	likeService        *service.LikeService
	blogService        *service.BlogService
	pageService        *service.PageService
	courseService      *service.CourseService
	testimonialService *service.TestimonialService
	userService        *service.UserService
	settingsService    *service.SettingsService
	aggregateService   *service.AggregateService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Redis is optional; a nil client disables caching, pub/sub and rate limits.
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{
		SeedBuiltIns: cfg.Env == "development",
	})
	if err != nil {
		return nil, err
	}

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	return NewServerWithDeps(cfg, db, redisClient, publisher)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// publisher may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, publisher events.Publisher) (*Server, error) {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	likeRepo := repository.NewLikeRepository(db)
	postRepo := repository.NewBlogPostRepository(db)
	pageRepo := repository.NewPageRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	testimonialRepo := repository.NewTestimonialRepository(db)
	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("qawala-api"),
		auth:           middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, redisClient),
		limiter:        middleware.LimiterForEnv(redisClient, cfg.Env),
		hub:            notifications.NewHub(),
		events:         publisher,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}
	s.dispatcher = notifications.NewDispatcher(s.hub, s.notifier)

	s.likeService = service.NewLikeService(likeRepo, s.dispatcher, publisher, s.featureFlags)
	s.blogService = service.NewBlogService(postRepo, s.dispatcher)
	s.pageService = service.NewPageService(pageRepo, s.dispatcher)
	s.courseService = service.NewCourseService(courseRepo, enrollmentRepo, s.dispatcher, publisher)
	s.testimonialService = service.NewTestimonialService(testimonialRepo, s.dispatcher)
	s.userService = service.NewUserService(userRepo)
	s.settingsService = service.NewSettingsService(settingsRepo, s.dispatcher)
	s.aggregateService = service.NewAggregateService(postRepo, courseRepo, testimonialRepo, enrollmentRepo, settingsRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:9002"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        200,
		Expiration: 1 * time.Minute,
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "QAWala API Metrics",
	}))

	api.Get("/home", s.GetHome)
	api.Get("/settings", s.GetSettings)
	api.Get("/testimonials", s.GetTestimonials)
	api.Get("/pages/:slug", s.GetPage)

	blogs := api.Group("/blogs")
	blogs.Get("/", s.GetBlogPosts)
	// Specific routes before the generic /:slug route
	blogs.Get("/likes", s.GetLikeCounts)
	blogs.Get("/:id/likes", s.auth.Optional(), s.GetLikes)
	blogs.Post("/:id/like", s.auth.Required(), s.limiter.Handler(middleware.LikeToggleLimit), s.ToggleLike)
	blogs.Get("/:slug", s.GetBlogPost)

	courses := api.Group("/courses")
	courses.Get("/", s.GetCourses)
	courses.Post("/:slug/enrollments", s.limiter.Handler(middleware.EnrollmentLimit), s.Enroll)
	courses.Get("/:slug", s.GetCourse)

	users := api.Group("/users", s.auth.Required())
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)

	api.Get("/ws", s.auth.Optional(), s.WebsocketUpgrade, s.WebsocketHandler())

	admin := api.Group("/admin", s.auth.Required(), s.AdminRequired())
	admin.Get("/dashboard", s.GetDashboard)
	admin.Get("/feature-flags", s.GetFeatureFlags)

	adminBlogs := admin.Group("/blogs")
	adminBlogs.Get("/", s.GetBlogPosts)
	adminBlogs.Post("/", s.CreateBlogPost)
	adminBlogs.Put("/:id", s.UpdateBlogPost)
	adminBlogs.Delete("/:id", s.DeleteBlogPost)

	adminPages := admin.Group("/pages")
	adminPages.Get("/", s.GetPages)
	adminPages.Post("/", s.CreatePage)
	adminPages.Put("/:id", s.UpdatePage)
	adminPages.Delete("/:id", s.DeletePage)

	adminCourses := admin.Group("/courses")
	adminCourses.Get("/", s.GetCourses)
	adminCourses.Post("/", s.CreateCourse)
	adminCourses.Get("/:slug/enrollments", s.GetEnrollments)
	adminCourses.Put("/:id", s.UpdateCourse)
	adminCourses.Delete("/:id", s.DeleteCourse)

	adminTestimonials := admin.Group("/testimonials")
	adminTestimonials.Get("/", s.GetTestimonials)
	adminTestimonials.Post("/", s.CreateTestimonial)
	adminTestimonials.Put("/:id", s.UpdateTestimonial)
	adminTestimonials.Delete("/:id", s.DeleteTestimonial)

	adminUsers := admin.Group("/users")
	adminUsers.Get("/", s.GetUsers)
	adminUsers.Put("/:uid/role", s.SetUserRole)

	admin.Put("/settings", s.UpdateSettings)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports unhealthy when the database is down. Redis is optional,
// so a missing client only degrades the report.
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

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	switch {
	case dbStatus == "unhealthy" || redisStatus == "unhealthy":
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	case redisStatus == "unavailable":
		overallStatus = "degraded"
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

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after the auth middleware so the user ID is in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, err := s.userService.IsAdmin(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:   "QAWala API",
		BodyLimit: 4 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start realtime wiring", "error", err)
			}
		}()
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
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down websocket hub", "error", err)
	}

	if err := s.events.Close(); err != nil {
		middleware.Logger.Error("error closing event publisher", "error", err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
