// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"classichub-service/internal/app/service"
	"classichub-service/internal/metrics"
	"classichub-service/internal/relay"
	"classichub-service/internal/transport/httpserver/dto"
	"classichub-service/internal/transport/httpserver/handler"
	"classichub-service/internal/transport/httpserver/middleware"
	"classichub-service/internal/validator"
	"classichub-service/web"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	BodyLimit      int
	RequestTimeout time.Duration
	HealthTimeout  time.Duration
	Location       *time.Location // dates in query parameters
}

// Dependencies are the services and infrastructure the routes use. Relay
// and Metrics are optional.
type Dependencies struct {
	Performances *service.PerformanceService
	Artists      *service.ArtistService
	News         *service.NewsService
	Media        *service.MediaService
	Stores       handler.StatsSource
	Relay        *relay.Relay
	Metrics      prometheus.Gatherer
	Checks       map[string]middleware.Check
	Validator    *validator.Validator
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg ServerConfig, deps Dependencies, logger *zap.Logger) (*Server, error) {
	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("loading static files: %w", err)
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 2 * time.Second
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}

	app := fiber.New(fiber.Config{
		AppName:      "classichub-service",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
		Views:        html.NewFileSystem(http.FS(templates), ".html"),
	})

	// Health check middleware MUST be registered BEFORE other middleware
	// for Kubernetes probes to work even during high load
	app.Use(middleware.NewHealthCheck(cfg.HealthTimeout, deps.Checks))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(middleware.CORS())
	app.Use(compress.New())
	app.Use(middleware.RequestContext(cfg.RequestTimeout))

	app.Use("/static", filesystem.New(filesystem.Config{Root: http.FS(static)}))

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(deps.Metrics)))
	}

	var relayTargets []string
	if deps.Relay != nil {
		relayTargets = deps.Relay.Targets()
		app.Get("/api/relay/:provider", deps.Relay.Handler)
	}

	registerRoutes(app,
		handler.NewPerformanceHandler(deps.Performances, deps.Validator, cfg.Location, logger),
		handler.NewArtistHandler(deps.Artists, deps.Validator, logger),
		handler.NewNewsHandler(deps.News, deps.Validator, logger),
		handler.NewMediaHandler(deps.Media, deps.Validator, logger),
		handler.NewDashboardHandler(deps.Stores, deps.Artists, relayTargets, logger),
	)

	return &Server{
		App:    app,
		Logger: logger,
	}, nil
}

// registerRoutes sets up all API routes.
func registerRoutes(
	app *fiber.App,
	performances *handler.PerformanceHandler,
	artists *handler.ArtistHandler,
	news *handler.NewsHandler,
	media *handler.MediaHandler,
	dashboard *handler.DashboardHandler,
) {
	// Health checks are handled by middleware (/livez, /readyz)

	app.Get("/dashboard", dashboard.Render)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	v1 := app.Group("/api/v1")

	perf := v1.Group("/performances")
	perf.Get("/", performances.List)
	perf.Get("/:id", performances.Detail)
	perf.Get("/:id/location", performances.Location)

	art := v1.Group("/artists")
	art.Get("/", artists.List)
	art.Get("/weekly", artists.Weekly)
	art.Get("/:id", artists.Get)
	art.Post("/:id/follow", artists.ToggleFollow)
	art.Get("/:id/cheers", artists.Cheers)
	art.Post("/:id/cheers", artists.AddCheer)
	art.Get("/:id/videos", media.ArtistVideos)

	v1.Get("/follows", artists.Follows)
	v1.Delete("/cheers/:id", artists.DeleteCheer)

	v1.Get("/composers", artists.Composers)
	v1.Get("/composers/:id/works", artists.Works)

	v1.Get("/news", news.Search)
	v1.Get("/news/sources", news.Sources)

	v1.Get("/videos", media.Search)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level (expected client behavior), 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: message,
			Code:  "UNHANDLED_ERROR",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server, waiting at most timeout for
// open requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.ShutdownWithTimeout(timeout)
}
