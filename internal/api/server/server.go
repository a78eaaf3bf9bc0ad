package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lyre-server/internal/api/middleware"
	v1routes "lyre-server/internal/api/v1/routes"
	"lyre-server/internal/app/auth"
)

// Config holds HTTP server settings.
type Config struct {
	Host        string
	Port        string
	Environment string

	// AuthEnabled turns on bearer-token checks for /api routes.
	AuthEnabled bool
}

// Server is the HTTP front of the transcription service.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// New assembles the gin engine, middleware chain and routes.
func New(config Config, deps v1routes.Deps, verifier auth.TokenVerifier, logger *zap.Logger) *Server {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.BearerAuth(verifier, config.AuthEnabled, logger))
	v1routes.Register(api, deps)

	addr := fmt.Sprintf("%s:%s", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
		// No WriteTimeout: /api/events streams indefinitely.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		config:     config,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Start runs the listener until Shutdown or a fatal error.
func (s *Server) Start() error {
	s.logger.Info("http server starting",
		zap.String("addr", s.httpServer.Addr),
		zap.String("environment", s.config.Environment))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
