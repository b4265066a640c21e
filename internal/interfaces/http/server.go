// Package http is the thin HTTP adapter over the application services. It
// translates requests, maps the service error taxonomy to status codes and
// never holds business rules of its own.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/udistrital/trabajo_grado_core/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config        ServerConfig
	httpServer    *http.Server
	router        *gin.Engine
	projects      service.ProjectService
	submissions   service.SubmissionService
	reviews       service.ReviewService
	consolidation service.ConsolidationService
	logger        Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	projects service.ProjectService,
	submissions service.SubmissionService,
	reviews service.ReviewService,
	consolidation service.ConsolidationService,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:        config,
		router:        gin.New(),
		projects:      projects,
		submissions:   submissions,
		reviews:       reviews,
		consolidation: consolidation,
		logger:        logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.projects, s.submissions, s.reviews, s.consolidation, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/projects", handlers.CreateProject)
		api.GET("/projects", handlers.ListProjects)
		api.GET("/projects/:id", handlers.GetProject)
		api.GET("/projects/:id/stages", handlers.GetStages)
		api.GET("/projects/:id/audit", handlers.GetAuditTrail)
		api.POST("/projects/:id/final-delivery", handlers.RegisterFinalDelivery)
		api.PUT("/projects/:id/status", handlers.OverrideGlobalStatus)

		api.POST("/stages/:id/submissions", handlers.CreateSubmission)
		api.GET("/stages/:id/submissions", handlers.GetSubmissions)
		api.POST("/stages/:id/jury", handlers.AssignJury)
		api.POST("/stages/:id/evaluations", handlers.RecordEvaluation)
		api.POST("/stages/:id/grade", handlers.RecordDefenseGrade)
		api.POST("/stages/:id/defense", handlers.ScheduleDefense)
		api.GET("/stages/:id/decision", handlers.GetDecision)
		api.POST("/stages/:id/consolidate", handlers.Consolidate)

		api.POST("/submissions/:id/endorsements", handlers.RecordEndorsement)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
