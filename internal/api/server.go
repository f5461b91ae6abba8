package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/health-assessment-mcp-server/internal/domain"
	"github.com/health-assessment-mcp-server/internal/middleware"
	"github.com/health-assessment-mcp-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	assessor      *service.Assessor
	cache         domain.ResultCache
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
	mcpEndpoint   string
	mcpHandler    http.Handler
}

// statsReporter is implemented by caches that expose runtime counters.
type statsReporter interface {
	Stats() map[string]interface{}
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server)

// WithCache reports the result cache on /health.
func WithCache(cache domain.ResultCache) ServerOption {
	return func(s *Server) {
		s.cache = cache
	}
}

// WithMCPHandler mounts an MCP streamable HTTP handler at endpoint.
func WithMCPHandler(endpoint string, handler http.Handler) ServerOption {
	return func(s *Server) {
		s.mcpEndpoint = endpoint
		s.mcpHandler = handler
	}
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, assessor *service.Assessor, logger *logrus.Logger, opts ...ServerOption) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if configManager.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	}

	server := &Server{
		configManager: configManager,
		assessor:      assessor,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(server)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AuditLogger(logger))
	server.router = router

	// Request-scoped limits apply to the REST routes only; MCP streams are long-lived.
	limits := []gin.HandlerFunc{middleware.RequestTimeout(cfg.Server.RequestTimeout)}
	if cfg.RateLimit.Enabled {
		limits = append(limits, middleware.RateLimit(middleware.NewClientRateLimiter(cfg.RateLimit)))
	}

	server.setupRoutes(router.Group("", limits...))

	return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"addr": addr,
			"tls":  cfg.TLSEnabled,
		}).Info("HTTP server listening")

		var err error
		if cfg.TLSEnabled {
			err = s.server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes(rest *gin.RouterGroup) {
	rest.GET("/health", s.handleHealth)

	v1 := rest.Group("/api/v1")
	{
		v1.POST("/assessments", s.handleAssess)
		v1.POST("/validate", s.handleValidate)
		v1.GET("/rules", s.handleRules)
		v1.GET("/reference-values", s.handleReferenceValues)
	}

	if s.mcpHandler != nil {
		s.router.Any(s.mcpEndpoint, gin.WrapH(s.mcpHandler))
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	checks := gin.H{"engine": "ok"}
	if s.cache != nil {
		if err := s.cache.Ping(c.Request.Context()); err != nil {
			checks["cache"] = "degraded"
		} else {
			checks["cache"] = "ok"
		}
		if reporter, ok := s.cache.(statsReporter); ok {
			checks["cache_stats"] = reporter.Stats()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"timestamp":      time.Now().UTC(),
		"engine_version": service.EngineVersion,
		"checks":         checks,
	})
}

func (s *Server) handleAssess(c *gin.Context) {
	input, ok := s.bindInput(c)
	if !ok {
		return
	}

	assessment, err := s.assessor.Assess(c.Request.Context(), input)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

func (s *Server) handleValidate(c *gin.Context) {
	input, ok := s.bindInput(c)
	if !ok {
		return
	}

	if err := s.assessor.Validate(input); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (s *Server) handleRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": s.assessor.Engine().Rules()})
}

func (s *Server) handleReferenceValues(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reference_values": domain.IdealReferenceValues()})
}

func (s *Server) bindInput(c *gin.Context) (*domain.PatientInput, bool) {
	var input domain.PatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewMCPError(
			domain.ErrInvalidInput,
			"Request body is not a valid patient input",
			err.Error(),
			c.GetString(middleware.CorrelationIDKey),
		))
		return nil, false
	}
	return &input, true
}

// respondError maps validation failures to 422 and everything else to 500.
func (s *Server) respondError(c *gin.Context, err error) {
	requestID := c.GetString(middleware.CorrelationIDKey)

	if ve, ok := domain.AsValidationError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": domain.NewMCPError(domain.ErrValidation, ve.Error(), ve.Field, requestID),
			"field": ve.Field,
		})
		return
	}

	s.logger.WithError(err).WithField("correlation_id", requestID).Error("Assessment failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": domain.NewMCPError(domain.ErrInternalServer, "Internal server error", "", requestID),
	})
}
