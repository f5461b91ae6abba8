// Package mcp exposes the health assessment engine as Model Context Protocol
// tools and resources over stdio or streamable HTTP.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/health-assessment-mcp-server/internal/service"
)

// Server wraps an MCP SDK server bound to an Assessor.
type Server struct {
	assessor  *service.Assessor
	mcpServer *mcp.Server
	logger    *logrus.Logger
	name      string
	version   string
	httpAddr  string
	endpoint  string
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server)

// WithImplementation sets the name and version reported during initialization.
func WithImplementation(name, version string) ServerOption {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
		if version != "" {
			s.version = version
		}
	}
}

// WithHTTPAddr sets the listen address and path for the streamable HTTP
// transport. Empty values keep the defaults.
func WithHTTPAddr(addr, endpoint string) ServerOption {
	return func(s *Server) {
		if addr != "" {
			s.httpAddr = addr
		}
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// NewServer creates a new MCP server instance with every tool and resource registered.
func NewServer(assessor *service.Assessor, logger *logrus.Logger, opts ...ServerOption) *Server {
	s := &Server{
		assessor: assessor,
		logger:   logger,
		name:     "health-assessment-mcp-server",
		version:  service.EngineVersion,
		httpAddr: "127.0.0.1:8081",
		endpoint: "/mcp",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    s.name,
		Version: s.version,
	}, nil)

	s.registerTools()
	s.registerResources()

	s.logger.WithFields(logrus.Fields{
		"server_name": s.name,
		"tool_count":  len(toolNames),
	}).Info("MCP server initialized")

	return s
}

// HTTPHandler returns a streamable HTTP handler serving this server.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// Endpoint is the HTTP path the handler is served on.
func (s *Server) Endpoint() string {
	return s.endpoint
}

// Start runs the server on the given transport until ctx is cancelled or the
// client disconnects.
func (s *Server) Start(ctx context.Context, transport TransportType) error {
	s.logger.WithField("transport_type", string(transport)).Info("Starting MCP server")

	switch transport {
	case TransportHTTP:
		return s.serveHTTP(ctx)
	default:
		if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP server failed: %w", err)
		}
		return nil
	}
}

func (s *Server) serveHTTP(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.endpoint, s.HTTPHandler())

	httpServer := &http.Server{
		Addr:              s.httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"addr":     s.httpAddr,
			"endpoint": s.endpoint,
		}).Info("MCP streamable HTTP transport listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("MCP HTTP transport failed: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
