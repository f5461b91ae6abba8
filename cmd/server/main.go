package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/health-assessment-mcp-server/internal/api"
	"github.com/health-assessment-mcp-server/internal/cache"
	"github.com/health-assessment-mcp-server/internal/config"
	"github.com/health-assessment-mcp-server/internal/logging"
	"github.com/health-assessment-mcp-server/internal/mcp"
	"github.com/health-assessment-mcp-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, logging.Output(cfg.Logging.Output, true))

	var (
		assessorOpts []service.AssessorOption
		serverOpts   []api.ServerOption
	)
	if cfg.Cache.Enabled {
		resultCache, err := cache.New(cfg.Cache, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create result cache")
		}
		defer resultCache.Close()

		assessorOpts = append(assessorOpts, service.WithResultCache(resultCache))
		serverOpts = append(serverOpts, api.WithCache(resultCache))
	}

	assessor := service.NewAssessor(logger, assessorOpts...)

	mcpServer := mcp.NewServer(assessor, logger,
		mcp.WithImplementation(cfg.MCP.ServerName, cfg.MCP.ServerVersion),
		mcp.WithHTTPAddr("", cfg.MCP.Endpoint),
	)
	serverOpts = append(serverOpts, api.WithMCPHandler(mcpServer.Endpoint(), mcpServer.HTTPHandler()))

	server := api.NewServer(configManager, assessor, logger, serverOpts...)

	logger.WithFields(logrus.Fields{
		"host":         cfg.Server.Host,
		"port":         cfg.Server.Port,
		"environment":  cfg.Environment,
		"mcp_endpoint": mcpServer.Endpoint(),
	}).Info("Starting health assessment server")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
