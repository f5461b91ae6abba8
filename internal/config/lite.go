// Package config provides configuration management for the assessment servers.
// This file contains the lightweight, environment-only configuration used by
// the standalone MCP server.
package config

import (
	"os"
	"strconv"
	"time"
)

// LiteConfig is a simplified configuration for standalone operation.
// It requires no config file and no external services.
type LiteConfig struct {
	// Cache settings
	CacheMaxItems int           // Maximum items in memory cache
	CacheTTL      time.Duration // Default cache TTL
	RedisURL      string        // Optional shared cache tier

	// Transport settings
	Transport string // Transport type: stdio, http
	HTTPHost  string // Bind host (if transport is http)
	HTTPPort  int    // HTTP port (if transport is http)

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	return &LiteConfig{
		CacheMaxItems: 1000,
		CacheTTL:      time.Hour,
		Transport:     "stdio",
		HTTPHost:      "127.0.0.1",
		HTTPPort:      8081,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set or unparsable.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	// Cache settings
	if v := os.Getenv("HEALTH_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("HEALTH_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	cfg.RedisURL = os.Getenv("HEALTH_REDIS_URL")

	// Transport
	if v := os.Getenv("HEALTH_TRANSPORT"); v != "" {
		cfg.Transport = v
	}
	if v := os.Getenv("HEALTH_HTTP_HOST"); v != "" {
		cfg.HTTPHost = v
	}
	if v := os.Getenv("HEALTH_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	// Logging
	if v := os.Getenv("HEALTH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HEALTH_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// HTTPAddr returns the listen address for the streamable HTTP transport.
func (c *LiteConfig) HTTPAddr() string {
	return c.HTTPHost + ":" + strconv.Itoa(c.HTTPPort)
}
