// Package main provides the standalone MCP server for the health assessment engine.
// It needs no config file: settings come from HEALTH_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/health-assessment-mcp-server/internal/cache"
	"github.com/health-assessment-mcp-server/internal/config"
	"github.com/health-assessment-mcp-server/internal/domain"
	"github.com/health-assessment-mcp-server/internal/logging"
	"github.com/health-assessment-mcp-server/internal/mcp"
	"github.com/health-assessment-mcp-server/internal/service"
	"github.com/health-assessment-mcp-server/internal/setup"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "health-mcp-server",
		Short:         "Health assessment MCP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
	// Read by mcp.DetectTransport from os.Args; declared so cobra accepts them.
	rootCmd.Flags().Bool("stdio", false, "Serve MCP over stdio")
	rootCmd.Flags().Bool("http", false, "Serve MCP over streamable HTTP")

	rootCmd.AddCommand(setupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer() error {
	cfg := config.LoadLiteConfig()

	// stdout carries the stdio transport.
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	transport := mcp.DetectTransport(os.Args[1:], os.Getenv, cfg.Transport)
	logger.WithFields(logrus.Fields{
		"transport": string(transport),
		"redis":     cfg.RedisURL != "",
	}).Info("Starting health assessment MCP server")

	resultCache, err := cache.New(domain.CacheConfig{
		Enabled:    true,
		MaxItems:   cfg.CacheMaxItems,
		DefaultTTL: cfg.CacheTTL,
		RedisURL:   cfg.RedisURL,
		KeyPrefix:  "health:assessment:",
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create result cache: %w", err)
	}
	defer resultCache.Close()

	assessor := service.NewAssessor(logger, service.WithResultCache(resultCache))
	server := mcp.NewServer(assessor, logger, mcp.WithHTTPAddr(cfg.HTTPAddr(), "/mcp"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, transport); err != nil {
		return err
	}

	logger.Info("Health assessment MCP server stopped")
	return nil
}

func setupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register this server with a desktop MCP client",
	}
	cmd.PersistentFlags().String("config", "", "Client config file (defaults to the platform location)")
	cmd.PersistentFlags().String("name", setup.DefaultServerName, "Server name in the client config")

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Add or update the server entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			name, _ := cmd.Flags().GetString("name")
			binary, _ := cmd.Flags().GetString("binary")
			envPairs, _ := cmd.Flags().GetStringSlice("env")

			if binary == "" {
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("could not determine executable path: %w", err)
				}
				binary = exe
			}

			env, err := parseEnv(envPairs)
			if err != nil {
				return err
			}

			path, err := setup.Register(setup.Options{
				ConfigPath: configPath,
				ServerName: name,
				BinaryPath: binary,
				Args:       []string{"--stdio"},
				Env:        env,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %q in %s\nRestart the client to load the server.\n", name, path)
			return nil
		},
	}
	registerCmd.Flags().String("binary", "", "Server binary path (defaults to this executable)")
	registerCmd.Flags().StringSlice("env", nil, "Environment for the server as KEY=VALUE (repeatable)")

	unregisterCmd := &cobra.Command{
		Use:   "unregister",
		Short: "Remove the server entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			name, _ := cmd.Flags().GetString("name")

			removed, err := setup.Unregister(configPath, name)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%q was not registered\n", name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", name)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the registration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			name, _ := cmd.Flags().GetString("name")

			status, err := setup.GetStatus(configPath, name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n", status.ConfigPath)
			fmt.Fprintf(out, "Registered:  %t\n", status.Registered)
			if status.Registered {
				fmt.Fprintf(out, "Command:     %s %s\n", status.Entry.Command, strings.Join(status.Entry.Args, " "))
			}
			fmt.Fprintf(out, "Servers:     %s\n", strings.Join(status.Servers, ", "))
			for _, issue := range status.Issues {
				fmt.Fprintf(out, "  ! %s\n", issue)
			}
			return nil
		},
	}

	cmd.AddCommand(registerCmd, unregisterCmd, statusCmd)
	return cmd
}

func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --env value %q, expected KEY=VALUE", pair)
		}
		env[k] = v
	}
	return env, nil
}
