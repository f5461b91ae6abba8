// Package setup registers the health assessment MCP server with desktop MCP
// clients by editing their JSON configuration file.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

// DefaultServerName is the key the server is registered under.
const DefaultServerName = "health-assessment"

// ClientConfig is the MCP client configuration file structure. Keys other
// than mcpServers are preserved verbatim on save.
type ClientConfig struct {
	MCPServers map[string]ServerEntry `json:"mcpServers"`

	extra map[string]json.RawMessage
}

// ServerEntry represents a single MCP server launch configuration.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options controls registration.
type Options struct {
	ConfigPath string // Client config file; resolved per OS when empty
	ServerName string
	BinaryPath string
	Args       []string
	Env        map[string]string
}

// Status describes how the server is registered in a client config.
type Status struct {
	ConfigPath string
	Registered bool
	Entry      ServerEntry
	Servers    []string
	Issues     []string
}

// DefaultConfigPath returns the platform location of the desktop client config.
func DefaultConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support", "Claude")
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "Claude")
			break
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "Claude")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configDir = filepath.Join(appData, "Claude")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return filepath.Join(configDir, "claude_desktop_config.json"), nil
}

// LoadClientConfig reads the client config. A missing file yields an empty config.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{MCPServers: make(map[string]ServerEntry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg.extra); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw, ok := cfg.extra["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &cfg.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
		}
		delete(cfg.extra, "mcpServers")
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]ServerEntry)
	}

	return cfg, nil
}

// SaveClientConfig writes the client config, creating its directory if needed.
func SaveClientConfig(path string, cfg *ClientConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := make(map[string]interface{}, len(cfg.extra)+1)
	for k, v := range cfg.extra {
		out[k] = v
	}
	out["mcpServers"] = cfg.MCPServers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Register adds or replaces the server entry and returns the config path written.
func Register(opts Options) (string, error) {
	if opts.BinaryPath == "" {
		return "", fmt.Errorf("binary path is required")
	}

	path, err := resolvePath(opts.ConfigPath)
	if err != nil {
		return "", err
	}

	cfg, err := LoadClientConfig(path)
	if err != nil {
		return "", err
	}

	binary, err := filepath.Abs(opts.BinaryPath)
	if err != nil {
		binary = opts.BinaryPath
	}

	cfg.MCPServers[serverName(opts.ServerName)] = ServerEntry{
		Command: binary,
		Args:    opts.Args,
		Env:     opts.Env,
	}

	if err := SaveClientConfig(path, cfg); err != nil {
		return "", err
	}
	return path, nil
}

// Unregister removes the server entry. It reports whether an entry existed.
func Unregister(configPath, name string) (bool, error) {
	path, err := resolvePath(configPath)
	if err != nil {
		return false, err
	}

	cfg, err := LoadClientConfig(path)
	if err != nil {
		return false, err
	}

	name = serverName(name)
	if _, ok := cfg.MCPServers[name]; !ok {
		return false, nil
	}
	delete(cfg.MCPServers, name)

	return true, SaveClientConfig(path, cfg)
}

// GetStatus inspects the client config for the named server.
func GetStatus(configPath, name string) (*Status, error) {
	path, err := resolvePath(configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadClientConfig(path)
	if err != nil {
		return nil, err
	}

	status := &Status{ConfigPath: path, Servers: make([]string, 0, len(cfg.MCPServers)), Issues: []string{}}
	for n := range cfg.MCPServers {
		status.Servers = append(status.Servers, n)
	}
	sort.Strings(status.Servers)

	entry, ok := cfg.MCPServers[serverName(name)]
	if !ok {
		status.Issues = append(status.Issues, fmt.Sprintf("server %q is not registered", serverName(name)))
		return status, nil
	}
	status.Registered = true
	status.Entry = entry

	info, err := os.Stat(entry.Command)
	switch {
	case os.IsNotExist(err):
		status.Issues = append(status.Issues, fmt.Sprintf("server binary not found: %s", entry.Command))
	case err != nil:
		status.Issues = append(status.Issues, fmt.Sprintf("cannot stat server binary: %v", err))
	case runtime.GOOS != "windows" && info.Mode()&0o111 == 0:
		status.Issues = append(status.Issues, fmt.Sprintf("server binary is not executable: %s", entry.Command))
	}

	return status, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return DefaultConfigPath()
}

func serverName(name string) string {
	if name == "" {
		return DefaultServerName
	}
	return name
}
