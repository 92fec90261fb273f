// Package config provides configuration management for the desktop app.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// AppDirName is the per-user directory name used under the platform's
// config, data and log roots.
const AppDirName = "Popomomo"

// FileName is the name of the configuration file.
const FileName = "config.json"

// DefaultInitialTitle is shown in the tray before the frontend reports any
// timer state.
const DefaultInitialTitle = "● 25:00"

// Config represents the desktop app configuration.
type Config struct {
	// Tray
	InitialTitle       string `json:"initial_title"`
	TrayReadyTimeoutMs int    `json:"tray_ready_timeout_ms"`

	// Window
	StartHidden  bool `json:"start_hidden"`
	WindowWidth  int  `json:"window_width"`
	WindowHeight int  `json:"window_height"`

	// Storage
	DatabaseName string `json:"database_name"`

	// Diagnostics
	DebugLogging bool   `json:"debug_logging"`
	MetricsAddr  string `json:"metrics_addr,omitempty"` // loopback only, empty disables

	// Internal
	configPath string
	mu         sync.RWMutex
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		InitialTitle:       DefaultInitialTitle,
		TrayReadyTimeoutMs: 5000,
		StartHidden:        false,
		WindowWidth:        420,
		WindowHeight:       640,
		DatabaseName:       "popomomo.db",
		DebugLogging:       false,
	}
}

// GetConfigDir returns the platform-specific configuration directory.
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			baseDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		baseDir = os.Getenv("XDG_CONFIG_HOME")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, ".config")
		}
	}

	configDir := filepath.Join(baseDir, AppDirName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetDataDir returns the platform-specific data directory.
func GetDataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		baseDir = os.Getenv("LOCALAPPDATA")
		if baseDir == "" {
			baseDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, AppDirName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}

// GetLogDir returns the platform-specific log directory.
func GetLogDir() (string, error) {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		baseDir := os.Getenv("LOCALAPPDATA")
		if baseDir == "" {
			baseDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
		logDir = filepath.Join(baseDir, AppDirName, "logs")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		logDir = filepath.Join(home, "Library", "Logs", AppDirName)
	default: // Linux and others
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		logDir = filepath.Join(home, ".local", "share", AppDirName, "logs")
	}

	if err := os.MkdirAll(logDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	return logDir, nil
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	return LoadFrom(filepath.Join(configDir, FileName))
}

// LoadFrom loads the configuration from a specific file. A missing file
// yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.configPath = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the app cannot run with.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.InitialTitle == "" {
		return fmt.Errorf("initial_title must not be empty")
	}
	if c.TrayReadyTimeoutMs <= 0 {
		return fmt.Errorf("tray_ready_timeout_ms must be positive, got %d", c.TrayReadyTimeoutMs)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.DatabaseName == "" {
		return fmt.Errorf("database_name must not be empty")
	}
	if c.MetricsAddr != "" {
		host, _, err := net.SplitHostPort(c.MetricsAddr)
		if err != nil {
			return fmt.Errorf("invalid metrics_addr %q: %w", c.MetricsAddr, err)
		}
		if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
			return fmt.Errorf("metrics_addr must be a loopback address, got %q", c.MetricsAddr)
		}
	}
	return nil
}

// Path returns the file the configuration is loaded from and saved to.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configPath
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.configPath == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return err
		}
		c.configPath = filepath.Join(configDir, FileName)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Update updates config values and saves.
func (c *Config) Update(fn func(*Config)) error {
	c.mu.Lock()
	fn(c)
	c.mu.Unlock()
	return c.Save()
}

// Reload takes the values of other that apply while the app is running
// (initial_title, debug_logging) and returns the JSON names of the other
// changed fields, which only take effect after a restart.
func (c *Config) Reload(other *Config) (restart []string) {
	other.mu.RLock()
	defer other.mu.RUnlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.InitialTitle = other.InitialTitle
	c.DebugLogging = other.DebugLogging

	if c.TrayReadyTimeoutMs != other.TrayReadyTimeoutMs {
		restart = append(restart, "tray_ready_timeout_ms")
	}
	if c.StartHidden != other.StartHidden {
		restart = append(restart, "start_hidden")
	}
	if c.WindowWidth != other.WindowWidth {
		restart = append(restart, "window_width")
	}
	if c.WindowHeight != other.WindowHeight {
		restart = append(restart, "window_height")
	}
	if c.DatabaseName != other.DatabaseName {
		restart = append(restart, "database_name")
	}
	if c.MetricsAddr != other.MetricsAddr {
		restart = append(restart, "metrics_addr")
	}
	return restart
}

// GetInitialTitle returns the tray title shown at startup.
func (c *Config) GetInitialTitle() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.InitialTitle
}

// GetDebugLogging reports whether debug logging is enabled.
func (c *Config) GetDebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DebugLogging
}

// GetMetricsAddr returns the metrics listen address, or "" when disabled.
func (c *Config) GetMetricsAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.MetricsAddr
}

// GetDatabaseName returns the SQLite file name inside the data directory.
func (c *Config) GetDatabaseName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DatabaseName
}

// GetTrayReadyTimeoutMs returns how long to wait for the tray loop to start.
func (c *Config) GetTrayReadyTimeoutMs() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.TrayReadyTimeoutMs
}
