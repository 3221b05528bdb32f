package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// configDir is the configuration directory path.
	// Can be set via SetConfigDir before loading config.
	configDir     string
	configDirInit bool
)

// SetConfigDir sets a custom configuration directory.
// Must be called before any config loading functions.
func SetConfigDir(dir string) {
	configDir = dir
	configDirInit = true
}

// GetConfigDir returns the configuration directory.
// Priority: 1. Manually set via SetConfigDir, 2. ~/.go2web
func GetConfigDir() string {
	if !configDirInit {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			configDir = filepath.Join(homeDir, ".go2web")
		}
		configDirInit = true
	}
	return configDir
}

// Config application configuration structure
type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Search SearchConfig `yaml:"search"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

// HTTPConfig raw HTTP client configuration
type HTTPConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRedirects   int    `yaml:"max_redirects"`
	UserAgent      string `yaml:"user_agent"`
	AcceptLanguage string `yaml:"accept_language"`
}

// SearchConfig search provider configuration
type SearchConfig struct {
	BaseURL      string `yaml:"base_url"`
	DefaultLimit int    `yaml:"default_limit"`
}

// CacheConfig result cache configuration
type CacheConfig struct {
	Path     string `yaml:"path"`
	TTLHours int    `yaml:"ttl_hours"`
}

// LogConfig logging configuration
type LogConfig struct {
	Dir        string `yaml:"dir"`
	Level      string `yaml:"level"`
	MaxDays    int    `yaml:"max_days"`
	ConsoleOut bool   `yaml:"console_out"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	dir := GetConfigDir()
	return &Config{
		HTTP: HTTPConfig{
			TimeoutSeconds: 10,
			MaxRedirects:   5,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			AcceptLanguage: "en-US,en;q=0.9",
		},
		Search: SearchConfig{
			BaseURL:      "https://www.bing.com",
			DefaultLimit: 10,
		},
		Cache: CacheConfig{
			Path:     filepath.Join(dir, "cache.json"),
			TTLHours: 24,
		},
		Log: LogConfig{
			Dir:        filepath.Join(dir, "logs"),
			Level:      "info",
			MaxDays:    7,
			ConsoleOut: false,
		},
	}
}

// ConfigPath returns the configuration file path
func ConfigPath() (string, error) {
	dir := GetConfigDir()
	if dir == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Timeout returns the HTTP timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// CacheTTL returns the cache expiry window as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// Load loads configuration from file, creating the default config on
// first run
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	// Config file doesn't exist yet, create default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Use default values as base so partial files stay valid
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	content := "# go2web Configuration File\n\n" + string(data)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("config error: http.timeout_seconds must be greater than 0")
	}
	if c.HTTP.MaxRedirects < 0 {
		return fmt.Errorf("config error: http.max_redirects cannot be negative")
	}
	if strings.TrimSpace(c.Search.BaseURL) == "" {
		return fmt.Errorf("config error: search.base_url cannot be empty")
	}
	if c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("config error: search.default_limit must be greater than 0")
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		return fmt.Errorf("config error: cache.path cannot be empty")
	}
	if c.Cache.TTLHours <= 0 {
		return fmt.Errorf("config error: cache.ttl_hours must be greater than 0")
	}
	return nil
}

// String returns string representation of config
func (c *Config) String() string {
	return fmt.Sprintf(`go2web Configuration:
  HTTP:
    Timeout Seconds: %d
    Max Redirects: %d
    User Agent: %s
    Accept Language: %s
  Search:
    Base URL: %s
    Default Limit: %d
  Cache:
    Path: %s
    TTL Hours: %d
  Log:
    Dir: %s
    Level: %s
    Max Days: %d
    Console Out: %v`,
		c.HTTP.TimeoutSeconds,
		c.HTTP.MaxRedirects,
		c.HTTP.UserAgent,
		c.HTTP.AcceptLanguage,
		c.Search.BaseURL,
		c.Search.DefaultLimit,
		c.Cache.Path,
		c.Cache.TTLHours,
		c.Log.Dir,
		c.Log.Level,
		c.Log.MaxDays,
		c.Log.ConsoleOut,
	)
}
