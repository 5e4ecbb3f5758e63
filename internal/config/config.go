// Package config handles configuration loading for tapeboard.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    yaml:"server"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Provider  ProviderConfig  `mapstructure:"provider"  yaml:"provider"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DashboardConfig holds the default watchlist and filter settings used when
// a request does not override them.
type DashboardConfig struct {
	Symbols     []string `mapstructure:"symbols"      yaml:"symbols"`
	MinNotional float64  `mapstructure:"min_notional" yaml:"min_notional"`
}

// ProviderConfig holds earnings-provider settings.
type ProviderConfig struct {
	TimeoutSec     int    `mapstructure:"timeout_sec"      yaml:"timeout_sec"`
	CacheTTLSec    int    `mapstructure:"cache_ttl_sec"    yaml:"cache_ttl_sec"` // <= 0 caches for process lifetime
	RequestsPerSec int    `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`
	UserAgent      string `mapstructure:"user_agent"       yaml:"user_agent"`
}

// Timeout returns the per-lookup timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec) * time.Second
}

// CacheTTL returns the earnings cache TTL as a duration.
func (p ProviderConfig) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLSec) * time.Second
}

// NewsConfig holds headline-feed settings.
type NewsConfig struct {
	Enabled     bool `mapstructure:"enabled"       yaml:"enabled"`
	Limit       int  `mapstructure:"limit"         yaml:"limit"`
	CacheTTLSec int  `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
}

// CacheTTL returns the headline cache TTL as a duration.
func (n NewsConfig) CacheTTL() time.Duration {
	return time.Duration(n.CacheTTLSec) * time.Second
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"       yaml:"level"` // "debug", "info", "warn", "error"
	Console    bool   `mapstructure:"console"     yaml:"console"`
	File       string `mapstructure:"file"        yaml:"file"` // empty disables file output
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.tapeboard/config.yaml (home directory)
//  3. /etc/tapeboard/config.yaml (system)
//
// Environment variables override config file values.
// Format: TAPEBOARD_<SECTION>_<KEY>, e.g., TAPEBOARD_SERVER_PORT
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".tapeboard"))
	v.AddConfigPath("/etc/tapeboard")

	// Environment variable settings
	v.SetEnvPrefix("TAPEBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("TAPEBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8780)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Dashboard defaults
	v.SetDefault("dashboard.symbols", []string{"AAPL", "MSFT", "NVDA", "AMZN", "META"})
	v.SetDefault("dashboard.min_notional", 5000000.0) // $5M

	// Provider defaults
	v.SetDefault("provider.timeout_sec", 10)
	v.SetDefault("provider.cache_ttl_sec", 0) // earnings dates rarely move intraday
	v.SetDefault("provider.requests_per_sec", 5)
	v.SetDefault("provider.user_agent", "")

	// News defaults
	v.SetDefault("news.enabled", true)
	v.SetDefault("news.limit", 10)
	v.SetDefault("news.cache_ttl_sec", 600) // 10 minutes

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age_days", 30)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
