package config

import (
	"fmt"
	"os"

	"crypto-tracker/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides loading and validation
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills the optional knobs a minimal config file may omit.
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}

	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Network.MaxRetries == 0 {
		c.Network.MaxRetries = 3
	}
	if c.Network.RateLimitMaxDelay == 0 {
		c.Network.RateLimitMaxDelay = 60
	}

	if c.Catalog.Currency == "" {
		c.Catalog.Currency = "usd"
	}
	if c.Catalog.PerPage == 0 {
		c.Catalog.PerPage = 50
	}

	if c.Preloader.StartPage == 0 {
		c.Preloader.StartPage = 1
	}
	if c.Preloader.PageDelaySeconds == 0 {
		c.Preloader.PageDelaySeconds = 60
	}
	if c.Preloader.OfflineWaitSeconds == 0 {
		c.Preloader.OfflineWaitSeconds = 10
	}

	if c.Monitor.IntervalSeconds == 0 {
		c.Monitor.IntervalSeconds = 300
	}
	if c.Monitor.ChangeThreshold == 0 {
		c.Monitor.ChangeThreshold = 0.05
	}
	if c.Monitor.AlertHistory == 0 {
		c.Monitor.AlertHistory = 100
	}

	if c.Connectivity.ProbeIntervalSeconds == 0 {
		c.Connectivity.ProbeIntervalSeconds = 15
	}

	if c.Storage.RetentionDays == 0 {
		c.Storage.RetentionDays = 7
	}
	if c.Storage.CleanupSchedule == "" {
		c.Storage.CleanupSchedule = "0 3 * * *"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	case "":
		return fmt.Errorf("database type cannot be empty")
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}
	if c.Storage.RetentionDays < 0 {
		return fmt.Errorf("retention days cannot be negative")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate Catalog configuration
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL cannot be empty")
	}
	if c.Catalog.PerPage <= 0 || c.Catalog.PerPage > 250 {
		return fmt.Errorf("invalid per_page: %d (must be between 1 and 250)", c.Catalog.PerPage)
	}

	// Validate Preloader configuration
	if c.Preloader.StartPage < 1 {
		return fmt.Errorf("start page must be at least 1")
	}
	if c.Preloader.PageDelaySeconds <= 0 {
		return fmt.Errorf("page delay must be greater than 0")
	}

	// Validate Monitor configuration
	if c.Monitor.IntervalSeconds <= 0 {
		return fmt.Errorf("monitor interval must be greater than 0")
	}
	if c.Monitor.ChangeThreshold <= 0 || c.Monitor.ChangeThreshold >= 1 {
		return fmt.Errorf("change threshold must be in (0, 1), got %v", c.Monitor.ChangeThreshold)
	}

	// Validate Connectivity configuration
	if c.Connectivity.ProbeURL == "" {
		return fmt.Errorf("connectivity probe URL cannot be empty")
	}
	if c.Connectivity.ProbeIntervalSeconds <= 0 {
		return fmt.Errorf("probe interval must be greater than 0")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
