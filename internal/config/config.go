package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	RabbitMQ struct {
		Enabled  bool   `yaml:"enabled"`
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"rabbitmq"`
	Inventory struct {
		RestoreInterval Duration        `yaml:"restore_interval"`
		Items           []InventoryItem `yaml:"items"`
	} `yaml:"inventory"`
	Recipes []Recipe `yaml:"recipes"`
	Tables  []int    `yaml:"tables"`
}

// Duration parses YAML strings like "24h" or "90s" via time.ParseDuration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// InventoryItem is one baseline stock entry used to seed the store
type InventoryItem struct {
	Name            string `yaml:"name"`
	InitialQuantity int    `yaml:"initial_quantity"`
	MinThreshold    int    `yaml:"min_threshold"`
}

// Recipe is one recipe-source entry used to seed the store
type Recipe struct {
	Name        string         `yaml:"name"`
	Ingredients map[string]int `yaml:"ingredients"`
}

// Load reads and validates the YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Server.Port <= 0 {
		return nil, fmt.Errorf("server.port must be positive, got %d", cfg.Server.Port)
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Port <= 0 {
		return nil, fmt.Errorf("metrics.port must be positive, got %d", cfg.Metrics.Port)
	}
	if len(cfg.Tables) == 0 {
		return nil, fmt.Errorf("at least one table must be configured")
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9090
	cfg.Metrics.Path = "/metrics"
	cfg.Database.Path = "brigade.db"
	cfg.RabbitMQ.Exchange = "brigade_events"
	cfg.Inventory.RestoreInterval = Duration(24 * time.Hour)
	return cfg
}
