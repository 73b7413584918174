package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Log       LogConfig       `yaml:"log"`
	Reminders ReminderConfig  `yaml:"reminders"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DataConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ReminderConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
	LeadHours       int `yaml:"lead_hours"`
}

// Load reads configuration from an optional YAML file and environment
// variables. Defaults apply first, then the file named by
// OIKIO_CONFIG_PATH, then OIKIO_* variables.
func Load() (Config, error) {
	cfg := Config{
		Transport: TransportConfig{Mode: "stdio"},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Data: DataConfig{
			Path: defaultDataPath(),
		},
		Log: LogConfig{Level: "info"},
		Reminders: ReminderConfig{
			IntervalMinutes: 30,
			LeadHours:       24,
		},
	}

	if path := os.Getenv("OIKIO_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if mode := os.Getenv("OIKIO_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if host := os.Getenv("OIKIO_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("OIKIO_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OIKIO_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dataPath := os.Getenv("OIKIO_DATA_PATH"); dataPath != "" {
		cfg.Data.Path = dataPath
	}
	if level := os.Getenv("OIKIO_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if cfg.Transport.Mode != "stdio" && cfg.Transport.Mode != "http" {
		return Config{}, fmt.Errorf("invalid transport mode %q", cfg.Transport.Mode)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// defaultDataPath places the data file under the user's config directory,
// falling back to the working directory.
func defaultDataPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "oikio-data.json"
	}
	return filepath.Join(dir, "oikio", "oikio-data.json")
}
