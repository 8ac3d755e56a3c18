package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/meltforce/periodix/internal/volume"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
	Volume    VolumeConfig    `yaml:"volume"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the database file when Driver is sqlite.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type VolumeConfig struct {
	Timezone            string                     `yaml:"timezone"`
	HistoryDefaultWeeks int                        `yaml:"history_default_weeks"`
	HistoryMaxWeeks     int                        `yaml:"history_max_weeks"`
	Landmarks           map[string]volume.Landmark `yaml:"landmarks"`
}

type MetricsConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// On reports whether /metrics is served. Defaults to true.
func (m MetricsConfig) On() bool {
	return m.Enabled == nil || *m.Enabled
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Location resolves the configured week timezone.
func (v VolumeConfig) Location() (*time.Location, error) {
	if v.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(v.Timezone)
	if err != nil {
		return nil, fmt.Errorf("volume.timezone %q: %w", v.Timezone, err)
	}
	return loc, nil
}

// Options converts the volume section into aggregator options.
func (v VolumeConfig) Options() (volume.Options, error) {
	loc, err := v.Location()
	if err != nil {
		return volume.Options{}, err
	}
	return volume.Options{
		Location:            loc,
		HistoryDefaultWeeks: v.HistoryDefaultWeeks,
		HistoryMaxWeeks:     v.HistoryMaxWeeks,
	}, nil
}

// Registry builds the landmark registry with configured overrides applied.
func (v VolumeConfig) Registry() (*volume.Registry, error) {
	if len(v.Landmarks) == 0 {
		return volume.DefaultRegistry(), nil
	}
	return volume.NewRegistry(v.Landmarks)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix PERIODIX_ and underscore-separated paths:
//
//	PERIODIX_SERVER_HOST, PERIODIX_SERVER_PORT,
//	PERIODIX_DB_DRIVER, PERIODIX_DB_HOST, PERIODIX_DB_PORT, PERIODIX_DB_NAME,
//	PERIODIX_DB_USER, PERIODIX_DB_PASSWORD, PERIODIX_DB_SSLMODE, PERIODIX_DB_PATH,
//	PERIODIX_AUTH_API_KEY, PERIODIX_LOG_LEVEL, PERIODIX_VOLUME_TIMEZONE
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PERIODIX_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PERIODIX_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PERIODIX_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("PERIODIX_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("PERIODIX_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("PERIODIX_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("PERIODIX_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("PERIODIX_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("PERIODIX_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("PERIODIX_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("PERIODIX_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("PERIODIX_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PERIODIX_VOLUME_TIMEZONE"); v != "" {
		cfg.Volume.Timezone = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "periodix"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Volume.HistoryDefaultWeeks == 0 {
		cfg.Volume.HistoryDefaultWeeks = volume.DefaultHistoryWeeks
	}
	if cfg.Volume.HistoryMaxWeeks == 0 {
		cfg.Volume.HistoryMaxWeeks = volume.MaxHistoryWeeks
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("database.driver %q must be %q or %q", c.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	if c.Volume.HistoryDefaultWeeks < 1 || c.Volume.HistoryDefaultWeeks > c.Volume.HistoryMaxWeeks {
		return fmt.Errorf("volume.history_default_weeks %d must be in [1,%d]",
			c.Volume.HistoryDefaultWeeks, c.Volume.HistoryMaxWeeks)
	}
	if _, err := c.Volume.Location(); err != nil {
		return err
	}
	if _, err := c.Volume.Registry(); err != nil {
		return fmt.Errorf("volume.landmarks: %w", err)
	}
	return nil
}
