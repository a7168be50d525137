// config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type APIConfig struct {
	LocationsURL      string `yaml:"locations_url"`
	VesselsURL        string `yaml:"vessels_url"`
	RequestTimeoutStr string `yaml:"request_timeout"`
	UserAgent         string `yaml:"user_agent"`

	RequestTimeout time.Duration // Parsed from RequestTimeoutStr
}

// BoundingBoxConfig is the rectangle positions are filtered to.
// Defaults approximate the Baltic Sea.
type BoundingBoxConfig struct {
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
}

// Contains reports whether the coordinate pair falls inside the box.
// Bounds are inclusive on all four edges.
func (b BoundingBoxConfig) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" or "mysql"
	Path     string `yaml:"path"`   // sqlite only
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type OutputConfig struct {
	SnapshotPath  string `yaml:"snapshot_path"`
	CSVExportPath string `yaml:"csv_export_path"`
}

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	API         APIConfig         `yaml:"api"`
	BoundingBox BoundingBoxConfig `yaml:"bounding_box"`
	Database    DatabaseConfig    `yaml:"database"`
	Output      OutputConfig      `yaml:"output"`
}

var AppConfig Config

const (
	defaultLocationsURL = "https://meri.digitraffic.fi/api/ais/v1/locations"
	defaultVesselsURL   = "https://meri.digitraffic.fi/api/ais/v1/vessels"
	defaultUserAgent    = "baltic-ais-collector/1.0"
	defaultDBPath       = "data/ais/ais_history.db"
	defaultSnapshotPath = "data/ais/latest.json"
	defaultCSVPath      = "data/ais/history.csv"
)

// LoadConfig reads the YAML configuration file into AppConfig, applies
// defaults and environment overrides, and validates the result.
// An empty configPath is not an error: defaults plus environment are
// enough to run against the public Digitraffic endpoints.
func LoadConfig(configPath string) error {
	AppConfig = Config{}

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(file, &AppConfig); err != nil {
			return fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyDefaults(&AppConfig)
	applyEnvOverrides(&AppConfig)

	// Parse durations
	timeout, err := time.ParseDuration(AppConfig.API.RequestTimeoutStr)
	if err != nil {
		return fmt.Errorf("failed to parse api.request_timeout %q: %w", AppConfig.API.RequestTimeoutStr, err)
	}
	AppConfig.API.RequestTimeout = timeout

	if err := Validate(&AppConfig); err != nil {
		return err
	}

	// Ensure output directories exist so a first run does not fail on
	// a missing data/ tree.
	if AppConfig.Database.Driver == "sqlite" && AppConfig.Database.Path != "" {
		if err := os.MkdirAll(filepath.Dir(AppConfig.Database.Path), 0755); err != nil {
			return fmt.Errorf("failed to create directory for database: %w", err)
		}
	}
	if AppConfig.Output.SnapshotPath != "" {
		if err := os.MkdirAll(filepath.Dir(AppConfig.Output.SnapshotPath), 0755); err != nil {
			return fmt.Errorf("failed to create directory for snapshot: %w", err)
		}
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8090"
	}
	if cfg.API.LocationsURL == "" {
		cfg.API.LocationsURL = defaultLocationsURL
	}
	if cfg.API.VesselsURL == "" {
		cfg.API.VesselsURL = defaultVesselsURL
	}
	if cfg.API.RequestTimeoutStr == "" {
		cfg.API.RequestTimeoutStr = "30s"
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = defaultUserAgent
	}
	if cfg.BoundingBox == (BoundingBoxConfig{}) {
		// Baltic Sea, same bounds the map frontend uses.
		cfg.BoundingBox = BoundingBoxConfig{MinLon: 17.0, MaxLon: 30.3, MinLat: 58.5, MaxLat: 66.0}
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = defaultDBPath
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}
	if cfg.Output.SnapshotPath == "" {
		cfg.Output.SnapshotPath = defaultSnapshotPath
	}
	if cfg.Output.CSVExportPath == "" {
		cfg.Output.CSVExportPath = defaultCSVPath
	}
}

// applyEnvOverrides lets deployment environments adjust paths and secrets
// without editing the YAML file. Values loaded from .env by main count too.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AIS_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("AIS_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("AIS_SNAPSHOT_PATH"); v != "" {
		cfg.Output.SnapshotPath = v
	}
	if v := os.Getenv("AIS_SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
}

// Validate checks the parts of the configuration that would otherwise fail
// far from their cause.
func Validate(cfg *Config) error {
	b := cfg.BoundingBox
	if b.MinLon >= b.MaxLon {
		return fmt.Errorf("invalid bounding box: min_lon %.4f must be less than max_lon %.4f", b.MinLon, b.MaxLon)
	}
	if b.MinLat >= b.MaxLat {
		return fmt.Errorf("invalid bounding box: min_lat %.4f must be less than max_lat %.4f", b.MinLat, b.MaxLat)
	}
	if cfg.API.RequestTimeout <= 0 {
		return fmt.Errorf("api.request_timeout must be positive, got %s", cfg.API.RequestTimeout)
	}
	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "mysql":
		if cfg.Database.Host == "" || cfg.Database.DBName == "" {
			return fmt.Errorf("database.host and database.dbname are required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q (use \"sqlite\" or \"mysql\")", cfg.Database.Driver)
	}
	return nil
}
