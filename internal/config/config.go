package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Data source kinds.
const (
	SourceFixture  = "fixture"
	SourceRemote   = "remote"
	SourcePostgres = "postgres"
	SourceSheets   = "sheets"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Source    SourceConfig
	Remote    RemoteConfig
	Database  DatabaseConfig
	Sheets    SheetsConfig
	MongoDB   MongoDBConfig
	Reporting ReportingConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// SourceConfig selects where dashboard records come from.
type SourceConfig struct {
	Kind        string
	Fallback    bool
	FixturesDir string
}

// RemoteConfig holds the Procur REST API settings.
type RemoteConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// SheetsConfig holds the Google Sheets source settings.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// MongoDBConfig holds the snapshot archive settings. An empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// ReportingConfig holds the snapshot capture schedule.
type ReportingConfig struct {
	CronSchedule string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables, after loading an
// optional .env file (ENV_FILE, or ./.env when unset).
func Load() (*Config, error) {
	if err := loadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATA_SOURCE", SourceFixture)
	v.SetDefault("DATA_FALLBACK", true)
	v.SetDefault("FIXTURES_DIR", "")
	v.SetDefault("PROCUR_API_BASE_URL", "http://localhost:4000/api")
	v.SetDefault("PROCUR_API_TIMEOUT", "15s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "procur")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("MONGODB_DB_NAME", "procur")
	v.SetDefault("REPORT_CRON_SCHEDULE", "0 6 * * *")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Source: SourceConfig{
			Kind:        strings.ToLower(strings.TrimSpace(v.GetString("DATA_SOURCE"))),
			Fallback:    v.GetBool("DATA_FALLBACK"),
			FixturesDir: v.GetString("FIXTURES_DIR"),
		},
		Remote: RemoteConfig{
			BaseURL: strings.TrimSuffix(v.GetString("PROCUR_API_BASE_URL"), "/"),
			Token:   v.GetString("PROCUR_API_TOKEN"),
			Timeout: v.GetDuration("PROCUR_API_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: v.GetString("SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   v.GetString("SHEETS_SPREADSHEET_ID"),
		},
		MongoDB: MongoDBConfig{
			URI:    v.GetString("MONGODB_URI"),
			DBName: v.GetString("MONGODB_DB_NAME"),
		},
		Reporting: ReportingConfig{
			CronSchedule: v.GetString("REPORT_CRON_SCHEDULE"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed loading env file %s: %w", path, err)
	}
	return nil
}

// Validate checks that required configuration is present and valid.
// Settings for a data source are only required when that source is selected.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Source.Kind {
	case SourceFixture:
	case SourceRemote:
		if c.Remote.BaseURL == "" {
			return fmt.Errorf("PROCUR_API_BASE_URL is required for the remote source")
		}
		if c.Remote.Timeout <= 0 {
			return fmt.Errorf("PROCUR_API_TIMEOUT must be positive")
		}
	case SourcePostgres:
		if err := c.Database.validate(); err != nil {
			return err
		}
	case SourceSheets:
		if c.Sheets.CredentialsPath == "" {
			return fmt.Errorf("SHEETS_CREDENTIALS_PATH is required for the sheets source")
		}
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("SHEETS_SPREADSHEET_ID is required for the sheets source")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of fixture, remote, postgres, sheets (got %q)", c.Source.Kind)
	}

	if c.MongoDB.URI != "" {
		if c.MongoDB.DBName == "" {
			return fmt.Errorf("MONGODB_DB_NAME is required when MONGODB_URI is set")
		}
		if c.Reporting.CronSchedule == "" {
			return fmt.Errorf("REPORT_CRON_SCHEDULE is required when MONGODB_URI is set")
		}
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

func (d DatabaseConfig) validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// SnapshotsEnabled reports whether the snapshot archive is configured.
func (c *Config) SnapshotsEnabled() bool {
	return c.MongoDB.URI != ""
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
