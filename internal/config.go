package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrPasswordRequired is returned when USERNAME is set but PASSWORD is not.
// The CLI prompts for the password on an interactive terminal.
var ErrPasswordRequired = errors.New("PASSWORD must be set")

type Config struct {
	Env      string
	LogLevel string
	Platform PlatformConfig
	Import   ImportConfig
	Metrics  MetricsConfig
	Sentry   SentryConfig
	Archive  ArchiveConfig
	Report   ReportConfig
}

// PlatformConfig holds the billing platform connection settings.
type PlatformConfig struct {
	// URI is the platform root, e.g. "https://acme.billing.example.com".
	// Requests go to URI + "/api/v1".
	URI      string
	Username string
	Password string
	Timeout  time.Duration
}

// ImportConfig holds settings shared by every import run.
type ImportConfig struct {
	// LogDir is where failure and success logs are written.
	LogDir string

	// CountyCountry is the country whose addresses require a valid county.
	CountyCountry string
}

// MetricsConfig holds Prometheus Pushgateway settings. Metrics are only
// pushed when PushgatewayURL is set.
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	DSN              string
	Enabled          bool
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
	Debug            bool
}

// ArchiveConfig selects where run logs are copied after an import.
type ArchiveConfig struct {
	Provider    string // "none", "local" or "s3"
	LocalPath   string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string // Optional, for S3-compatible stores
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string
}

// ReportConfig holds SMTP settings for the run report email. Reports are
// only sent when Host and To are set.
type ReportConfig struct {
	Host     string
	Port     uint16
	Username string
	Password string
	From     string
	To       []string
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	return loadConfig()
}

// loadConfig reads the configuration from the environment.
func loadConfig() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Platform: PlatformConfig{
			URI:      strings.TrimRight(getEnv("URI", ""), "/"),
			Username: getEnv("USERNAME", ""),
			Password: getEnv("PASSWORD", ""),
			Timeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Import: ImportConfig{
			LogDir:        getEnv("LOG_OUTPUT_DIR", "log_output"),
			CountyCountry: getEnv("COUNTY_COUNTRY", "US"),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: getEnv("METRICS_PUSHGATEWAY_URL", ""),
			Job:            getEnv("METRICS_JOB", "billing_importer"),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			Enabled:          getEnvBool("SENTRY_ENABLED", false), // Disabled by default for development
			Environment:      getEnv("SENTRY_ENVIRONMENT", "development"),
			Release:          getEnv("SENTRY_RELEASE", ""),
			SampleRate:       getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),
			TracesSampleRate: getEnvFloat("SENTRY_TRACES_SAMPLE_RATE", 0.0),
			Debug:            getEnvBool("SENTRY_DEBUG", false),
		},
		Archive: ArchiveConfig{
			Provider:    getEnv("ARCHIVE_PROVIDER", "none"),
			LocalPath:   getEnv("ARCHIVE_LOCAL_PATH", "./archive"),
			S3Bucket:    getEnv("ARCHIVE_S3_BUCKET", ""),
			S3Region:    getEnv("ARCHIVE_S3_REGION", "us-east-1"),
			S3Endpoint:  getEnv("ARCHIVE_S3_ENDPOINT", ""),
			S3AccessKey: getEnv("ARCHIVE_S3_ACCESS_KEY_ID", ""),
			S3SecretKey: getEnv("ARCHIVE_S3_SECRET_ACCESS_KEY", ""),
			S3Prefix:    getEnv("ARCHIVE_S3_PREFIX", "import-logs"),
		},
		Report: ReportConfig{
			Host:     getEnv("REPORT_SMTP_HOST", ""),
			Port:     getEnvInt("REPORT_SMTP_PORT", 587),
			Username: getEnv("REPORT_SMTP_USERNAME", ""),
			Password: getEnv("REPORT_SMTP_PASSWORD", ""),
			From:     getEnv("REPORT_FROM", "billing-importer@localhost"),
			To:       getEnvList("REPORT_TO"),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.Platform.URI == "" {
		return nil, fmt.Errorf("URI must be set to the billing platform address")
	}
	if cfg.Platform.Username == "" {
		return nil, fmt.Errorf("USERNAME must be set")
	}
	if cfg.Platform.Password == "" {
		return nil, ErrPasswordRequired
	}

	switch cfg.Archive.Provider {
	case "none", "local":
	case "s3":
		if cfg.Archive.S3Bucket == "" {
			return nil, fmt.Errorf("ARCHIVE_S3_BUCKET required when archiving to s3")
		}
	default:
		return nil, fmt.Errorf("unknown ARCHIVE_PROVIDER %q", cfg.Archive.Provider)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatValue float64
		if _, err := fmt.Sscanf(value, "%f", &floatValue); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
