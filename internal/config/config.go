package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"media-store/internal/utils/platformerrors"
)

// Config holds the environment driven configuration for the media service.
type Config struct {
	// Service Configuration
	ServiceName        string        `env:"SERVICE_NAME" envDefault:"media-store"`
	Environment        string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort           int           `env:"MEDIA_API_PORT" envDefault:"8285"`
	LogLevel           string        `env:"MEDIA_LOG_LEVEL" envDefault:"info"`
	EnableTracing      bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"60s"`

	// Database (required, no defaults)
	DBPostgresqlWriteDSN string `env:"DB_POSTGRESQL_WRITE_DSN,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Storage Backend Selection
	StorageBackend string `env:"MEDIA_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"

	// Local Storage Configuration
	LocalStoragePath    string `env:"MEDIA_LOCAL_STORAGE_PATH"`
	LocalStorageBaseURL string `env:"MEDIA_LOCAL_STORAGE_BASE_URL"`

	// S3 Storage Configuration
	S3Endpoint       string        `env:"MEDIA_S3_ENDPOINT" envDefault:"http://localhost:9000"`
	S3PublicEndpoint string        `env:"MEDIA_S3_PUBLIC_ENDPOINT"`
	S3Region         string        `env:"MEDIA_S3_REGION" envDefault:"us-east-1"`
	S3Bucket         string        `env:"MEDIA_S3_BUCKET"`
	S3AccessKeyID    string        `env:"MEDIA_S3_ACCESS_KEY_ID"`
	S3SecretKey      string        `env:"MEDIA_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle   bool          `env:"MEDIA_S3_USE_PATH_STYLE" envDefault:"true"`
	S3PresignTTL     time.Duration `env:"MEDIA_S3_PRESIGN_TTL" envDefault:"1h"`

	// Media Configuration
	MaxMediaBytes int64 `env:"MEDIA_MAX_BYTES" envDefault:"52428800"`
	ProxyDownload bool  `env:"MEDIA_PROXY_DOWNLOAD" envDefault:"true"`

	// Reconciliation of orphaned objects
	ReconcileEnabled         bool          `env:"RECONCILE_ENABLED" envDefault:"false"`
	ReconcileIntervalMinutes int           `env:"RECONCILE_INTERVAL_MINUTES" envDefault:"30"`
	ReconcileGracePeriod     time.Duration `env:"RECONCILE_GRACE_PERIOD" envDefault:"15m"`

	// Authentication
	APIKey       string `env:"MEDIA_API_KEY"`
	AuthEnabled  bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer   string `env:"AUTH_ISSUER"`
	AuthAudience string `env:"AUTH_AUDIENCE"`
	AuthJWKSURL  string `env:"AUTH_JWKS_URL"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, configurationError("parse env config", err, "a5144c10-5478-4835-b257-95548302f3bc")
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.S3PublicEndpoint = strings.TrimSpace(cfg.S3PublicEndpoint)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that must be present before the service starts.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.S3Bucket) == "" {
		return configurationError("MEDIA_S3_BUCKET is required", nil, "ed04bb70-83c1-4bf8-9a41-60293d430f4b")
	}
	if c.S3PresignTTL <= 0 {
		return configurationError("MEDIA_S3_PRESIGN_TTL must be positive", nil, "3f706338-6843-49f8-a862-daf3a4655e23")
	}
	if c.MaxMediaBytes <= 0 {
		c.MaxMediaBytes = 50 * 1024 * 1024
	}

	switch {
	case c.IsS3Storage():
		if c.S3AccessKeyID == "" || c.S3SecretKey == "" {
			return configurationError("MEDIA_S3_ACCESS_KEY_ID and MEDIA_S3_SECRET_ACCESS_KEY are required for the s3 backend", nil, "d79a5fd1-b597-4152-99b7-9f045282731f")
		}
	case c.IsLocalStorage():
		if strings.TrimSpace(c.LocalStoragePath) == "" {
			return configurationError("MEDIA_LOCAL_STORAGE_PATH is required for the local backend", nil, "8f6af9f2-840a-4f29-af65-7e6e21544204")
		}
	default:
		return configurationError(fmt.Sprintf("unknown MEDIA_STORAGE_BACKEND %q", c.StorageBackend), nil, "5bb504ce-fe3d-44d1-bd72-363ba9991af7")
	}

	if c.AuthEnabled {
		if strings.TrimSpace(c.AuthIssuer) == "" {
			return configurationError("AUTH_ISSUER is required when AUTH_ENABLED is true", nil, "810a6417-8420-432c-8c3c-ac1fba79720d")
		}
		if strings.TrimSpace(c.AuthJWKSURL) == "" {
			return configurationError("AUTH_JWKS_URL is required when AUTH_ENABLED is true", nil, "598a94c9-c0c4-4dea-99e4-c11d23317c04")
		}
	}
	if c.ReconcileEnabled && c.ReconcileIntervalMinutes <= 0 {
		return configurationError("RECONCILE_INTERVAL_MINUTES must be positive", nil, "47bd0cf0-e2b6-4b47-ac2b-a2c47af516ca")
	}
	return nil
}

func configurationError(message string, err error, uuid string) error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerConfig, platformerrors.ErrorTypeConfiguration, message, err, uuid)
}

// GetDatabaseWriteDSN returns the write database connection string.
func (c *Config) GetDatabaseWriteDSN() string {
	return c.DBPostgresqlWriteDSN
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}

// IsS3Storage returns true if S3 storage backend is configured.
func (c *Config) IsS3Storage() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return backend == "" || backend == "s3"
}
