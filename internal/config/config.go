// Package config provides centralized configuration for the converter service.
// Every setting is read from the environment, falls back to a default, and is
// validated once on startup so a misconfigured process fails before serving.
package config

import (
	"strconv"
	"time"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Table detection strategies accepted by EXTRACT_TABLE_STRATEGY.
const (
	StrategyLines = "lines"
	StrategyText  = "text"
	StrategyAuto  = "auto"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Extract   ExtractConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Retention RetentionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8001"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a single request, extraction included.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"120s"`

	// CORSOrigins is a comma-separated list of allowed origins ("*" for any).
	CORSOrigins []string `env:"CORS_ORIGINS" default:"*"`

	// FrontendDir, when set and present, is served at "/" with SPA fallback.
	FrontendDir string `env:"FRONTEND_DIR"`
}

// StorageConfig selects and configures the record store and artifact directories.
type StorageConfig struct {
	// Backend is "badger" (embedded, on disk under DataDir) or "postgres".
	Backend string `env:"STORAGE_BACKEND" default:"badger"`

	// DataDir holds uploads/, outputs/ and, for the badger backend, records/.
	DataDir string `env:"DATA_DIR" default:"./data"`

	// DatabaseURL is the PostgreSQL connection string, required for the postgres backend.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds upload processing settings.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted PDF size in bytes (default: 10 MiB).
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the number of extractions allowed to run at once.
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long an upload waits for an extraction slot.
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// PreviewRows caps preview_data in upload and preview responses.
	PreviewRows int `env:"UPLOAD_PREVIEW_ROWS" default:"100"`
}

// ExtractConfig tunes table detection.
type ExtractConfig struct {
	// Strategy is one of lines, text, auto.
	Strategy string `env:"EXTRACT_TABLE_STRATEGY" default:"lines"`

	// SnapTolerance is the distance in points within which ruling edges merge.
	SnapTolerance float64 `env:"EXTRACT_SNAP_TOLERANCE" default:"3"`

	// MinConfidence is the score a text-aligned table needs to be accepted.
	MinConfidence float64 `env:"EXTRACT_MIN_CONFIDENCE" default:"0.5"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
	UploadLimit       int  `env:"RATE_LIMIT_UPLOAD" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For / X-Real-IP headers are honored.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// RetentionConfig controls the cleanup janitor.
type RetentionConfig struct {
	// Schedule is a cron spec ("@every 1h", "0 3 * * *").
	Schedule string `env:"RETENTION_SCHEDULE" default:"@every 1h"`

	// MaxAge deletes records older than this; 0 keeps records forever.
	MaxAge time.Duration `env:"RETENTION_MAX_AGE" default:"0s"`

	// OrphanGrace is how old an artifact without a record must be before removal.
	OrphanGrace time.Duration `env:"RETENTION_ORPHAN_GRACE" default:"15m"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
