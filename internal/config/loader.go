package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Load reads configuration from environment variables, applies defaults
// for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is usable and reports every
// problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Storage.DataDir == "" {
		errs = append(errs, "DATA_DIR is required")
	}
	switch strings.ToLower(c.Storage.Backend) {
	case BackendBadger:
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
		if c.Storage.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Storage.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.Storage.MaxConns < c.Storage.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Storage.MaxConns, c.Storage.MinConns))
		}
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_BACKEND (%q) must be one of: badger, postgres", c.Storage.Backend))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Upload.MaxConcurrent <= 0 {
		errs = append(errs, "UPLOAD_MAX_CONCURRENT must be positive")
	}
	if c.Upload.MaxWaitTime <= 0 {
		errs = append(errs, "UPLOAD_MAX_WAIT_TIME must be positive")
	}
	if c.Upload.PreviewRows <= 0 {
		errs = append(errs, "UPLOAD_PREVIEW_ROWS must be positive")
	}

	switch strings.ToLower(c.Extract.Strategy) {
	case StrategyLines, StrategyText, StrategyAuto:
	default:
		errs = append(errs, fmt.Sprintf("EXTRACT_TABLE_STRATEGY (%q) must be one of: lines, text, auto", c.Extract.Strategy))
	}
	if c.Extract.SnapTolerance < 0 {
		errs = append(errs, "EXTRACT_SNAP_TOLERANCE must be non-negative")
	}
	if c.Extract.MinConfidence < 0 || c.Extract.MinConfidence > 1 {
		errs = append(errs, "EXTRACT_MIN_CONFIDENCE must be between 0 and 1")
	}

	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.UploadLimit <= 0 {
		errs = append(errs, "RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")
	}

	if c.Retention.Schedule == "" {
		errs = append(errs, "RETENTION_SCHEDULE is required")
	} else if _, err := ParseSchedule(c.Retention.Schedule); err != nil {
		errs = append(errs, fmt.Sprintf("RETENTION_SCHEDULE (%q) is invalid: %v", c.Retention.Schedule, err))
	}
	if c.Retention.MaxAge < 0 {
		errs = append(errs, "RETENTION_MAX_AGE must be non-negative")
	}
	if c.Retention.OrphanGrace < 0 {
		errs = append(errs, "RETENTION_ORPHAN_GRACE must be non-negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a log-safe representation; the database URL is masked.
func (c *Config) String() string {
	dbURL := ""
	if c.Storage.DatabaseURL != "" {
		dbURL = "[MASKED]"
	}
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q, CORSOrigins: %v}, ", c.Server.Addr(), c.Server.CORSOrigins)
	fmt.Fprintf(&b, "Storage: {Backend: %q, DataDir: %q, DatabaseURL: %q}, ",
		c.Storage.Backend, c.Storage.DataDir, dbURL)
	fmt.Fprintf(&b, "Upload: {MaxFileSize: %d, MaxConcurrent: %d, PreviewRows: %d}, ",
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent, c.Upload.PreviewRows)
	fmt.Fprintf(&b, "Extract: {Strategy: %q}, ", c.Extract.Strategy)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ", c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Retention: {Schedule: %q, MaxAge: %s}, ", c.Retention.Schedule, c.Retention.MaxAge)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

// ParseSchedule parses a standard five-field cron expression or a
// descriptor such as "@every 1h" or "@daily".
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser.Parse(spec)
}
