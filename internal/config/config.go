package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"canestats/internal/aggregator"
	"canestats/internal/log"
)

// Dataset sources.
const (
	SourceFile   = "file"
	SourceRemote = "remote"
	SourceSQLite = "sqlite"
	SourceSheets = "sheets"
	SourceExcel  = "excel"
)

var validSources = []string{SourceFile, SourceRemote, SourceSQLite, SourceSheets, SourceExcel}

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Dataset source
	DatasetSource string
	DatasetPath   string
	DatasetURL    string
	ExcelPath     string
	ExcelSheet    string

	// Snapshot storage
	SQLiteDBPath string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Importer
	ImportInterval time.Duration
	SnapshotKeep   int
	// ImporterMetricsAddr serves the importer's /metrics when set.
	ImporterMetricsAddr string

	// View memoization
	ViewCacheSize int
	ViewCacheTTL  time.Duration

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	// AuthUserHeader names the header set by an authenticating proxy. Empty
	// means every request is treated as authenticated.
	AuthUserHeader string

	// Month comparison
	CompareBaseMonth   string
	CompareTargetMonth string
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatasetSource: getEnv("DATASET_SOURCE", SourceFile),
		DatasetPath:   getEnv("DATASET_PATH", "data/converted_chat_2.json"),
		DatasetURL:    getEnv("DATASET_URL", ""),
		ExcelPath:     getEnv("EXCEL_PATH", ""),
		ExcelSheet:    getEnv("EXCEL_SHEET", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/canestats.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "canestats"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "dataset_snapshots"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Talukas"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),

		ImportInterval:      getEnvDuration("IMPORT_INTERVAL", 15*time.Minute),
		SnapshotKeep:        getEnvInt("SNAPSHOT_KEEP", 30),
		ImporterMetricsAddr: getEnv("IMPORTER_METRICS_ADDR", ""),

		ViewCacheSize: getEnvInt("VIEW_CACHE_SIZE", 256),
		ViewCacheTTL:  getEnvDuration("VIEW_CACHE_TTL", 10*time.Minute),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		AuthUserHeader:     getEnv("AUTH_USER_HEADER", ""),

		CompareBaseMonth:   getEnv("COMPARE_BASE_MONTH", aggregator.DefaultBaseMonth),
		CompareTargetMonth: getEnv("COMPARE_TARGET_MONTH", aggregator.DefaultTargetMonth),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if !slices.Contains(validSources, c.DatasetSource) {
		errors = append(errors, fmt.Sprintf("invalid dataset source '%s': must be one of %v", c.DatasetSource, validSources))
	}

	switch c.DatasetSource {
	case SourceFile:
		if c.DatasetPath == "" {
			errors = append(errors, "DATASET_PATH cannot be empty when using file source")
		}
	case SourceRemote:
		if u, err := url.Parse(c.DatasetURL); err != nil || c.DatasetURL == "" {
			errors = append(errors, fmt.Sprintf("invalid DATASET_URL '%s': required for remote source", c.DatasetURL))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid DATASET_URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	case SourceExcel:
		if c.ExcelPath == "" {
			errors = append(errors, "EXCEL_PATH is required when using excel source")
		}
	case SourceSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets source")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets source")
		}
	}

	if c.SQLiteDBPath == "" {
		if c.DatasetSource == SourceSQLite {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite source")
		}
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ImportInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid import interval %v: must be at least 1 second", c.ImportInterval))
	} else if c.ImportInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid import interval %v: must be at most 24 hours", c.ImportInterval))
	}

	if c.SnapshotKeep < 0 {
		errors = append(errors, fmt.Sprintf("invalid snapshot keep %d: must not be negative", c.SnapshotKeep))
	}

	if c.ViewCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid view cache size %d: must be at least 1", c.ViewCacheSize))
	}
	if c.ViewCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid view cache TTL %v: must not be negative", c.ViewCacheTTL))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.CompareBaseMonth == "" || c.CompareTargetMonth == "" {
		errors = append(errors, "comparison months cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AMQPEnabled reports whether snapshot messages should be published and consumed.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
