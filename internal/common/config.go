package common

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

const (
	DefaultIndexURL  = "https://www.nyc.gov/site/finance/vehicles/auctions.page"
	DefaultBaseURL   = "https://www.nyc.gov"
	DefaultVINAPIURL = "https://vpic.nhtsa.dot.gov/api/vehicles"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"
)

// Config holds all application configuration
type Config struct {
	LogLevel string         `json:"log_level"`
	Source   SourceConfig   `json:"source"`
	Output   OutputConfig   `json:"output"`
	Database DatabaseConfig `json:"database"`
	VIN      VINConfig      `json:"vin"`
	PDF      PDFConfig      `json:"pdf"`
	Worker   WorkerConfig   `json:"worker"`
	Daemon   DaemonConfig   `json:"daemon"`
}

// SourceConfig describes where auction notices are published
type SourceConfig struct {
	IndexURL   string   `json:"index_url"`
	BaseURL    string   `json:"base_url"`
	UserAgent  string   `json:"user_agent"`
	Timeout    Duration `json:"timeout"`
	RetryCount int      `json:"retry_count"`
	RetryWait  Duration `json:"retry_wait"`
}

// OutputConfig holds where CSV and XLSX files are written
type OutputConfig struct {
	Dir string `json:"dir"`
}

// DatabaseConfig holds database-related configuration. An empty Driver
// disables the SQL store.
type DatabaseConfig struct {
	Driver          string   `json:"driver"` // "", "sqlite" or "postgres"
	DSN             string   `json:"dsn"`
	MaxConns        int32    `json:"max_conns"`
	MinConns        int32    `json:"min_conns"`
	MaxConnLifetime Duration `json:"max_conn_lifetime"`
	MaxConnIdleTime Duration `json:"max_conn_idle_time"`
	DialTimeout     Duration `json:"dial_timeout"`
}

// VINConfig holds vPIC decoding configuration
type VINConfig struct {
	APIURL      string   `json:"api_url"`
	Concurrency int      `json:"concurrency"`
	Timeout     Duration `json:"timeout"`
	RetryCount  int      `json:"retry_count"`
}

// PDFConfig holds text extraction configuration
type PDFConfig struct {
	TextMode string `json:"text_mode"`
	MaxPages int    `json:"max_pages"`
}

// WorkerConfig sizes the processor queue
type WorkerConfig struct {
	Workers        int      `json:"workers"`
	QueueSize      int      `json:"queue_size"`
	ProcessTimeout Duration `json:"process_timeout"`
}

// DaemonConfig holds auctionsd scheduling configuration
type DaemonConfig struct {
	Interval   Duration `json:"interval"`
	HealthAddr string   `json:"health_addr"`
}

// Duration reads either a Go duration string ("30s") or a number of
// nanoseconds from a config file.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"'`)
	if s == "" || s == "null" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(n)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Source: SourceConfig{
			IndexURL:   DefaultIndexURL,
			BaseURL:    DefaultBaseURL,
			UserAgent:  DefaultUserAgent,
			Timeout:    Duration(60 * time.Second),
			RetryCount: 3,
			RetryWait:  Duration(2 * time.Second),
		},
		Output: OutputConfig{
			Dir: "Data",
		},
		Database: DatabaseConfig{
			MaxConns:        20,
			MinConns:        2,
			MaxConnLifetime: Duration(30 * time.Minute),
			MaxConnIdleTime: Duration(5 * time.Minute),
			DialTimeout:     Duration(3 * time.Second),
		},
		VIN: VINConfig{
			APIURL:      DefaultVINAPIURL,
			Concurrency: 4,
			Timeout:     Duration(20 * time.Second),
			RetryCount:  2,
		},
		PDF: PDFConfig{
			TextMode: "layout",
		},
		Worker: WorkerConfig{
			Workers:        4,
			QueueSize:      64,
			ProcessTimeout: Duration(3 * time.Minute),
		},
		Daemon: DaemonConfig{
			Interval:   Duration(24 * time.Hour),
			HealthAddr: ":8080",
		},
	}
}

// LoadConfig builds the configuration from defaults, then the optional
// config file (and its .local override), then environment variables.
// An empty path skips the file step; a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		fileCfg, err := readConfigFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, NewAppError("CONFIG_ERROR", "read "+path, err)
		}
		if err == nil {
			if err := mergo.Merge(cfg, fileCfg, mergo.WithOverride); err != nil {
				return nil, NewAppError("CONFIG_ERROR", "merge "+path, err)
			}
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

// readConfigFile merges <name>.<ext> with <name>.local.<ext>, the latter
// winning. It returns os.ErrNotExist when neither exists.
func readConfigFile(name string) (Config, error) {
	var out Config
	found := false

	ext := filepath.Ext(name)
	localPath := strings.TrimSuffix(name, ext) + ".local" + ext

	for _, p := range []string{name, localPath} {
		b, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return out, err
		}
		if len(b) == 0 {
			continue
		}
		var layer Config
		if err := json5.Unmarshal(b, &layer); err != nil {
			return out, fmt.Errorf("%s: %w", p, err)
		}
		if err := mergo.Merge(&out, layer, mergo.WithOverride); err != nil {
			return out, err
		}
		if found {
			slog.Info("merging config with local overrides", "local", p)
		}
		found = true
	}
	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

func applyEnv(c *Config) {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Source.IndexURL = getEnv("AUCTION_INDEX_URL", c.Source.IndexURL)
	c.Source.BaseURL = getEnv("AUCTION_BASE_URL", c.Source.BaseURL)
	c.Source.UserAgent = getEnv("HTTP_USER_AGENT", c.Source.UserAgent)
	c.Source.Timeout = getEnvAsDuration("HTTP_TIMEOUT", c.Source.Timeout)
	c.Source.RetryCount = getEnvAsInt("HTTP_RETRY_COUNT", c.Source.RetryCount)
	c.Source.RetryWait = getEnvAsDuration("HTTP_RETRY_WAIT", c.Source.RetryWait)

	c.Output.Dir = getEnv("OUTPUT_DIR", c.Output.Dir)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)

	c.VIN.APIURL = getEnv("VIN_API_URL", c.VIN.APIURL)
	c.VIN.Concurrency = getEnvAsInt("VIN_CONCURRENCY", c.VIN.Concurrency)
	c.VIN.Timeout = getEnvAsDuration("VIN_TIMEOUT", c.VIN.Timeout)
	c.VIN.RetryCount = getEnvAsInt("VIN_RETRY_COUNT", c.VIN.RetryCount)

	c.PDF.TextMode = getEnv("PDF_TEXT_MODE", c.PDF.TextMode)
	c.PDF.MaxPages = getEnvAsInt("PDF_MAX_PAGES", c.PDF.MaxPages)

	c.Worker.Workers = getEnvAsInt("WORKERS", c.Worker.Workers)
	c.Worker.QueueSize = getEnvAsInt("QUEUE_SIZE", c.Worker.QueueSize)
	c.Worker.ProcessTimeout = getEnvAsDuration("PROCESS_TIMEOUT", c.Worker.ProcessTimeout)

	c.Daemon.Interval = getEnvAsDuration("DAEMON_INTERVAL", c.Daemon.Interval)
	c.Daemon.HealthAddr = getEnv("HEALTH_ADDR", c.Daemon.HealthAddr)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue Duration) Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return Duration(duration)
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("source.index_url", c.Source.IndexURL, Required, AbsoluteURL).
		Field("source.base_url", c.Source.BaseURL, Required, AbsoluteURL).
		Field("output.dir", c.Output.Dir, Required).
		Field("database.driver", c.Database.Driver, OneOf("", "sqlite", "postgres")).
		Field("vin.api_url", c.VIN.APIURL, Required, AbsoluteURL).
		Field("vin.concurrency", c.VIN.Concurrency, Positive).
		Field("pdf.text_mode", c.PDF.TextMode, OneOf("layout", "plain", "rows")).
		Field("worker.workers", c.Worker.Workers, Positive).
		Field("worker.queue_size", c.Worker.QueueSize, Positive).
		Field("worker.process_timeout", c.Worker.ProcessTimeout, Positive).
		Field("daemon.interval", c.Daemon.Interval, Positive)
	if c.Database.Driver != "" {
		v.Field("database.dsn", c.Database.DSN, Required)
	}
	return ValidateAndReturnError(v)
}
