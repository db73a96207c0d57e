// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultClientRetryMaxAttempts is the default number of retry attempts.
	DefaultClientRetryMaxAttempts = 3

	// DefaultClientRetryMultiplier is the default exponential backoff multiplier.
	DefaultClientRetryMultiplier = 2.0

	// DefaultClientRetryJitterFactor is the default jitter percentage (±25%).
	DefaultClientRetryJitterFactor = 0.25

	// DefaultClientCircuitMaxFailures is the default failures before circuit opens.
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the default successes to close circuit.
	DefaultClientCircuitHalfOpenLimit = 3

	// DefaultTransportMaxIdleConns is the default max idle connections.
	DefaultTransportMaxIdleConns = 100

	// DefaultTransportMaxIdleConnsPerHost is the default max idle connections per host.
	DefaultTransportMaxIdleConnsPerHost = 10

	// DefaultTransportIdleConnTimeout is the default idle connection timeout.
	DefaultTransportIdleConnTimeout = 90 * time.Second

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28

	// DefaultStoreCapacity and DefaultStoreSlotSize give a 12110 byte region.
	DefaultStoreCapacity = 100
	DefaultStoreSlotSize = 120

	// The stock panel is a 250x122 2.13" e-paper used in landscape.
	DefaultDisplayWidth  = 250
	DefaultDisplayHeight = 122
	DefaultDisplayMargin = 5

	DefaultBodyFontSize = 12.0
	DefaultBoldFontSize = 12.0
	DefaultFontDPI      = 72.0

	// DefaultEPaperThreshold is the gray level below which a pixel is inked.
	DefaultEPaperThreshold = 0x80
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Store     StoreConfig     `koanf:"store"     validate:"required"`
	Display   DisplayConfig   `koanf:"display"   validate:"required"`
	Rotation  RotationConfig  `koanf:"rotation"  validate:"required"`
	EPaper    EPaperConfig    `koanf:"epaper"`
	Quote0    Quote0Config    `koanf:"quote0"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// StoreConfig describes the non-volatile region holding the quotes.
type StoreConfig struct {
	// Medium is "file", "mmap" or "memory".
	Medium   string        `koanf:"medium"    validate:"required,oneof=file mmap memory"`
	Path     string        `koanf:"path"      validate:"required_unless=Medium memory"`
	Capacity int           `koanf:"capacity"  validate:"required,min=1,max=255"`
	SlotSize int           `koanf:"slot_size" validate:"required,min=2,max=4096"`
	Watch    bool          `koanf:"watch"`
	Debounce time.Duration `koanf:"debounce"  validate:"omitempty,min=10ms"`
}

// DisplayConfig selects the panel and the text area.
type DisplayConfig struct {
	// Driver is "log", "png", "epaper" or "quote0".
	Driver    string     `koanf:"driver"    validate:"required,oneof=log png epaper quote0"`
	Width     int        `koanf:"width"     validate:"required,min=1"`
	Height    int        `koanf:"height"    validate:"required,min=1"`
	Margin    int        `koanf:"margin"    validate:"min=0"`
	Policy    string     `koanf:"policy"    validate:"required,oneof=truncate paginate"`
	Landscape bool       `koanf:"landscape"`
	PNGPath   string     `koanf:"png_path"  validate:"required_if=Driver png"`
	PDFPath   string     `koanf:"pdf_path"`
	Fonts     FontConfig `koanf:"fonts"     validate:"required"`
}

// FontConfig points at optional TrueType files. Empty paths use the
// embedded Go fonts.
type FontConfig struct {
	BodyPath string  `koanf:"body_path" validate:"omitempty,file"`
	BoldPath string  `koanf:"bold_path" validate:"omitempty,file"`
	BodySize float64 `koanf:"body_size" validate:"required,gt=0"`
	BoldSize float64 `koanf:"bold_size" validate:"required,gt=0"`
	DPI      float64 `koanf:"dpi"       validate:"required,gt=0"`
}

// RotationConfig controls how often the displayed quote changes.
type RotationConfig struct {
	Interval     time.Duration `koanf:"interval"      validate:"required,min=1s"`
	PollInterval time.Duration `koanf:"poll_interval" validate:"required,min=10ms"`
}

// EPaperConfig configures the SPI e-paper panel.
type EPaperConfig struct {
	SPIPort   string `koanf:"spi_port"`
	Threshold uint8  `koanf:"threshold"`
}

// Quote0Config configures the cloud-driven Quote/0 panel.
type Quote0Config struct {
	BaseURL    string  `koanf:"base_url"    validate:"omitempty,url"`
	APIKey     string  `koanf:"api_key"`
	DeviceID   string  `koanf:"device_id"`
	Border     int     `koanf:"border"      validate:"min=0,max=1"`
	DitherType string  `koanf:"dither_type" validate:"omitempty,oneof=NONE DIFFUSION ORDERED"`
	RateLimit  float64 `koanf:"rate_limit"  validate:"omitempty,gt=0"`
}

// ClientConfig contains HTTP client settings for downstream services.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"         validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"      validate:"required,min=1s"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quotescreen",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quotescreen",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "30s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"store.medium":    "file",
		"store.path":      "./data/quotes.bin",
		"store.capacity":  DefaultStoreCapacity,
		"store.slot_size": DefaultStoreSlotSize,
		"store.watch":     false,
		"store.debounce":  "250ms",

		"display.driver":          "log",
		"display.width":           DefaultDisplayWidth,
		"display.height":          DefaultDisplayHeight,
		"display.margin":          DefaultDisplayMargin,
		"display.policy":          "truncate",
		"display.landscape":       true,
		"display.png_path":        "./data/frame.png",
		"display.pdf_path":        "",
		"display.fonts.body_path": "",
		"display.fonts.bold_path": "",
		"display.fonts.body_size": DefaultBodyFontSize,
		"display.fonts.bold_size": DefaultBoldFontSize,
		"display.fonts.dpi":       DefaultFontDPI,

		"rotation.interval":      "1m",
		"rotation.poll_interval": "1s",

		"epaper.spi_port":  "",
		"epaper.threshold": DefaultEPaperThreshold,

		"quote0.base_url":    "https://dot.mindreset.tech",
		"quote0.api_key":     "",
		"quote0.device_id":   "",
		"quote0.border":      0,
		"quote0.dither_type": "NONE",
		"quote0.rate_limit":  1.0,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.Provider("APP_", ".", envKey(k.Keys())), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_STORE_SLOT_SIZE to store.slot_size. Underscores inside
// known keys survive; unknown variables split on every underscore.
func envKey(known []string) func(string) string {
	byEnv := make(map[string]string, len(known))
	for _, key := range known {
		byEnv[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, "APP_"))
		if key, ok := byEnv[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
