package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tallyocr/tally/internal/bill"
	"github.com/tallyocr/tally/internal/fetch"
	"github.com/tallyocr/tally/internal/ocrspace"
)

// Config is the complete configuration for the tally application. It
// covers all commands (extract, scan, serve) and loads from a config
// file, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Extraction pipeline tunables
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction" json:"extraction"`

	// OCR provider settings
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Document download settings
	Fetch FetchConfig `mapstructure:"fetch" yaml:"fetch" json:"fetch"`

	// Output formatting
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// ExtractionConfig tunes the token-to-line-items pipeline.
type ExtractionConfig struct {
	// LineTolerance is the vertical grouping band as a fraction of token height.
	LineTolerance float64 `mapstructure:"line_tolerance" yaml:"line_tolerance" json:"line_tolerance"`
	// ConsistencyTolerance is the relative tolerance of the qty*rate==amount check.
	ConsistencyTolerance float64 `mapstructure:"consistency_tolerance" yaml:"consistency_tolerance" json:"consistency_tolerance"`
	// VocabFile optionally overrides the built-in classification vocabulary.
	VocabFile string `mapstructure:"vocab_file" yaml:"vocab_file" json:"vocab_file"`
}

// OCRConfig holds OCR.Space provider settings.
type OCRConfig struct {
	Endpoint   string `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key" json:"api_key"`
	Language   string `mapstructure:"language" yaml:"language" json:"language"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// FetchConfig holds document download settings.
type FetchConfig struct {
	TimeoutSec    int   `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	MaxDownloadMB int64 `mapstructure:"max_download_mb" yaml:"max_download_mb" json:"max_download_mb"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	// IncludeTokens echoes the OCR tokens in responses for debugging.
	IncludeTokens bool `mapstructure:"include_tokens" yaml:"include_tokens" json:"include_tokens"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig contains per-client request limits.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	RequestsPerDay    int  `mapstructure:"requests_per_day" yaml:"requests_per_day" json:"requests_per_day"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	billDefaults := bill.DefaultConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Extraction: ExtractionConfig{
			LineTolerance:        billDefaults.LineTolerance,
			ConsistencyTolerance: billDefaults.ConsistencyTolerance,
		},
		OCR: OCRConfig{
			Endpoint:   ocrspace.DefaultEndpoint,
			Language:   "eng",
			TimeoutSec: 120,
		},
		Fetch: FetchConfig{
			TimeoutSec:    10,
			MaxDownloadMB: 50,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			TimeoutSec:      150,
			ShutdownTimeout: 10,
			IncludeTokens:   false,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 60,
				RequestsPerHour:   1000,
				RequestsPerDay:    5000,
			},
		},
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"json", "csv", "text"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}

	if c.Extraction.LineTolerance < 0 || c.Extraction.LineTolerance > 1 {
		return fmt.Errorf("invalid extraction.line_tolerance: %.2f (must be between 0.0 and 1.0)",
			c.Extraction.LineTolerance)
	}
	if c.Extraction.ConsistencyTolerance < 0 || c.Extraction.ConsistencyTolerance > 1 {
		return fmt.Errorf("invalid extraction.consistency_tolerance: %.2f (must be between 0.0 and 1.0)",
			c.Extraction.ConsistencyTolerance)
	}

	if c.OCR.TimeoutSec <= 0 {
		return fmt.Errorf("invalid ocr.timeout_sec: %d (must be positive)", c.OCR.TimeoutSec)
	}
	if c.Fetch.TimeoutSec <= 0 {
		return fmt.Errorf("invalid fetch.timeout_sec: %d (must be positive)", c.Fetch.TimeoutSec)
	}
	if c.Fetch.MaxDownloadMB <= 0 {
		return fmt.Errorf("invalid fetch.max_download_mb: %d (must be positive)", c.Fetch.MaxDownloadMB)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid server timeout: %d (must be positive)", c.Server.TimeoutSec)
	}

	return nil
}

// ToExtractorConfig converts the configuration into the pipeline's
// tunables, loading the vocabulary override file when set.
func (c *Config) ToExtractorConfig() (bill.Config, error) {
	cfg := bill.DefaultConfig()
	if c.Extraction.LineTolerance > 0 {
		cfg.LineTolerance = c.Extraction.LineTolerance
	}
	if c.Extraction.ConsistencyTolerance > 0 {
		cfg.ConsistencyTolerance = c.Extraction.ConsistencyTolerance
	}
	if c.Extraction.VocabFile != "" {
		vocab, err := bill.LoadVocabulary(c.Extraction.VocabFile)
		if err != nil {
			return bill.Config{}, err
		}
		cfg.Vocabulary = vocab
	}
	return cfg, nil
}

// ToOCRConfig converts to the OCR client configuration.
func (c *Config) ToOCRConfig() ocrspace.Config {
	return ocrspace.Config{
		Endpoint: c.OCR.Endpoint,
		APIKey:   c.OCR.APIKey,
		Language: c.OCR.Language,
		Timeout:  time.Duration(c.OCR.TimeoutSec) * time.Second,
	}
}

// NewDownloader builds the document downloader from the configuration.
func (c *Config) NewDownloader() *fetch.Downloader {
	return fetch.NewDownloader(time.Duration(c.Fetch.TimeoutSec)*time.Second, c.Fetch.MaxDownloadMB)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
