package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultTimeout    = 10 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second

	DefaultDownloadTimeout = 30 * time.Second

	envPrefix = "VIDSCRAPER_"
)

// Config holds all configuration options for vidscraper
type Config struct {
	// Scraper holds the options every extractor request uses
	Scraper ScraperConfig `yaml:"scraper" json:"scraper"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScraperConfig is the per-scraper request configuration. Zero values mean
// "use the default"; WithDefaults returns the effective configuration.
type ScraperConfig struct {
	UserAgent  string        `yaml:"user_agent" json:"user_agent"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	Retries    int           `yaml:"retries" json:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`
	Proxy      string        `yaml:"proxy,omitempty" json:"proxy,omitempty"`
	Cookie     string        `yaml:"cookie,omitempty" json:"-"`
}

// RateLimitConfig holds client-side request throttling
type RateLimitConfig struct {
	// RequestsPerMinute of zero disables throttling
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int `yaml:"burst_size" json:"burst_size"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	Quality             string        `yaml:"quality" json:"quality"`
	IncludeAudio        bool          `yaml:"include_audio" json:"include_audio"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory     string `yaml:"base_directory" json:"base_directory"`
	WriteMetadata     bool   `yaml:"write_metadata" json:"write_metadata"`
	OverwriteExisting bool   `yaml:"overwrite_existing" json:"overwrite_existing"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
	// Format is "console" or "json"
	Format string `yaml:"format" json:"format"`
}

// WithDefaults returns a copy of c with every unset field filled in.
func (c ScraperConfig) WithDefaults() ScraperConfig {
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retries <= 0 {
		c.Retries = DefaultRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{}.WithDefaults(),
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			BurstSize:         5,
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 3,
			DownloadTimeout:     DefaultDownloadTimeout,
			Quality:             "best",
			IncludeAudio:        true,
		},
		Output: OutputConfig{
			BaseDirectory:     "./downloads",
			WriteMetadata:     true,
			OverwriteExisting: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromEnv loads configuration from VIDSCRAPER_* environment variables.
// Durations are given in milliseconds.
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv(envPrefix + "USER_AGENT"); v != "" {
		c.Scraper.UserAgent = v
	}
	if v := os.Getenv(envPrefix + "PROXY"); v != "" {
		c.Scraper.Proxy = v
	}
	if v := os.Getenv(envPrefix + "COOKIE"); v != "" {
		c.Scraper.Cookie = v
	}
	if v := os.Getenv(envPrefix + "OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(envPrefix + "LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	intVars := []struct {
		name string
		dst  *int
	}{
		{"RETRIES", &c.Scraper.Retries},
		{"REQUESTS_PER_MINUTE", &c.RateLimit.RequestsPerMinute},
		{"CONCURRENT_DOWNLOADS", &c.Download.ConcurrentDownloads},
	}
	for _, iv := range intVars {
		raw := os.Getenv(envPrefix + iv.name)
		if raw == "" {
			continue
		}
		val, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, iv.name, err))
			continue
		}
		*iv.dst = val
	}

	durVars := []struct {
		name string
		dst  *time.Duration
	}{
		{"TIMEOUT_MS", &c.Scraper.Timeout},
		{"RETRY_DELAY_MS", &c.Scraper.RetryDelay},
		{"DOWNLOAD_TIMEOUT_MS", &c.Download.DownloadTimeout},
	}
	for _, dv := range durVars {
		raw := os.Getenv(envPrefix + dv.name)
		if raw == "" {
			continue
		}
		ms, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, dv.name, err))
			continue
		}
		*dv.dst = time.Duration(ms) * time.Millisecond
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// DefaultPath is where `config init` writes a fresh file.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "vidscraper", "config.yaml")
}

func findConfigFile() string {
	locations := []string{
		".vidscraper.yaml",
		".vidscraper.yml",
		DefaultPath(),
		filepath.Join(os.Getenv("HOME"), ".config", "vidscraper", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Scraper.Retries < 0 {
		errs = append(errs, errors.New("retries cannot be negative"))
	}
	if c.Scraper.Timeout < 0 {
		errs = append(errs, errors.New("timeout cannot be negative"))
	}
	if c.Scraper.RetryDelay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}
	if c.Scraper.Proxy != "" {
		if u, err := url.Parse(c.Scraper.Proxy); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid proxy url %q", c.Scraper.Proxy))
		}
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentDownloads > 10 {
		errs = append(errs, errors.New("concurrent downloads should not exceed 10"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, errors.New("log format must be console or json"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only flags the user actually set should be present in the map.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["user-agent"].(string); ok && v != "" {
		c.Scraper.UserAgent = v
	}
	if v, ok := flags["proxy"].(string); ok && v != "" {
		c.Scraper.Proxy = v
	}
	if v, ok := flags["cookie"].(string); ok && v != "" {
		c.Scraper.Cookie = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v > 0 {
		c.Scraper.Timeout = v
	}
	if v, ok := flags["retries"].(int); ok && v > 0 {
		c.Scraper.Retries = v
	}
	if v, ok := flags["retry-delay"].(time.Duration); ok && v > 0 {
		c.Scraper.RetryDelay = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.BaseDirectory = v
	}
	if v, ok := flags["concurrent"].(int); ok && v > 0 {
		c.Download.ConcurrentDownloads = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".vidscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	config.Scraper = config.Scraper.WithDefaults()

	return config, nil
}
