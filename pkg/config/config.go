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

// QueryPlaceholder marks where the search query is substituted in the endpoint template
const QueryPlaceholder = "{query}"

// Config holds all configuration options for imgtools
type Config struct {
	// Batch renamer settings
	Renamer RenamerConfig `yaml:"renamer" json:"renamer"`

	// Image scraper settings
	Scraper ScraperConfig `yaml:"scraper" json:"scraper"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Run metrics export
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// RenamerConfig holds batch renamer configuration
type RenamerConfig struct {
	Prefix      string `yaml:"prefix" json:"prefix"`
	Extension   string `yaml:"extension" json:"extension"`
	DefaultRoot string `yaml:"default_root" json:"default_root"`
}

// ScraperConfig holds image scraper configuration
type ScraperConfig struct {
	Endpoint        string        `yaml:"endpoint" json:"endpoint"`
	UserAgent       string        `yaml:"user_agent" json:"user_agent"`
	OutputRoot      string        `yaml:"output_root" json:"output_root"`
	DefaultCount    int           `yaml:"default_count" json:"default_count"`
	SearchTimeout   time.Duration `yaml:"search_timeout" json:"search_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`
	PolitenessDelay time.Duration `yaml:"politeness_delay" json:"politeness_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// MetricsConfig holds the Prometheus textfile export settings.
// An empty Textfile disables the export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" json:"textfile"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Renamer: RenamerConfig{
			Prefix:      "Image_",
			Extension:   ".jpg",
			DefaultRoot: "downloaded_google_images",
		},
		Scraper: ScraperConfig{
			Endpoint:        "https://www.google.com/search?q={query}&tbm=isch",
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/97.0.4692.71 Safari/537.36",
			OutputRoot:      "downloaded_google_images",
			DefaultCount:    5,
			SearchTimeout:   20 * time.Second,
			DownloadTimeout: 15 * time.Second,
			PolitenessDelay: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Metrics: MetricsConfig{
			Textfile: "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if prefix := os.Getenv("IMGTOOLS_PREFIX"); prefix != "" {
		c.Renamer.Prefix = prefix
	}
	if root := os.Getenv("IMGTOOLS_RENAME_ROOT"); root != "" {
		c.Renamer.DefaultRoot = root
	}

	if endpoint := os.Getenv("IMGTOOLS_SEARCH_ENDPOINT"); endpoint != "" {
		c.Scraper.Endpoint = endpoint
	}
	if userAgent := os.Getenv("IMGTOOLS_USER_AGENT"); userAgent != "" {
		c.Scraper.UserAgent = userAgent
	}
	if outputDir := os.Getenv("IMGTOOLS_OUTPUT_DIR"); outputDir != "" {
		c.Scraper.OutputRoot = outputDir
	}
	if count := os.Getenv("IMGTOOLS_DEFAULT_COUNT"); count != "" {
		val, err := strconv.Atoi(count)
		if err != nil {
			errs = append(errs, fmt.Errorf("IMGTOOLS_DEFAULT_COUNT: %w", err))
		} else {
			c.Scraper.DefaultCount = val
		}
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"IMGTOOLS_SEARCH_TIMEOUT", &c.Scraper.SearchTimeout},
		{"IMGTOOLS_DOWNLOAD_TIMEOUT", &c.Scraper.DownloadTimeout},
		{"IMGTOOLS_POLITENESS_DELAY", &c.Scraper.PolitenessDelay},
	}
	for _, d := range durations {
		raw := os.Getenv(d.key)
		if raw == "" {
			continue
		}
		val, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.key, err))
			continue
		}
		*d.target = val
	}

	if logLevel := os.Getenv("IMGTOOLS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("IMGTOOLS_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}
	if textfile := os.Getenv("IMGTOOLS_METRICS_TEXTFILE"); textfile != "" {
		c.Metrics.Textfile = textfile
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
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

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".imgtools.yaml",
		".imgtools.yml",
		filepath.Join(home, ".config", "imgtools", "config.yaml"),
		filepath.Join(home, ".config", "imgtools", "config.yml"),
		filepath.Join(home, ".imgtools.yaml"),
		filepath.Join(home, ".imgtools.yml"),
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

	// Renamer
	if c.Renamer.Prefix == "" {
		errs = append(errs, errors.New("renamer prefix is required"))
	}
	if !strings.HasPrefix(c.Renamer.Extension, ".") || len(c.Renamer.Extension) < 2 {
		errs = append(errs, errors.New("renamer extension must start with a dot"))
	}

	// Scraper
	if !strings.Contains(c.Scraper.Endpoint, QueryPlaceholder) {
		errs = append(errs, fmt.Errorf("search endpoint must contain %s", QueryPlaceholder))
	} else if u, err := url.Parse(strings.ReplaceAll(c.Scraper.Endpoint, QueryPlaceholder, "q")); err != nil || u.Host == "" {
		errs = append(errs, errors.New("search endpoint must be an absolute URL"))
	}
	if c.Scraper.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Scraper.OutputRoot == "" {
		errs = append(errs, errors.New("output root is required"))
	}
	if c.Scraper.DefaultCount <= 0 {
		errs = append(errs, errors.New("default count must be positive"))
	}
	if c.Scraper.SearchTimeout <= 0 {
		errs = append(errs, errors.New("search timeout must be positive"))
	}
	if c.Scraper.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Scraper.PolitenessDelay < 0 {
		errs = append(errs, errors.New("politeness delay cannot be negative"))
	}

	// Logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
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

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map override the loaded values.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if prefix, ok := flags["prefix"].(string); ok && prefix != "" {
		c.Renamer.Prefix = prefix
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Scraper.OutputRoot = output
	}
	if endpoint, ok := flags["endpoint"].(string); ok && endpoint != "" {
		c.Scraper.Endpoint = endpoint
	}
	if count, ok := flags["count"].(int); ok && count > 0 {
		c.Scraper.DefaultCount = count
	}
	if delay, ok := flags["politeness-delay"].(time.Duration); ok && delay >= 0 {
		c.Scraper.PolitenessDelay = delay
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if textfile, ok := flags["metrics-textfile"].(string); ok && textfile != "" {
		c.Metrics.Textfile = textfile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".imgtools.env"))

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

	return config, nil
}
