package flowquery

import (
	"fmt"
	"os"
	"regexp"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config represents the flowquery configuration
type Config struct {
	Traces             []string            `yaml:"traces"`
	Source             string              `yaml:"source"`
	Databases          map[string]Database `yaml:"databases"`
	DefaultEnvironment string              `yaml:"default_environment"`
	Search             SearchConfig        `yaml:"search"`
	Render             RenderConfig        `yaml:"render"`
}

// Database represents a flow store connection
type Database struct {
	Connection      string `yaml:"connection"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// SearchConfig represents search settings
type SearchConfig struct {
	Workers       int    `yaml:"workers"` // 0 means runtime.NumCPU()
	DefaultFormat string `yaml:"default_format"`
	Filter        string `yaml:"filter"`
}

// RenderConfig represents text output settings
type RenderConfig struct {
	Color          string `yaml:"color"` // auto, always or never
	SeparatorWidth int    `yaml:"separator_width"`
}

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var (
	validFormats    = []string{"text", "json", "yaml", "xml"}
	validColorModes = []string{ColorAuto, ColorAlways, ColorNever}
)

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	if !fileExists(configPath) {
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if config.Search.Workers < 0 {
		return fmt.Errorf("%w: search.workers must not be negative, got %d", ErrConfigValidation, config.Search.Workers)
	}

	if config.Search.DefaultFormat != "" && !slices.Contains(validFormats, config.Search.DefaultFormat) {
		return fmt.Errorf("%w: invalid search.default_format '%s': must be one of text, json, yaml, xml", ErrConfigValidation, config.Search.DefaultFormat)
	}

	if config.Render.Color != "" && !slices.Contains(validColorModes, config.Render.Color) {
		return fmt.Errorf("%w: invalid render.color '%s': must be one of auto, always, never", ErrConfigValidation, config.Render.Color)
	}

	if config.Render.SeparatorWidth < 0 {
		return fmt.Errorf("%w: render.separator_width must not be negative, got %d", ErrConfigValidation, config.Render.SeparatorWidth)
	}

	for name, db := range config.Databases {
		if db.Connection == "" {
			return fmt.Errorf("%w: database '%s' has no connection", ErrConfigValidation, name)
		}

		if db.MaxOpenConns < 0 || db.MaxIdleConns < 0 || db.ConnMaxLifetime < 0 {
			return fmt.Errorf("%w: database '%s' pool settings must not be negative", ErrConfigValidation, name)
		}
	}

	if config.DefaultEnvironment != "" && len(config.Databases) > 0 {
		if _, ok := config.Databases[config.DefaultEnvironment]; !ok {
			return fmt.Errorf("%w: default_environment '%s' is not defined in databases", ErrConfigValidation, config.DefaultEnvironment)
		}
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Databases:          map[string]Database{},
		DefaultEnvironment: "development",
		Search: SearchConfig{
			DefaultFormat: "text",
		},
		Render: RenderConfig{
			Color:          ColorAuto,
			SeparatorWidth: 80,
		},
	}
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	defaults := getDefaultConfig()

	if config.Databases == nil {
		config.Databases = defaults.Databases
	}

	if config.DefaultEnvironment == "" {
		config.DefaultEnvironment = defaults.DefaultEnvironment
	}

	if config.Search.DefaultFormat == "" {
		config.Search.DefaultFormat = defaults.Search.DefaultFormat
	}

	if config.Render.Color == "" {
		config.Render.Color = defaults.Render.Color
	}

	if config.Render.SeparatorWidth == 0 {
		config.Render.SeparatorWidth = defaults.Render.SeparatorWidth
	}

	for name, db := range config.Databases {
		if db.MaxOpenConns == 0 {
			db.MaxOpenConns = 25
		}

		if db.MaxIdleConns == 0 {
			db.MaxIdleConns = 25
		}

		if db.ConnMaxLifetime == 0 {
			db.ConnMaxLifetime = 300
		}

		config.Databases[name] = db
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return bareEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in paths and connections
func expandConfigEnvVars(config *Config) {
	for name, db := range config.Databases {
		db.Connection = expandEnvVars(db.Connection)
		config.Databases[name] = db
	}

	for i, trace := range config.Traces {
		config.Traces[i] = expandEnvVars(trace)
	}

	config.Source = expandEnvVars(config.Source)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// Database returns the connection of the named environment, or of the default
// environment when env is empty.
func (c *Config) Database(env string) (Database, error) {
	if env == "" {
		env = c.DefaultEnvironment
	}

	db, ok := c.Databases[env]
	if !ok {
		return Database{}, fmt.Errorf("%w: '%s'", ErrUnknownEnvironment, env)
	}

	return db, nil
}
