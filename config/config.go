// Package config loads the dge configuration from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/dge"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultDataFile    = "dge_goods_data.json"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
	DefaultAddr        = ":8080"
	DefaultAssistModel = "gemini-2.5-flash"
)

// Config represents the full application configuration surface.
type Config struct {
	DataFile   string           `yaml:"data_file"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
	Assist     AssistConfig     `yaml:"assist"`
	Categories []CategoryConfig `yaml:"categories"`
	Ports      []string         `yaml:"ports"`
}

// LogConfig holds the logger options.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AssistConfig holds the settings of the classification assistant.
type AssistConfig struct {
	Model string `yaml:"model"`
}

// CategoryConfig overrides the built-in category table.
type CategoryConfig struct {
	Name    string      `yaml:"name"`
	Percent dge.Percent `yaml:"percent"`
}

// Load reads the YAML file at path, if not empty, then applies the environment
// variables (optionally read from a .env file) and the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed parsing config file %s: %w", path, err)
		}
	}

	// Missing .env files are acceptable, configuration can come from the
	// environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed loading .env file: %w", err)
	}

	cfg.DataFile = getenvWithDefault("DGE_DATA_FILE", cfg.DataFile, DefaultDataFile)
	cfg.Log.Level = getenvWithDefault("DGE_LOG_LEVEL", cfg.Log.Level, DefaultLogLevel)
	cfg.Log.Format = getenvWithDefault("DGE_LOG_FORMAT", cfg.Log.Format, DefaultLogFormat)
	cfg.Server.Addr = getenvWithDefault("DGE_ADDR", cfg.Server.Addr, DefaultAddr)
	cfg.Assist.Model = getenvWithDefault("DGE_ASSIST_MODEL", cfg.Assist.Model, DefaultAssistModel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures that the configuration is usable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.DataFile) == "" {
		return errors.New("data_file must not be empty")
	}
	if _, err := c.CategoryTable(); err != nil {
		return fmt.Errorf("invalid categories: %w", err)
	}
	return nil
}

// CategoryTable returns the configured category table, or the built-in one if
// no category is configured.
func (c *Config) CategoryTable() (*dge.CategoryTable, error) {
	if len(c.Categories) == 0 {
		return dge.DefaultCategories(), nil
	}
	rates := make([]dge.CategoryRate, 0, len(c.Categories))
	for _, cat := range c.Categories {
		rates = append(rates, dge.CategoryRate{Category: dge.Category(cat.Name), Percent: cat.Percent})
	}
	return dge.NewCategoryTable(rates...)
}

// PortOptions returns the configured ports, or the built-in ones.
func (c *Config) PortOptions() []string {
	if len(c.Ports) == 0 {
		return dge.PortOptions
	}
	return c.Ports
}

// getenvWithDefault returns the environment variable if set, the configured
// value if set, the fallback otherwise.
func getenvWithDefault(key, configured, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if configured != "" {
		return configured
	}
	return fallback
}
