package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joshharrison/steploom/internal/sim"
)

// DefaultPath is read when no config path is given and the file exists.
const DefaultPath = "steploom.yaml"

const envPrefix = "STEPLOOM_"

// Config holds run configuration for the CLI.
type Config struct {
	Workers      int            `yaml:"workers"`
	BaseDuration int            `yaml:"base_duration"`
	Durations    map[string]int `yaml:"durations,omitempty"` // per-task overrides
	LogLevel     string         `yaml:"log_level"`
	LogFormat    string         `yaml:"log_format"`
}

// LoadOptions selects the files Load reads.
type LoadOptions struct {
	Path    string // YAML file; "" reads DefaultPath if present
	EnvFile string // dotenv file; "" reads .env if present
}

// Default returns the built-in configuration: five workers, each task taking
// sixty ticks plus its alphabet position.
func Default() Config {
	return Config{
		Workers:      5,
		BaseDuration: 60,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load applies defaults, then the YAML file, then dotenv and environment
// variables. Callers apply explicit flags on top and then call Validate.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	path, required := opts.Path, opts.Path != ""
	if path == "" {
		path = DefaultPath
	}
	if err := cfg.mergeFile(path, required); err != nil {
		return nil, err
	}

	envFile, required := opts.EnvFile, opts.EnvFile != ""
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := readDotenv(envFile, required)
	if err != nil {
		return nil, err
	}
	if err := cfg.mergeEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func readDotenv(path string, required bool) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return vals, nil
}

func (c *Config) mergeEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(envPrefix + "WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", envPrefix, err)
		}
		c.Workers = n
	}
	if v := strings.TrimSpace(getenv(envPrefix + "BASE_DURATION")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sBASE_DURATION: %w", envPrefix, err)
		}
		c.BaseDuration = n
	}
	if v := strings.TrimSpace(getenv(envPrefix + "LOG_LEVEL")); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(envPrefix + "LOG_FORMAT")); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	return nil
}

// Validate checks the configuration can drive a simulation.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.BaseDuration < 0 {
		return fmt.Errorf("base_duration must not be negative, got %d", c.BaseDuration)
	}
	for task, d := range c.Durations {
		if d <= 0 {
			return fmt.Errorf("duration for task %q must be positive, got %d", task, d)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q (use debug, info, warn or error)", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q (use text or json)", c.LogFormat)
	}
	return nil
}

// DurationFunc returns the per-task duration: the override table first,
// then base plus alphabet position.
func (c *Config) DurationFunc() sim.DurationFunc {
	base := sim.AlphabetDuration(c.BaseDuration)
	if len(c.Durations) == 0 {
		return base
	}
	return sim.TableDuration(c.Durations, base)
}
