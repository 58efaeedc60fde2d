package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/vidyasagar/wgen/internal/gallery"
	"github.com/vidyasagar/wgen/internal/storage"
)

// Config holds runtime options. Values come from Defaults, then .env, then
// the environment, and finally command-line flags.
type Config struct {
	APIBase      string        `env:"WGEN_API_BASE"`      // image API root
	Timeout      time.Duration `env:"WGEN_TIMEOUT"`       // per-request timeout
	HistorySize  int           `env:"WGEN_HISTORY_SIZE"`  // history capacity, also the image cache size
	TempTTL      time.Duration `env:"WGEN_TEMP_TTL"`      // lifetime of a displayed temp file
	SettingsPath string        `env:"WGEN_SETTINGS_PATH"` // empty means the per-user config dir
	DataDir      string        `env:"WGEN_DATA_DIR"`      // empty means the per-user data dir
	Theme        string        `env:"WGEN_THEME"`
	Debug        bool          `env:"WGEN_DEBUG"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		APIBase:     gallery.DefaultBaseURL,
		Timeout:     gallery.DefaultTimeout,
		HistorySize: gallery.DefaultHistorySize,
		TempTTL:     gallery.DefaultTempTTL,
		Theme:       "default",
	}
}

// Load builds the configuration from defaults, an optional .env file in the
// working directory and WGEN_* environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.APIBase == "" {
		errs = append(errs, errors.New("api base must not be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("history size must be at least 1, got %d", c.HistorySize))
	}
	if c.TempTTL <= 0 {
		errs = append(errs, fmt.Errorf("temp ttl must be positive, got %s", c.TempTTL))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ResolvePaths fills SettingsPath and DataDir with the per-user locations
// when they were not set explicitly.
func (c *Config) ResolvePaths() error {
	if c.SettingsPath == "" {
		p, err := storage.SettingsPath()
		if err != nil {
			return err
		}
		c.SettingsPath = p
	}
	if c.DataDir == "" {
		d, err := storage.DataDir()
		if err != nil {
			return err
		}
		c.DataDir = d
	}
	return nil
}
