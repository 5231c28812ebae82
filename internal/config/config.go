// Package config loads and persists the tool configuration: API credentials,
// unit system, freshness windows, endpoint URLs, and logging options. The
// backing file lives in the state directory next to the cache.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/treellis/worldmatrix/internal/models"
)

const (
	// DefaultDirName is the state directory under the user's home.
	DefaultDirName = ".worldmatrix"

	// FileName is the configuration file inside the state directory.
	FileName = "config.yaml"

	// CacheDirName is the cache subdirectory inside the state directory.
	CacheDirName = "cache"
)

// Environment variables honored by Load. The credential names predate this
// tool and are kept for drop-in compatibility.
const (
	EnvHome           = "WORLDMATRIX_HOME"
	EnvOpenWeatherKey = "OPENWEATHER_API_KEY"
	EnvWorldTimeKey   = "WORLDTIMEAPI_KEY"
	EnvUnits          = "WORLDMATRIX_UNITS"
	EnvCacheTTL       = "WORLDMATRIX_CACHE_TTL"
)

// Built-in defaults.
const (
	DefaultCacheTTLSeconds        = 600
	DefaultRefreshIntervalSeconds = 300
	DefaultTimeAPIURL             = "http://worldtimeapi.org/api/timezone"
	DefaultWeatherAPIURL          = "https://api.openweathermap.org/data/2.5/weather"
)

// validate checks struct tags on load, save, and set.
var validate = validator.New()

// Config is the persisted tool configuration.
type Config struct {
	OpenWeatherAPIKey      string            `yaml:"openweather_api_key"`
	WorldTimeAPIKey        string            `yaml:"worldtime_api_key"`
	Units                  models.UnitSystem `yaml:"units"                    validate:"oneof=metric imperial"`
	CacheTTLSeconds        int               `yaml:"cache_ttl_seconds"        validate:"gte=0"`
	RefreshIntervalSeconds int               `yaml:"refresh_interval_seconds" validate:"gte=1"`
	TimeAPIURL             string            `yaml:"time_api_url"             validate:"required,url"`
	WeatherAPIURL          string            `yaml:"weather_api_url"          validate:"required,url"`
	Logging                LoggingConfig     `yaml:"logging"`

	// path is the backing file; set by Load, ignored by the YAML codec.
	path string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Units:                  models.UnitsMetric,
		CacheTTLSeconds:        DefaultCacheTTLSeconds,
		RefreshIntervalSeconds: DefaultRefreshIntervalSeconds,
		TimeAPIURL:             DefaultTimeAPIURL,
		WeatherAPIURL:          DefaultWeatherAPIURL,
		Logging:                LoggingConfig{Level: "info"},
	}
}

// Dir resolves the state directory: WORLDMATRIX_HOME when set, otherwise
// ~/.worldmatrix.
func Dir() (string, error) {
	if custom := os.Getenv(EnvHome); custom != "" {
		return custom, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// Load builds the effective configuration for the state directory dir (empty
// means the default directory): built-in defaults, overlaid by the config
// file, overlaid by environment variables, then validated. A missing config
// file is not an error; the defaults apply until Init or Save materializes
// one. Environment values never end up in that file.
func Load(dir string) (*Config, error) {
	cfg, err := LoadFile(dir)
	if err != nil {
		return nil, err
	}

	// A .env in the working directory seeds the environment; missing is the
	// normal case.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads defaults plus the config file, skipping the environment
// overlay. Mutating commands load through here so a later Save never bakes
// an environment credential into the file. A missing file yields the
// defaults untouched.
func LoadFile(dir string) (*Config, error) {
	if dir == "" {
		resolved, err := Dir()
		if err != nil {
			return nil, err
		}
		dir = resolved
	}

	cfg := Default()
	cfg.path = filepath.Join(dir, FileName)

	data, err := os.ReadFile(cfg.path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parsing config %s: %w", cfg.path, unmarshalErr)
		}
	case os.IsNotExist(err):
		// Missing file means defaults, unless a legacy JSON file from an
		// earlier release is still around; that one is honored read-only
		// until config migrate converts it.
		if legacy, ok := DetectLegacy(dir); ok {
			if legacyErr := cfg.applyLegacyFile(legacy); legacyErr != nil {
				return nil, legacyErr
			}
		}
	default:
		return nil, fmt.Errorf("reading config %s: %w", cfg.path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init writes a fresh default configuration file into dir (empty means the
// default directory). It refuses to overwrite an existing file unless force
// is set.
func Init(dir string, force bool) (*Config, error) {
	if dir == "" {
		resolved, err := Dir()
		if err != nil {
			return nil, err
		}
		dir = resolved
	}

	cfg := Default()
	cfg.path = filepath.Join(dir, FileName)

	if !force {
		if _, err := os.Stat(cfg.path); err == nil {
			return nil, fmt.Errorf("configuration file already exists at %s, use --force to overwrite", cfg.path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("checking config path %s: %w", cfg.path, err)
		}
	}

	if err := cfg.Save(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded values.
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvOpenWeatherKey); v != "" {
		c.OpenWeatherAPIKey = v
	}
	if v := os.Getenv(EnvWorldTimeKey); v != "" {
		c.WorldTimeAPIKey = v
	}
	if v := os.Getenv(EnvUnits); v != "" {
		c.Units = models.UnitSystem(v)
	}
	if v := os.Getenv(EnvCacheTTL); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvCacheTTL, v, err)
		}
		c.CacheTTLSeconds = seconds
	}
	return nil
}

// Validate checks the configuration against its declared constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Save writes the configuration atomically with owner-only permissions; the
// file carries credentials.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("configuration has no backing path")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tempPath := c.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := os.Rename(tempPath, c.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("replacing config file: %w", err)
	}
	return nil
}

// Path returns the backing file location.
func (c *Config) Path() string {
	return c.path
}

// StateDir returns the directory holding the config file.
func (c *Config) StateDir() string {
	return filepath.Dir(c.path)
}

// CacheDir returns the cache root inside the state directory.
func (c *Config) CacheDir() string {
	return filepath.Join(c.StateDir(), CacheDirName)
}

// CacheTTL returns the freshness window as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RefreshInterval returns the watch period as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// SettableKeys lists the flat keys accepted by Set, in display order.
func SettableKeys() []string {
	return []string{
		"openweather_api_key",
		"worldtime_api_key",
		"units",
		"cache_ttl_seconds",
		"refresh_interval_seconds",
	}
}

// Set assigns one flat configuration key from its string form. The caller
// persists with Save.
func (c *Config) Set(key, value string) error {
	switch key {
	case "openweather_api_key":
		c.OpenWeatherAPIKey = value
	case "worldtime_api_key":
		c.WorldTimeAPIKey = value
	case "units":
		units := models.UnitSystem(value)
		if !units.Valid() {
			return fmt.Errorf("invalid units %q (metric or imperial)", value)
		}
		c.Units = units
	case "cache_ttl_seconds":
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 0 {
			return fmt.Errorf("cache_ttl_seconds must be a non-negative integer, got %q", value)
		}
		c.CacheTTLSeconds = seconds
	case "refresh_interval_seconds":
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 1 {
			return fmt.Errorf("refresh_interval_seconds must be a positive integer, got %q", value)
		}
		c.RefreshIntervalSeconds = seconds
	default:
		return fmt.Errorf("unknown configuration key %q (valid: %s)", key, strings.Join(SettableKeys(), ", "))
	}
	return nil
}

// Redacted returns a copy with credentials masked for display.
func (c *Config) Redacted() Config {
	out := *c
	out.OpenWeatherAPIKey = MaskCredential(out.OpenWeatherAPIKey)
	out.WorldTimeAPIKey = MaskCredential(out.WorldTimeAPIKey)
	return out
}

// MaskCredential hides a credential, keeping at most its last four
// characters. Empty credentials stay empty so unset keys are visible as such.
func MaskCredential(v string) string {
	if v == "" {
		return ""
	}
	suffix := v
	if len(v) > 4 {
		suffix = v[len(v)-4:]
	}
	return "********" + suffix
}
