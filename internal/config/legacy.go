package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/treellis/worldmatrix/internal/models"
)

// LegacyFileName is the JSON configuration file earlier releases kept in the
// state directory.
const LegacyFileName = "config.json"

// legacyValues mirrors the flat key set of the legacy file. The credential
// and interval keys were spelled differently back then.
type legacyValues struct {
	OpenWeatherAPIKey string `json:"openweather_api_key"`
	WorldTimeAPIKey   string `json:"worldtimeapi_key"`
	Units             string `json:"units"`
	CacheTTL          int    `json:"cache_ttl"`
	RefreshInterval   int    `json:"refresh_interval"`
}

// DetectLegacy reports the legacy configuration file in dir when one exists.
func DetectLegacy(dir string) (string, bool) {
	path := filepath.Join(dir, LegacyFileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// applyLegacyFile overlays the legacy file's values onto c. Keys absent from
// the file keep their current values.
func (c *Config) applyLegacyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading legacy config %s: %w", path, err)
	}

	legacy := legacyValues{
		OpenWeatherAPIKey: c.OpenWeatherAPIKey,
		WorldTimeAPIKey:   c.WorldTimeAPIKey,
		Units:             string(c.Units),
		CacheTTL:          c.CacheTTLSeconds,
		RefreshInterval:   c.RefreshIntervalSeconds,
	}
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("parsing legacy config %s: %w", path, err)
	}

	c.OpenWeatherAPIKey = legacy.OpenWeatherAPIKey
	c.WorldTimeAPIKey = legacy.WorldTimeAPIKey
	c.Units = models.UnitSystem(legacy.Units)
	c.CacheTTLSeconds = legacy.CacheTTL
	c.RefreshIntervalSeconds = legacy.RefreshInterval
	return nil
}

// MigrateLegacy converts the legacy JSON file in dir (empty means the default
// directory) into the current format and saves it. The legacy file is left in
// place so the old tooling keeps working; migration refuses to overwrite an
// existing current-format file.
func MigrateLegacy(dir string) (*Config, error) {
	if dir == "" {
		resolved, err := Dir()
		if err != nil {
			return nil, err
		}
		dir = resolved
	}

	legacy, ok := DetectLegacy(dir)
	if !ok {
		return nil, fmt.Errorf("no legacy configuration at %s", filepath.Join(dir, LegacyFileName))
	}

	cfg := Default()
	cfg.path = filepath.Join(dir, FileName)

	if _, err := os.Stat(cfg.path); err == nil {
		return nil, fmt.Errorf("configuration file already exists at %s", cfg.path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking config path %s: %w", cfg.path, err)
	}

	if err := cfg.applyLegacyFile(legacy); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(); err != nil {
		return nil, err
	}
	return cfg, nil
}
