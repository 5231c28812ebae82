package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/treellis/worldmatrix/internal/atmospheric"
	"github.com/treellis/worldmatrix/internal/cache"
	"github.com/treellis/worldmatrix/internal/config"
	"github.com/treellis/worldmatrix/internal/engine"
	"github.com/treellis/worldmatrix/internal/registry"
	"github.com/treellis/worldmatrix/internal/temporal"
)

// clientTimeout bounds a single upstream request.
const clientTimeout = 5 * time.Second

// app bundles the wired services behind the data commands.
type app struct {
	cfg    *config.Config
	reg    *registry.Registry
	store  *cache.Store
	engine *engine.Engine
	log    zerolog.Logger
}

// buildApp wires the cache store, the upstream clients and the snapshot
// engine from the loaded configuration. The time API works without a
// credential; the weather API does not, so without a key the weather tier
// drops straight to synthesis.
func buildApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	cfg, err := configFrom(ctx)
	if err != nil {
		return nil, err
	}
	log := zerolog.Ctx(ctx)

	reg := registry.Default()

	store, err := cache.NewStore(cfg.CacheDir(), *log)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	timeAPI := temporal.NewClient(cfg.TimeAPIURL, cfg.WorldTimeAPIKey, clientTimeout)

	var weatherAPI atmospheric.ConditionsSource
	if cfg.OpenWeatherAPIKey != "" {
		weatherAPI = atmospheric.NewClient(cfg.WeatherAPIURL, cfg.OpenWeatherAPIKey, clientTimeout)
	} else {
		log.Debug().Msg("no weather credential configured, conditions will be synthesized")
	}

	ttl := cfg.CacheTTL()
	times := temporal.NewService(reg, store, timeAPI, ttl, *log)
	weather := atmospheric.NewService(reg, store, weatherAPI, cfg.Units, ttl, *log)

	return &app{
		cfg:    cfg,
		reg:    reg,
		store:  store,
		engine: engine.New(reg, times, weather, *log),
		log:    *log,
	}, nil
}
