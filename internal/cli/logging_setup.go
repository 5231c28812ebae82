package cli

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/treellis/worldmatrix/internal/config"
	"github.com/treellis/worldmatrix/internal/models"
)

// ctxKey keys the values stashed on the command context.
type ctxKey int

const ctxKeyConfig ctxKey = iota

// setupLogging loads the configuration, configures the process logger and
// stashes both on the command context. Every invocation carries a fresh
// run_id so log lines from concurrent runs can be told apart.
func setupLogging(cmd *cobra.Command) (func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	log, closer, err := config.NewLogger(cfg.Logging, debug)
	if err != nil {
		return nil, err
	}

	log = log.With().Str("run_id", ulid.Make().String()).Logger()
	logger = log.With().Str("component", "cli").Logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.WithContext(ctx)
	ctx = context.WithValue(ctx, ctxKeyConfig, cfg)
	cmd.SetContext(ctx)

	logger.Debug().
		Str("command", cmd.Name()).
		Str("config", cfg.Path()).
		Msg("command started")

	return closer, nil
}

// loadConfig builds the effective configuration: file and environment via
// config.Load, then explicit CLI flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, _ := cmd.Flags().GetString("config-dir")

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("cache-ttl") {
		ttl, _ := cmd.Flags().GetInt("cache-ttl")
		cfg.CacheTTLSeconds = ttl
	}
	if cmd.Flags().Changed("units") {
		units, _ := cmd.Flags().GetString("units")
		cfg.Units = models.UnitSystem(units)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configFrom returns the configuration stashed by setupLogging.
func configFrom(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(ctxKeyConfig).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not initialized")
	}
	return cfg, nil
}
