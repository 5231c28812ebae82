package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/treellis/worldmatrix/internal/models"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the worldmatrix CLI.
// It wires up configuration loading, logging and the subcommands
// (show, compare, watch, config, cache).
func NewRootCmd(ver string) *cobra.Command {
	var logCloser func()

	cmd := &cobra.Command{
		Use:     "worldmatrix",
		Short:   "Temporal-atmospheric surveillance console",
		Long:    "Worldmatrix: local time and current weather for a tracked set of cities,\nserved from cache, live APIs or deterministic synthesis.",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Negative TTLs have no defined expiry semantics.
			cacheTTL, _ := cmd.Flags().GetInt("cache-ttl")
			if cacheTTL < 0 {
				return fmt.Errorf("cache-ttl must be >= 0, got %d", cacheTTL)
			}

			if cmd.Flags().Changed("units") {
				units, _ := cmd.Flags().GetString("units")
				if !models.UnitSystem(units).Valid() {
					return fmt.Errorf("units must be %q or %q, got %q",
						models.UnitsMetric, models.UnitsImperial, units)
				}
			}

			closer, err := setupLogging(cmd)
			if err != nil {
				return err
			}
			logCloser = closer
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "configuration directory (default ~/.worldmatrix)")
	cmd.PersistentFlags().Int("cache-ttl", 0, "cache TTL in seconds (overrides config file and env var when set)")
	cmd.PersistentFlags().String("units", "", "measurement units: metric or imperial (overrides config)")

	cmd.AddCommand(NewShowCmd(), NewCompareCmd(), NewWatchCmd(), newConfigCmd(), newCacheCmd())

	return cmd
}

const rootCmdExample = `  # Time and weather panels for every tracked city
  worldmatrix show

  # Isolate a single city
  worldmatrix show tokyo

  # Comparative analysis matrix
  worldmatrix compare

  # Continuous surveillance with a 30s refresh
  worldmatrix watch --interval 30

  # Unformatted data stream (JSON)
  worldmatrix show --raw

  # Configure credentials and units
  worldmatrix config set openweather_api_key YOUR_KEY
  worldmatrix config set units imperial

  # Cache maintenance
  worldmatrix cache info
  worldmatrix cache purge`

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigSetCmd(), NewConfigMigrateCmd())
	return cmd
}

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Cache maintenance commands"}
	cmd.AddCommand(NewCachePurgeCmd(), NewCacheInfoCmd())
	return cmd
}
