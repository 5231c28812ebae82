package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/treellis/worldmatrix/internal/config"
)

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the configuration file with defaults",
		Long: `Creates a new configuration file with default values. Existing files are
preserved unless --force is given.`,
		Example: `  # Create the configuration file
  worldmatrix config init

  # Overwrite an existing file with defaults
  worldmatrix config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("config-dir")

			cfg, err := config.Init(dir, force)
			if err != nil {
				return err
			}

			cmd.Printf("Configuration initialized at %s\n", cfg.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

// NewConfigShowCmd creates the config show command. It prints the effective
// configuration (file, environment and flags applied) with credentials
// masked.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}

			redacted := cfg.Redacted()
			data, err := yaml.Marshal(&redacted)
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}

			cmd.Println("Current Configuration:")
			cmd.Print(string(data))
			return nil
		},
	}
}

// NewConfigSetCmd creates the config set command. Values are written to the
// configuration file; environment overrides are deliberately not loaded so
// they can never leak into it.
func NewConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: fmt.Sprintf(`Set a configuration value and persist it.

Settable keys:
  %s`, strings.Join(config.SettableKeys(), "\n  ")),
		Example: `  # Store the OpenWeather credential
  worldmatrix config set openweather_api_key YOUR_KEY

  # Switch to imperial units
  worldmatrix config set units imperial

  # Shorten the cache freshness window to five minutes
  worldmatrix config set cache_ttl_seconds 300`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			dir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.LoadFile(dir)
			if err != nil {
				return err
			}

			if err := cfg.Set(key, value); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}

			cmd.Println(setConfirmation(key, value))
			return nil
		},
	}

	return cmd
}

// NewConfigMigrateCmd creates the config migrate command. Earlier releases
// kept the configuration as JSON; migrate converts that file to the current
// format and leaves the original in place.
func NewConfigMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Convert a legacy configuration file to the current format",
		Long: `Converts a legacy ` + config.LegacyFileName + ` into ` + config.FileName + `. The legacy
file is preserved. Until it is migrated, a legacy file is honored read-only
whenever no current-format file exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("config-dir")

			cfg, err := config.MigrateLegacy(dir)
			if err != nil {
				return err
			}

			cmd.Printf("Migrated legacy configuration to %s\n", cfg.Path())
			return nil
		},
	}
}

// setConfirmation phrases the post-write acknowledgement per key.
func setConfirmation(key, value string) string {
	switch key {
	case "openweather_api_key":
		return "Configured openweather API key"
	case "worldtime_api_key":
		return "Configured worldtime API key"
	case "units":
		return fmt.Sprintf("Units set to %s", value)
	default:
		return fmt.Sprintf("%s set to %s", key, value)
	}
}
