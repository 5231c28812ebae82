package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treellis/worldmatrix/internal/models"
)

// NewCachePurgeCmd creates the cache purge command.
func NewCachePurgeCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Drop every cached record",
		Example: `  # Purge with confirmation
  worldmatrix cache purge

  # Purge without prompting (scripts, CI)
  worldmatrix cache purge --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appx, err := buildApp(cmd)
			if err != nil {
				return err
			}

			if !force {
				result := ConfirmPurge(cmd.OutOrStdout(), cmd.InOrStdin(), appx.store.Directory())
				if result.Cancelled {
					return errors.New("reading confirmation failed")
				}
				if !result.Accepted {
					cmd.Println("Aborted")
					return nil
				}
			}

			if err := appx.store.Purge(); err != nil {
				return fmt.Errorf("purging cache: %w", err)
			}

			cmd.Println("Cache purged")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")

	return cmd
}

// NewCacheInfoCmd creates the cache info command.
func NewCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache location and entry counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appx, err := buildApp(cmd)
			if err != nil {
				return err
			}

			stats, err := appx.store.Stats()
			if err != nil {
				return fmt.Errorf("reading cache stats: %w", err)
			}

			cmd.Printf("Directory:           %s\n", stats.Directory)
			cmd.Printf("Temporal entries:    %d\n", stats.Entries[models.KindTemporal])
			cmd.Printf("Atmospheric entries: %d\n", stats.Entries[models.KindAtmospheric])
			cmd.Printf("Total size:          %s\n", humanBytes(stats.TotalBytes))
			return nil
		},
	}
}

// humanBytes renders a byte count with a binary unit suffix.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMG"[exp])
}
