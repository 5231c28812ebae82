package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/treellis/worldmatrix/internal/engine"
	"github.com/treellis/worldmatrix/internal/registry"
	"github.com/treellis/worldmatrix/internal/tui"
)

// watchParams holds the parameters for the watch command.
type watchParams struct {
	interval int
	compare  bool
}

// NewWatchCmd creates the "watch" command: a full-screen dashboard that
// refreshes the city snapshot on a fixed interval.
func NewWatchCmd() *cobra.Command {
	var params watchParams

	cmd := &cobra.Command{
		Use:   "watch [city...]",
		Short: "Continuous surveillance dashboard",
		Long: `Run a full-screen dashboard that refreshes the tracked cities on a fixed
interval. Intervals below two seconds are raised to the minimum.

Press c to toggle between panels and the comparison table, q or Ctrl+C to
terminate.`,
		Example: `  # Watch every city, refreshing with the configured interval
  worldmatrix watch

  # Watch a single city every 30 seconds
  worldmatrix watch tokyo --interval 30

  # Start in comparison mode
  worldmatrix watch --compare`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeWatch(cmd, args, params)
		},
	}

	cmd.Flags().IntVar(&params.interval, "interval", 0, "refresh interval in seconds (0 = config default)")
	cmd.Flags().BoolVar(&params.compare, "compare", false, "show the comparison table instead of panels")

	return cmd
}

// executeWatch validates the target cities and runs the dashboard until the
// user quits or a snapshot fails.
func executeWatch(cmd *cobra.Command, cities []string, params watchParams) error {
	if !isTerminal(os.Stdout) {
		return errors.New("watch mode requires an interactive terminal")
	}

	appx, err := buildApp(cmd)
	if err != nil {
		return err
	}

	// Reject unknown cities before entering the alternate screen.
	for _, id := range cities {
		if _, ok := appx.reg.Lookup(id); !ok {
			return fmt.Errorf("%w: %q", registry.ErrUnknownCity, id)
		}
	}

	interval := appx.cfg.RefreshInterval()
	if params.interval > 0 {
		interval = time.Duration(params.interval) * time.Second
	}

	fetch := func(ctx context.Context) ([]engine.CityReport, error) {
		return appx.engine.Snapshot(ctx, cities)
	}

	model := tui.NewWatchModel(cmd.Context(), fetch, appx.cfg.Units, interval, params.compare)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	if err := model.Err(); err != nil {
		return fmt.Errorf("surveillance failed: %w", err)
	}

	cmd.Println("Surveillance terminated")
	return nil
}
