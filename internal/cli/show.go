package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treellis/worldmatrix/internal/engine"
	"github.com/treellis/worldmatrix/internal/tui"
)

// showParams holds the parameters for the show command.
type showParams struct {
	raw bool
}

// NewShowCmd creates the "show" command that renders a boxed panel per city
// with its local time and current weather.
func NewShowCmd() *cobra.Command {
	var params showParams

	cmd := &cobra.Command{
		Use:   "show [city...]",
		Short: "Display time and weather panels",
		Long: `Display the local time and current weather for the tracked cities.

Without arguments every city in the registry is shown. Pass one or more
city identifiers to isolate them.`,
		Example: `  # All tracked cities
  worldmatrix show

  # A single city
  worldmatrix show tokyo

  # Machine-readable snapshot
  worldmatrix show london newyork --raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeShow(cmd, args, params)
		},
	}

	cmd.Flags().BoolVar(&params.raw, "raw", false, "emit the snapshot as compact JSON")

	return cmd
}

// executeShow resolves the requested cities and renders panels or raw JSON.
func executeShow(cmd *cobra.Command, cities []string, params showParams) error {
	appx, err := buildApp(cmd)
	if err != nil {
		return err
	}

	reports, err := appx.engine.Snapshot(cmd.Context(), cities)
	if err != nil {
		return err
	}

	if params.raw {
		return engine.RenderRawJSON(cmd.OutOrStdout(), reports)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), tui.RenderCityPanels(reports, appx.cfg.Units))
	return err
}
