package cli

import (
	"github.com/spf13/cobra"

	"github.com/treellis/worldmatrix/internal/engine"
)

// compareParams holds the parameters for the compare command.
type compareParams struct {
	raw bool
}

// NewCompareCmd creates the "compare" command that renders all cities as a
// single comparison table.
func NewCompareCmd() *cobra.Command {
	var params compareParams

	cmd := &cobra.Command{
		Use:   "compare [city...]",
		Short: "Comparative analysis matrix",
		Long: `Render a comparison table with one row per city: local time, temperature,
conditions and the source each reading came from.`,
		Example: `  # Compare every tracked city
  worldmatrix compare

  # Compare a subset
  worldmatrix compare london tokyo

  # Machine-readable snapshot
  worldmatrix compare --raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeCompare(cmd, args, params)
		},
	}

	cmd.Flags().BoolVar(&params.raw, "raw", false, "emit the snapshot as compact JSON")

	return cmd
}

// executeCompare resolves the requested cities and renders the matrix.
func executeCompare(cmd *cobra.Command, cities []string, params compareParams) error {
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

	return engine.RenderComparison(cmd.OutOrStdout(), reports, appx.cfg.Units)
}
