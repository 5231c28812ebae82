package main

import (
	"os"

	// The clients localize instants into IANA zones; embedding the zone
	// database keeps that working on hosts without one.
	_ "time/tzdata"

	"github.com/treellis/worldmatrix/internal/cli"
	"github.com/treellis/worldmatrix/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command. Cobra already printed the error by the time
// Execute returns, so failure only needs mapping to an exit code.
func run() int {
	cmd := cli.NewRootCmd(version.GetVersion())
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}
