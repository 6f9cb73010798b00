package cmd

import (
	"fmt"

	"github.com/rohmanhakim/scores-fixture/internal/build"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the build version.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scores-fixture %s (built %s)\n", build.FullVersion(), build.BuildTime)
	},
}
