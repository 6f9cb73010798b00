package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetches, then assembles.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		run, err := p.fetch(cmd.Context())
		if err == nil {
			err = p.assemble(run.Units)
		}
		return errors.Join(err, p.finish(cmd.OutOrStdout()))
	},
}

func init() {
	addFetchFlags(runCmd)
	addAssembleFlags(runCmd)
}
