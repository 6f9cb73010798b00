package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assembles previously fetched files into the endpoint fixture.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		units, err := p.loadUnits()
		if err == nil {
			err = p.assemble(units)
		}
		return errors.Join(err, p.finish(cmd.OutOrStdout()))
	},
}

func init() {
	addAssembleFlags(assembleCmd)
}
