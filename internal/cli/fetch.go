package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Downloads the event document and one result per discovered unit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		_, fetchErr := p.fetch(cmd.Context())
		return errors.Join(fetchErr, p.finish(cmd.OutOrStdout()))
	},
}

func init() {
	addFetchFlags(fetchCmd)
}
