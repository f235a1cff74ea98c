package main

import (
	"github.com/spf13/cobra"

	"github.com/chrissnell/isomodel/internal/app"
	"github.com/chrissnell/isomodel/internal/log"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation REST server",
		Long: `Starts the REST API, the configured run store and publishers, and runs
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.provider(true)
			if err != nil {
				return err
			}
			defer p.Close()

			return app.New(p, log.GetSugaredLogger()).Run(cmd.Context())
		},
	}
}
