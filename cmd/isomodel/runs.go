package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrissnell/isomodel/internal/managers"
	"github.com/chrissnell/isomodel/internal/storage"
	"github.com/chrissnell/isomodel/pkg/config"
)

func newRunsCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored simulation runs",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, g)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs found")
				return nil
			}
			fmt.Fprintf(out, "%-36s  %-20s  %-15s  %12s  %s\n", "ID", "Created", "Mode", "Total", "Building")
			for _, r := range runs {
				fmt.Fprintf(out, "%-36s  %-20s  %-15s  %12.4f  %s\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Mode, r.Total, r.Building)
			}
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", config.DefaultRunLimit, "Maximum number of runs to list")

	var asJSON bool
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the results of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, g)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}
			return printRun(out, run)
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")

	cmd.AddCommand(list, show)
	return cmd
}

func openStore(cmd *cobra.Command, g *globalOptions) (storage.Store, error) {
	cfg, err := g.loadConfig(true)
	if err != nil {
		return nil, err
	}
	store, _, err := managers.NewStore(cmd.Context(), cfg.Storage)
	if err != nil {
		if errors.Is(err, managers.ErrNoStore) {
			return nil, errNoStore
		}
		return nil, err
	}
	return store, nil
}
