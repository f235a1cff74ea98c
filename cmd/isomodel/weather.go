package main

import (
	"github.com/spf13/cobra"

	"github.com/chrissnell/isomodel/pkg/epw"
	"github.com/chrissnell/isomodel/pkg/isomodel"
)

func newWeatherCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weather <file.epw>",
		Short: "Print the monthly ISO weather summary of an EPW file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := epw.Load(args[0])
			if err != nil {
				return err
			}
			return isomodel.NewWeatherData(data).WriteISOData(cmd.OutOrStdout())
		},
	}
}
