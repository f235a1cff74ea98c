package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chrissnell/isomodel/internal/app"
	"github.com/chrissnell/isomodel/internal/log"
	"github.com/chrissnell/isomodel/internal/report"
	"github.com/chrissnell/isomodel/internal/runner"
	"github.com/chrissnell/isomodel/internal/types"
)

type simulateOptions struct {
	ism           string
	defaults      string
	monthly       bool
	hourlyByMonth bool
	hourly        bool
	compare       string
	store         bool
	publish       bool
}

func (o *simulateOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.ism, "ism", "i", "", "Path to ism file")
	f.StringVarP(&o.defaults, "defaults", "d", "", "Path to defaults ism file")
	f.BoolVarP(&o.monthly, "monthly", "m", false, "Run the monthly simulation (default)")
	f.BoolVarP(&o.hourlyByMonth, "hourly-by-month", "b", false, "Run the hourly simulation (results aggregated by month)")
	f.BoolVarP(&o.hourly, "hourly", "H", false, "Run the hourly simulation (results for each hour)")
	f.StringVarP(&o.compare, "compare", "c", "", "Run the monthly and hourly simulations and compare the results: 'md' for markdown, 'csv' for csv")
	f.BoolVar(&o.store, "store", false, "Save runs to the configured store")
	f.BoolVar(&o.publish, "publish", false, "Send runs to the configured MQTT and InfluxDB publishers")
}

// modes returns the requested simulations in the order they run.
func (o *simulateOptions) modes() []types.Mode {
	var modes []types.Mode
	if o.monthly {
		modes = append(modes, types.ModeMonthly)
	}
	if o.hourlyByMonth {
		modes = append(modes, types.ModeHourlyByMonth)
	}
	if o.hourly {
		modes = append(modes, types.ModeHourly)
	}
	if len(modes) == 0 && o.compare == "" {
		modes = append(modes, types.ModeMonthly)
	}
	return modes
}

func resultsTitle(m types.Mode) string {
	switch m {
	case types.ModeHourlyByMonth:
		return "Hourly results by month:"
	case types.ModeHourly:
		return "Hourly results by hour:"
	}
	return "Monthly Results:"
}

func runSimulate(cmd *cobra.Command, args []string, g *globalOptions, o *simulateOptions) error {
	building, defaults := o.ism, o.defaults
	if building == "" && len(args) > 0 {
		building = args[0]
	}
	if defaults == "" && len(args) > 1 {
		defaults = args[1]
	}
	if building == "" {
		return fmt.Errorf("an ism file is required (-i/--ism or the first argument)")
	}
	if o.compare != "" && o.compare != report.FormatMarkdown && o.compare != report.FormatCSV {
		return fmt.Errorf("unknown compare output %q; use '%s' or '%s'", o.compare, report.FormatMarkdown, report.FormatCSV)
	}

	cfg, err := g.loadConfig(o.store || o.publish)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	services, err := app.Build(ctx, cfg, log.GetSugaredLogger(), o.store, o.publish)
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			log.Errorf("error closing services: %v", err)
		}
	}()
	if o.store && services.Store == nil {
		return errNoStore
	}

	out := cmd.OutOrStdout()
	run := func(mode types.Mode) (*types.Run, error) {
		return services.Runner.Run(ctx, runner.Request{Building: building, Defaults: defaults, Mode: mode})
	}

	if o.compare != "" {
		monthly, err := run(types.ModeMonthly)
		if err != nil {
			return err
		}
		hourly, err := run(types.ModeHourlyByMonth)
		if err != nil {
			return err
		}
		if err := report.WriteComparison(out, o.compare, monthly.Results, hourly.Results); err != nil {
			return err
		}
	}

	for _, mode := range o.modes() {
		r, err := run(mode)
		if err != nil {
			return err
		}
		if err := printRun(out, r); err != nil {
			return err
		}
	}
	return nil
}

func printRun(out io.Writer, r *types.Run) error {
	if _, err := fmt.Fprintln(out, resultsTitle(r.Mode)); err != nil {
		return err
	}
	return report.WriteCSV(out, r.PeriodLabel(), r.Results)
}
