// Command isomodel-example loads a building and its defaults, then prints
// the electric cooling energy of every month from the monthly and the
// hourly-by-month simulations, each followed by its total energy use.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chrissnell/isomodel/internal/log"
	"github.com/chrissnell/isomodel/internal/report"
	"github.com/chrissnell/isomodel/pkg/isomodel"
)

func main() {
	building := flag.String("building", "SmallHotel.ism", "Path to the building ism file")
	defaults := flag.String("defaults", "defaults.ism", "Path to the defaults ism file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(os.Stdout, *building, *defaults); err != nil {
		log.Errorf("%v", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(out io.Writer, building, defaults string) error {
	u := isomodel.NewUserModel(isomodel.WithLogger(log.GetSugaredLogger()))
	if err := u.Load(building, defaults); err != nil {
		return err
	}

	monthly, err := u.ToMonthlyModel()
	if err != nil {
		return err
	}
	results, err := monthly.Simulate()
	if err != nil {
		return err
	}
	if err := report.WriteScript(out, results, isomodel.ElecCool); err != nil {
		return err
	}

	hourly, err := u.ToHourlyModel()
	if err != nil {
		return err
	}
	results, err = hourly.Simulate(true)
	if err != nil {
		return err
	}
	return report.WriteScript(out, results, isomodel.ElecCool)
}
