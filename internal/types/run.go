// Package types holds the records shared by the runner, stores, publishers
// and the REST server.
package types

import (
	"fmt"
	"time"

	"github.com/chrissnell/isomodel/pkg/isomodel"
)

// Mode selects the simulation method of a run.
type Mode string

const (
	ModeMonthly       Mode = "monthly"
	ModeHourly        Mode = "hourly"
	ModeHourlyByMonth Mode = "hourly-by-month"
)

// ParseMode validates a mode name. An empty name selects ModeMonthly.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeMonthly, nil
	case ModeMonthly, ModeHourly, ModeHourlyByMonth:
		return m, nil
	}
	return "", fmt.Errorf("unknown simulation mode %q (want monthly, hourly or hourly-by-month)", s)
}

// Run is one completed simulation.
type Run struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Duration  time.Duration      `json:"duration"`
	Mode      Mode               `json:"mode"`
	Building  string             `json:"building"`
	Defaults  string             `json:"defaults,omitempty"`
	Location  string             `json:"location,omitempty"`
	Results   []isomodel.EndUses `json:"results"`
	Total     float64            `json:"total"`
}

// PeriodLabel names the unit of Results for the run's mode.
func (r *Run) PeriodLabel() string {
	if r.Mode == ModeHourly {
		return "Hour"
	}
	return "Month"
}

// PeriodStart returns the start of period i (0-based) in a non-leap year
// beginning at the start of the run's year.
func (r *Run) PeriodStart(i int) time.Time {
	year := time.Date(r.CreatedAt.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if r.Mode == ModeHourly {
		return year.Add(time.Duration(i) * time.Hour)
	}
	return year.AddDate(0, i, 0)
}
