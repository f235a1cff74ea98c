// Package timeframe indexes the 8760 hours of a nominal, non-leap
// simulation year.
package timeframe

import "github.com/soniakeys/meeus/v3/julian"

const (
	// HoursPerYear is the length of the simulation year.
	HoursPerYear = 8760
	HoursPerDay  = 24
	DaysPerYear  = 365
	DaysPerWeek  = 7
	Months       = 12
)

// MonthStartHour holds the first hour of each month, with the year end as
// the thirteenth element. Hours [MonthStartHour[m], MonthStartHour[m+1])
// belong to month m (0-based).
var MonthStartHour = [Months + 1]int{0, 744, 1416, 2160, 2880, 3624, 4344, 5088, 5832, 6552, 7296, 8016, 8760}

// Frame holds per-hour calendar lookups. All slices have HoursPerYear
// entries.
type Frame struct {
	Hour       []int // 0..23
	YTD        []int // day of year, 0..364
	DayOfWeek  []int // 0..6, day 0 is the first day of the year
	Month      []int // 1..12
	DayOfMonth []int // 1..31
}

// New builds the calendar lookups for the simulation year.
func New() *Frame {
	f := &Frame{
		Hour:       make([]int, HoursPerYear),
		YTD:        make([]int, HoursPerYear),
		DayOfWeek:  make([]int, HoursPerYear),
		Month:      make([]int, HoursPerYear),
		DayOfMonth: make([]int, HoursPerYear),
	}

	for i := 0; i < HoursPerYear; i++ {
		day := i / HoursPerDay
		m, d := julian.DayOfYearToCalendar(day+1, false)

		f.Hour[i] = i % HoursPerDay
		f.YTD[i] = day
		f.DayOfWeek[i] = day % DaysPerWeek
		f.Month[i] = m
		f.DayOfMonth[i] = d
	}
	return f
}

// MonthLength returns the number of days in month m (1..12) of a non-leap
// year, or 0 for an out-of-range month.
func MonthLength(m int) int {
	switch m {
	case 2:
		return 28
	case 4, 6, 9, 11:
		return 30
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	}
	return 0
}
