// Package epwtest generates a synthetic but physically shaped weather year
// for tests. Temperatures follow seasonal and diurnal cycles and radiation
// follows a simple clear-sky sun path for a mid-latitude site, so every
// month has daylight and night hours.
package epwtest

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrissnell/isomodel/pkg/timeframe"
)

const (
	Latitude  = 41.98
	Longitude = -87.92
	Timezone  = -6.0
	Location  = "Synthetic Ohare"
	StationID = "725300"
)

// Hour is one synthetic weather observation.
type Hour struct {
	DBT, DPT, RH, EGH, EB, ED, WSPD float64
}

// At returns the observation for hour i (0..8759).
func At(i int) Hour {
	day := float64(i / timeframe.HoursPerDay)
	h := float64(i % timeframe.HoursPerDay)

	seasonal := math.Cos(2 * math.Pi * (day - 15) / 365)
	diurnal := math.Sin(2 * math.Pi * (h - 9) / 24)

	w := Hour{
		DBT:  10 - 14*seasonal + 5*diurnal,
		RH:   65 + 10*math.Cos(2*math.Pi*h/24),
		WSPD: 4 + 1.5*math.Cos(2*math.Pi*day/365) + math.Sin(2*math.Pi*h/24),
	}
	w.DPT = w.DBT - 6

	lat := Latitude * math.Pi / 180
	dec := 23.45 * math.Pi / 180 * math.Sin(2*math.Pi*(284+day+1)/365)
	omega := 15 * (h + 0.5 - 12) * math.Pi / 180
	sinAlt := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(omega)
	if sinAlt > 0 {
		w.EB = 850 * math.Exp(-0.15/sinAlt)
		w.ED = 120 * math.Sqrt(sinAlt)
		w.EGH = w.EB*sinAlt + w.ED
	}
	return w
}

// Block returns the year as a flat weather block: latitude, longitude,
// timezone, then DBT, DPT, RH, EGH, EB, ED and WSPD, 8760 values each.
func Block() []float64 {
	n := timeframe.HoursPerYear
	out := make([]float64, 3+7*n)
	out[0], out[1], out[2] = Latitude, Longitude, Timezone
	for i := 0; i < n; i++ {
		w := At(i)
		for c, v := range []float64{w.DBT, w.DPT, w.RH, w.EGH, w.EB, w.ED, w.WSPD} {
			out[3+c*n+i] = v
		}
	}
	return out
}

// Text renders the year as EPW file content.
func Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "LOCATION,%s,IL,USA,TMY3,%s,%.2f,%.2f,%.1f,201.0\n", Location, StationID, Latitude, Longitude, Timezone)
	b.WriteString("DESIGN CONDITIONS,0\n")
	b.WriteString("TYPICAL/EXTREME PERIODS,0\n")
	b.WriteString("GROUND TEMPERATURES,0\n")
	b.WriteString("HOLIDAYS/DAYLIGHT SAVINGS,No,0,0,0\n")
	b.WriteString("COMMENTS 1,synthetic weather for tests\n")
	b.WriteString("COMMENTS 2,\n")
	b.WriteString("DATA PERIODS,1,1,Data,Sunday, 1/ 1,12/31\n")

	frame := timeframe.New()
	for i := 0; i < timeframe.HoursPerYear; i++ {
		w := At(i)
		fmt.Fprintf(&b, "1999,%d,%d,%d,60,A7A7A7A7*0?9?9?9?9?9?9?9A7A7A7A7A7A7*0*0*0*0*0*0*0*0,"+
			"%.3f,%.3f,%.3f,99000,0,0,300,%.3f,%.3f,%.3f,0,0,0,0,270,%.3f,10,10,16000,77777,9,999999999,0,0.1,0,88,0.2,0,0\n",
			frame.Month[i], frame.DayOfMonth[i], frame.Hour[i]+1,
			w.DBT, w.DPT, w.RH, w.EGH, w.EB, w.ED, w.WSPD)
	}
	return b.String()
}

// Write stores Text at path and fails the test on error.
func Write(tb testing.TB, path string) string {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("could not create weather dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(Text()), 0o644); err != nil {
		tb.Fatalf("could not write weather file: %v", err)
	}
	return path
}
