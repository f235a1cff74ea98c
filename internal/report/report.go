// Package report renders simulation results as text.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/chrissnell/isomodel/pkg/isomodel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Comparison output formats.
const (
	FormatMarkdown = "md"
	FormatCSV      = "csv"
)

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteCSV writes one row per period: the 1-based period index under label
// ("Month" or "Hour") followed by the 13 end uses.
func WriteCSV(w io.Writer, label string, results []isomodel.EndUses) error {
	cw := csv.NewWriter(w)

	header := []string{label}
	for _, e := range isomodel.AllEndUses() {
		header = append(header, e.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, 1+int(isomodel.NumEndUses))
	for i := range results {
		row[0] = strconv.Itoa(i + 1)
		for j, v := range results[i] {
			row[j+1] = formatValue(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteScript prints one end use per period, one value per line, followed by
// the total of every end use over every period.
func WriteScript(w io.Writer, results []isomodel.EndUses, use isomodel.EndUse) error {
	for i := range results {
		if _, err := fmt.Fprintln(w, results[i].Get(use)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, isomodel.TotalEnergyUse(results))
	return err
}

// Summary compares the monthly and hourly results of one end use.
type Summary struct {
	EndUse        isomodel.EndUse
	MonthlyTotal  float64
	HourlyTotal   float64
	MeanAbsDiff   float64
	MaxAbsDiff    float64
	MonthlyStdDev float64
}

// Summarize compares two 12-period result sets end use by end use.
func Summarize(monthly, hourly []isomodel.EndUses) ([]Summary, error) {
	if len(monthly) != len(hourly) {
		return nil, fmt.Errorf("cannot compare %d monthly periods with %d hourly periods", len(monthly), len(hourly))
	}

	out := make([]Summary, 0, isomodel.NumEndUses)
	m := make([]float64, len(monthly))
	h := make([]float64, len(hourly))
	diff := make([]float64, len(monthly))
	for _, e := range isomodel.AllEndUses() {
		for i := range monthly {
			m[i] = monthly[i].Get(e)
			h[i] = hourly[i].Get(e)
			diff[i] = math.Abs(m[i] - h[i])
		}
		s := Summary{
			EndUse:       e,
			MonthlyTotal: floats.Sum(m),
			HourlyTotal:  floats.Sum(h),
		}
		if len(diff) > 0 {
			s.MeanAbsDiff = stat.Mean(diff, nil)
			s.MaxAbsDiff = floats.Max(diff)
		}
		if len(m) > 1 {
			s.MonthlyStdDev = stat.StdDev(m, nil)
		}
		out = append(out, s)
	}
	return out, nil
}

// WriteComparison writes monthly and hourly-by-month results side by side,
// one row per end use and month, in format FormatMarkdown or FormatCSV.
func WriteComparison(w io.Writer, format string, monthly, hourly []isomodel.EndUses) error {
	if len(monthly) != len(hourly) {
		return fmt.Errorf("cannot compare %d monthly periods with %d hourly periods", len(monthly), len(hourly))
	}

	switch format {
	case FormatCSV:
		return writeComparisonCSV(w, monthly, hourly)
	case FormatMarkdown:
		return writeComparisonMarkdown(w, monthly, hourly)
	}
	return fmt.Errorf("unknown comparison format %q (want %s or %s)", format, FormatMarkdown, FormatCSV)
}

func writeComparisonCSV(w io.Writer, monthly, hourly []isomodel.EndUses) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Month", "EndUse", "Monthly", "Hourly", "Difference"}); err != nil {
		return err
	}
	for _, e := range isomodel.AllEndUses() {
		for i := range monthly {
			m, h := monthly[i].Get(e), hourly[i].Get(e)
			rec := []string{strconv.Itoa(i + 1), e.String(), formatValue(m), formatValue(h), formatValue(m - h)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeComparisonMarkdown(w io.Writer, monthly, hourly []isomodel.EndUses) error {
	summaries, err := Summarize(monthly, hourly)
	if err != nil {
		return err
	}

	for _, s := range summaries {
		fmt.Fprintf(w, "## %s\n\n", s.EndUse)
		fmt.Fprintln(w, "| Month | Monthly | Hourly | Difference |")
		fmt.Fprintln(w, "|---:|---:|---:|---:|")
		for i := range monthly {
			m, h := monthly[i].Get(s.EndUse), hourly[i].Get(s.EndUse)
			fmt.Fprintf(w, "| %d | %s | %s | %s |\n", i+1, formatValue(m), formatValue(h), formatValue(m-h))
		}
		fmt.Fprintf(w, "| **Total** | %s | %s | %s |\n\n",
			formatValue(s.MonthlyTotal), formatValue(s.HourlyTotal), formatValue(s.MonthlyTotal-s.HourlyTotal))
		if _, err := fmt.Fprintf(w, "Mean absolute difference %s, max %s.\n\n",
			formatValue(s.MeanAbsDiff), formatValue(s.MaxAbsDiff)); err != nil {
			return err
		}
	}
	return nil
}
