package isomodel

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chrissnell/isomodel/pkg/epw"
	"github.com/chrissnell/isomodel/pkg/solar"
	"github.com/chrissnell/isomodel/pkg/timeframe"
	"gonum.org/v1/gonum/mat"
)

// WeatherData is the monthly weather summary the simulations run on.
type WeatherData struct {
	MSolar *mat.Dense // 12 x 8 mean facade irradiance (W/m2)
	MHdbt  *mat.Dense // 12 x 24 mean dry bulb per clock hour (C)
	MHEgh  *mat.Dense // 12 x 24 mean global horizontal per clock hour (W/m2)
	MEgh   []float64  // mean global horizontal (W/m2)
	Mdbt   []float64  // mean dry bulb (C)
	Mwind  []float64  // mean wind speed (m/s)
}

// NewWeatherData summarises a weather year.
func NewWeatherData(data *epw.Data) *WeatherData {
	return weatherFromRadiation(solar.Calculate(timeframe.New(), data))
}

func weatherFromRadiation(r *solar.Radiation) *WeatherData {
	return &WeatherData{
		MSolar: mat.DenseCopyOf(r.MonthlySolarRadiation),
		MHdbt:  mat.DenseCopyOf(r.HourlyDryBulbTemp),
		MHEgh:  mat.DenseCopyOf(r.HourlyGlobalHorizontalRadiation),
		MEgh:   cloneSlice(r.MonthlyGlobalHorizontalRadiation),
		Mdbt:   cloneSlice(r.MonthlyDryBulbTemp),
		Mwind:  cloneSlice(r.MonthlyWindspeed),
	}
}

func emptyWeatherData() *WeatherData {
	return &WeatherData{
		MSolar: mat.NewDense(timeframe.Months, solar.NumSurfaces, nil),
		MHdbt:  mat.NewDense(timeframe.Months, timeframe.HoursPerDay, nil),
		MHEgh:  mat.NewDense(timeframe.Months, timeframe.HoursPerDay, nil),
		MEgh:   make([]float64, timeframe.Months),
		Mdbt:   make([]float64, timeframe.Months),
		Mwind:  make([]float64, timeframe.Months),
	}
}

func (w *WeatherData) clone() *WeatherData {
	if w == nil {
		return nil
	}
	return &WeatherData{
		MSolar: mat.DenseCopyOf(w.MSolar),
		MHdbt:  mat.DenseCopyOf(w.MHdbt),
		MHEgh:  mat.DenseCopyOf(w.MHEgh),
		MEgh:   cloneSlice(w.MEgh),
		Mdbt:   cloneSlice(w.Mdbt),
		Mwind:  cloneSlice(w.Mwind),
	}
}

// Section names of the ISO weather text format.
const (
	sectionMdbt  = "mdbt"
	sectionMwind = "mwind"
	sectionMEgh  = "mEgh"
	sectionHdbt  = "hdbt"
	sectionHEgh  = "hEgh"
	sectionSolar = "solar"
)

// WriteISOData writes w in the ISO weather text format: a section name on
// its own line followed by twelve rows of "month,values...".
func (w *WeatherData) WriteISOData(out io.Writer) error {
	bw := bufio.NewWriter(out)

	vector := func(name string, v []float64) {
		fmt.Fprintln(bw, name)
		for m, x := range v {
			fmt.Fprintf(bw, "%d,%s\n", m, formatFloat(x))
		}
	}
	matrix := func(name string, d *mat.Dense) {
		fmt.Fprintln(bw, name)
		rows, _ := d.Dims()
		for m := 0; m < rows; m++ {
			bw.WriteString(strconv.Itoa(m))
			for _, x := range d.RawRowView(m) {
				bw.WriteByte(',')
				bw.WriteString(formatFloat(x))
			}
			bw.WriteByte('\n')
		}
	}

	vector(sectionMdbt, w.Mdbt)
	vector(sectionMwind, w.Mwind)
	vector(sectionMEgh, w.MEgh)
	matrix(sectionHdbt, w.MHdbt)
	matrix(sectionHEgh, w.MHEgh)
	matrix(sectionSolar, w.MSolar)

	return bw.Flush()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// ParseISOData reads the format written by WriteISOData. Lines starting
// with '#' are ignored, as are rows beyond the twelfth in a section and
// sections with unknown names.
func ParseISOData(r io.Reader) (*WeatherData, error) {
	w := emptyWeatherData()

	scanner := bufio.NewScanner(r)
	section := ""
	row := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) == 1 {
			section = strings.TrimSpace(fields[0])
			row = 0
			continue
		}
		if row >= timeframe.Months {
			continue
		}

		values := make([]float64, 0, len(fields)-1)
		for _, f := range fields[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			values = append(values, v)
		}

		switch section {
		case sectionMdbt:
			w.Mdbt[row] = values[0]
		case sectionMwind:
			w.Mwind[row] = values[0]
		case sectionMEgh:
			w.MEgh[row] = values[0]
		case sectionHdbt:
			setRow(w.MHdbt, row, values)
		case sectionHEgh:
			setRow(w.MHEgh, row, values)
		case sectionSolar:
			setRow(w.MSolar, row, values)
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return w, nil
}

// setRow fills as much of row as values covers.
func setRow(d *mat.Dense, row int, values []float64) {
	_, cols := d.Dims()
	for c := 0; c < cols && c < len(values); c++ {
		d.Set(row, c, values[c])
	}
}
