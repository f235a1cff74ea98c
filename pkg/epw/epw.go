// Package epw reads EnergyPlus weather (EPW) files.
//
// Only the header location fields and the seven columns the building model
// consumes are kept. A file must hold a full non-leap year of hourly rows.
package epw

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chrissnell/isomodel/pkg/timeframe"
)

// Column identifies one of the retained hourly weather series.
type Column int

const (
	DBT  Column = iota // dry bulb temperature (C)
	DPT                // dew point temperature (C)
	RH                 // relative humidity (%)
	EGH                // global horizontal radiation (Wh/m2)
	EB                 // direct normal radiation (Wh/m2)
	ED                 // diffuse horizontal radiation (Wh/m2)
	WSPD               // wind speed (m/s)
	NumColumns
)

// fieldIndex maps each Column to its position in an EPW data row.
var fieldIndex = [NumColumns]int{6, 7, 8, 13, 14, 15, 21}

var columnNames = [NumColumns]string{"DBT", "DPT", "RH", "EGH", "EB", "ED", "WSPD"}

func (c Column) String() string {
	if c < 0 || c >= NumColumns {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return columnNames[c]
}

const headerLines = 8

// Data is one year of hourly weather for a single location.
type Data struct {
	Location  string
	StationID string
	Latitude  float64 // degrees north
	Longitude float64 // degrees east
	Timezone  float64 // hours from UTC

	columns [NumColumns][]float64
}

// Column returns the hourly series for c. The slice is shared with d.
func (d *Data) Column(c Column) []float64 {
	return d.columns[c]
}

// Load reads an EPW file from disk.
func Load(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open weather file: %w", err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse reads EPW content from r.
func Parse(r io.Reader) (*Data, error) {
	d := &Data{}
	for c := range d.columns {
		d.columns[c] = make([]float64, timeframe.HoursPerYear)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	row := 0
	for scanner.Scan() && row < timeframe.HoursPerYear {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case lineNo == 1:
			if err := d.parseHeader(line); err != nil {
				return nil, err
			}
		case lineNo <= headerLines:
			continue
		default:
			if err := d.parseRow(line, row); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			row++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if row != timeframe.HoursPerYear {
		return nil, fmt.Errorf("expected %d hourly rows, found %d", timeframe.HoursPerYear, row)
	}
	return d, nil
}

func (d *Data) parseHeader(line string) error {
	fields := strings.Split(line, ",")
	if len(fields) < 9 || !strings.EqualFold(strings.TrimSpace(fields[0]), "LOCATION") {
		return fmt.Errorf("malformed LOCATION header: %q", line)
	}

	d.Location = strings.TrimSpace(fields[1])
	d.StationID = strings.TrimSpace(fields[5])

	var err error
	if d.Latitude, err = parseField(fields[6]); err != nil {
		return fmt.Errorf("latitude: %w", err)
	}
	if d.Longitude, err = parseField(fields[7]); err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	if d.Timezone, err = parseField(fields[8]); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

func (d *Data) parseRow(line string, row int) error {
	fields := strings.Split(line, ",")
	if len(fields) <= fieldIndex[WSPD] {
		return fmt.Errorf("expected at least %d fields, found %d", fieldIndex[WSPD]+1, len(fields))
	}
	for c, idx := range fieldIndex {
		v, err := parseField(fields[idx])
		if err != nil {
			return fmt.Errorf("%s: %w", Column(c), err)
		}
		d.columns[c][row] = v
	}
	return nil
}

func parseField(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// BlockSize is the length of a flat weather block: latitude, longitude and
// timezone followed by every column in Column order.
const BlockSize = 3 + int(NumColumns)*timeframe.HoursPerYear

// FromBlock builds Data from a flat block laid out as described by
// BlockSize.
func FromBlock(values []float64) (*Data, error) {
	if len(values) != BlockSize {
		return nil, fmt.Errorf("weather block has %d values, expected %d", len(values), BlockSize)
	}

	d := &Data{
		Latitude:  values[0],
		Longitude: values[1],
		Timezone:  values[2],
	}
	offset := 3
	for c := range d.columns {
		col := make([]float64, timeframe.HoursPerYear)
		copy(col, values[offset:offset+timeframe.HoursPerYear])
		d.columns[c] = col
		offset += timeframe.HoursPerYear
	}
	return d, nil
}

// Block flattens d into the FromBlock layout.
func (d *Data) Block() []float64 {
	out := make([]float64, 0, BlockSize)
	out = append(out, d.Latitude, d.Longitude, d.Timezone)
	for c := range d.columns {
		out = append(out, d.columns[c]...)
	}
	return out
}
