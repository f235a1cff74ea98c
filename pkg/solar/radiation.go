// Package solar computes hourly solar position and the total irradiance
// falling on the eight vertical facades of a building, then reduces the
// weather year into the monthly summaries the building model consumes.
package solar

import (
	"math"

	"github.com/chrissnell/isomodel/pkg/epw"
	"github.com/chrissnell/isomodel/pkg/timeframe"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NumSurfaces is the number of vertical facades irradiance is calculated for.
const NumSurfaces = 8

const (
	surfaceTilt       = math.Pi / 2
	groundReflectance = 0.14
)

// SurfaceAzimuths are measured from south, positive toward west, in the
// facade order S, SE, E, NE, N, NW, W, SW.
var SurfaceAzimuths = [NumSurfaces]float64{0, -math.Pi / 4, -math.Pi / 2, -3 * math.Pi / 4, math.Pi, 3 * math.Pi / 4, math.Pi / 2, math.Pi / 4}

// SurfaceNames labels the facades in SurfaceAzimuths order.
var SurfaceNames = [NumSurfaces]string{"S", "SE", "E", "NE", "N", "NW", "W", "SW"}

// Radiation holds the results of a solar calculation for one weather year.
type Radiation struct {
	// Eglobe is the hourly total irradiance on each facade (8760 x 8, W/m2).
	Eglobe *mat.Dense

	MonthlyDryBulbTemp              []float64
	MonthlyDewPointTemp             []float64
	MonthlyRelativeHumidity         []float64
	MonthlyWindspeed                []float64
	MonthlyGlobalHorizontalRadiation []float64

	// MonthlySolarRadiation is the mean facade irradiance per month (12 x 8).
	MonthlySolarRadiation *mat.Dense

	// Mean value per clock hour for each month (12 x 24).
	HourlyDryBulbTemp              *mat.Dense
	HourlyDewPointTemp             *mat.Dense
	HourlyGlobalHorizontalRadiation *mat.Dense
}

// Calculate computes facade irradiance for every hour of data and the monthly averages.
func Calculate(frame *timeframe.Frame, data *epw.Data) *Radiation {
	r := &Radiation{
		Eglobe:                          mat.NewDense(timeframe.HoursPerYear, NumSurfaces, nil),
		MonthlyDryBulbTemp:              make([]float64, timeframe.Months),
		MonthlyDewPointTemp:             make([]float64, timeframe.Months),
		MonthlyRelativeHumidity:         make([]float64, timeframe.Months),
		MonthlyWindspeed:                make([]float64, timeframe.Months),
		MonthlyGlobalHorizontalRadiation: make([]float64, timeframe.Months),
		MonthlySolarRadiation:           mat.NewDense(timeframe.Months, NumSurfaces, nil),
		HourlyDryBulbTemp:               mat.NewDense(timeframe.Months, timeframe.HoursPerDay, nil),
		HourlyDewPointTemp:              mat.NewDense(timeframe.Months, timeframe.HoursPerDay, nil),
		HourlyGlobalHorizontalRadiation: mat.NewDense(timeframe.Months, timeframe.HoursPerDay, nil),
	}

	r.surfaceRadiation(frame, data)
	r.averages(frame, data)
	return r
}

func (r *Radiation) surfaceRadiation(frame *timeframe.Frame, data *epw.Data) {
	s := newSite(data.Latitude, data.Longitude, data.Timezone)
	eb := data.Column(epw.EB)
	ed := data.Column(epw.ED)

	row := make([]float64, NumSurfaces)
	for i := 0; i < timeframe.HoursPerYear; i++ {
		rev := revolutionAngle(frame.YTD[i])
		ast := s.apparentSolarTime(frame.Hour[i], equationOfTime(rev))
		dec := declination(rev)
		sha := hourAngle(ast)
		alt := s.altitude(dec, sha)
		az := s.azimuth(dec, sha, alt)

		ground := groundReflected(eb[i], ed[i], groundReflectance, alt, surfaceTilt)

		for k, surfAz := range SurfaceAzimuths {
			inc := angleOfIncidence(alt, math.Abs(az-surfAz), surfaceTilt)
			row[k] = directBeam(eb[i], inc) + diffuse(ed[i], diffuseFactor(inc), surfaceTilt) + ground
		}
		r.Eglobe.SetRow(i, row)
	}
}

func (r *Radiation) averages(frame *timeframe.Frame, data *epw.Data) {
	dbt := data.Column(epw.DBT)
	dpt := data.Column(epw.DPT)
	rh := data.Column(epw.RH)
	wspd := data.Column(epw.WSPD)
	egh := data.Column(epw.EGH)

	for m := 0; m < timeframe.Months; m++ {
		start, end := timeframe.MonthStartHour[m], timeframe.MonthStartHour[m+1]
		inv := 1.0 / math.Max(1, float64(end-start))

		r.MonthlyDryBulbTemp[m] = floats.Sum(dbt[start:end]) * inv
		r.MonthlyDewPointTemp[m] = floats.Sum(dpt[start:end]) * inv
		r.MonthlyRelativeHumidity[m] = floats.Sum(rh[start:end]) * inv
		r.MonthlyWindspeed[m] = floats.Sum(wspd[start:end]) * inv
		r.MonthlyGlobalHorizontalRadiation[m] = floats.Sum(egh[start:end]) * inv

		surfaces := make([]float64, NumSurfaces)
		for i := start; i < end; i++ {
			floats.Add(surfaces, r.Eglobe.RawRowView(i))
		}
		floats.Scale(inv, surfaces)
		r.MonthlySolarRadiation.SetRow(m, surfaces)

		hdbt := make([]float64, timeframe.HoursPerDay)
		hdpt := make([]float64, timeframe.HoursPerDay)
		hegh := make([]float64, timeframe.HoursPerDay)
		for i := start; i < end; i++ {
			h := frame.Hour[i]
			hdbt[h] += dbt[i]
			hdpt[h] += dpt[i]
			hegh[h] += egh[i]
		}
		days := 1.0 / float64(timeframe.MonthLength(m+1))
		floats.Scale(days, hdbt)
		floats.Scale(days, hdpt)
		floats.Scale(days, hegh)
		r.HourlyDryBulbTemp.SetRow(m, hdbt)
		r.HourlyDewPointTemp.SetRow(m, hdpt)
		r.HourlyGlobalHorizontalRadiation.SetRow(m, hegh)
	}
}
