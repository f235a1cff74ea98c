package isomodel

import (
	"fmt"
	"math"

	"github.com/chrissnell/isomodel/pkg/timeframe"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	hoursInYear = 8760.0
	hoursInWeek = 168.0
	daysInYear  = 365.0

	// Occupied hours are counted from this clock hour when splitting the
	// hourly weather profiles into day and night.
	weekdayStartHour = 7

	kWh2MJ = 3.6

	// Smallest positive normal float64, added to denominators that may be zero.
	dblMin = 2.2250738585072014e-308
)

var (
	hoursInMonth       = []float64{744, 672, 744, 720, 744, 720, 744, 744, 720, 744, 720, 744}
	megasecondsInMonth = []float64{2.6784, 2.4192, 2.6784, 2.592, 2.6784, 2.592, 2.6784, 2.6784, 2.592, 2.6784, 2.592, 2.6784}
	daysInMonth        = []float64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
)

// Shading device reduction factors by device type.
var shadingDeviceFactors = [3]float64{0.5, 0.35, 1.0}

// Sky radiation form factors: walls see half the sky, the roof all of it.
var envelopeFormFactors = [NumSurfaces]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 1}

// MonthlyModel is the ISO 13790 quasi-steady-state monthly method.
type MonthlyModel struct {
	components

	Weather *WeatherData

	logger *zap.SugaredLogger
}

// Simulate returns the end uses of each month of the year.
func (m *MonthlyModel) Simulate() ([]EndUses, error) {
	if err := m.check(); err != nil {
		return nil, err
	}

	r := &monthlyRun{MonthlyModel: m}
	r.scheduleAndOccupancy()
	r.solarRadiationBreakdown()
	r.lightingEnergyUse()
	r.envelopeCalculation()
	r.windowSolarGain()
	r.solarHeatGain()
	r.heatGainsAndLosses()
	r.internalHeatGain()
	r.unoccupiedHeatGain()
	r.interiorTemp()
	r.ventilationCalc()
	r.heatingAndCooling()
	r.hvac()
	r.pump()
	r.heatedWater()
	results := r.outputGeneration()

	m.logger.Debugw("monthly simulation complete",
		"heating_need_mj", r.qNeedHtYr,
		"cooling_need_mj", r.qNeedClYr,
		"tau_h", r.tau,
		"total_kwh_m2", TotalEnergyUse(results))

	return results, nil
}

func (m *MonthlyModel) check() error {
	if m.Weather == nil {
		return fmt.Errorf("%w: no weather data", ErrInvalidModel)
	}
	return m.components.validate()
}

// monthlyRun carries the intermediate results of one Simulate call.
type monthlyRun struct {
	*MonthlyModel

	hoursOcc, hoursUnocc              float64
	fracWkDay, fracWkNt, fracWkeTot   float64
	msWkDay, msWkNt, msWkeDay, msWkeNt []float64
	clockOcc, clockUnocc              []float64

	tdbtDay, tdbtNt                          []float64
	fracPghWkNt, fracPghWkeDay, fracPghWkeNt []float64
	hrsSunDown                               []float64

	qIllumOcc, qIllumUnocc, qIllumTotYr float64
	qIllumTot, qIllumExt                []float64

	hTr                                float64
	winASol, wallASol, wallRSc, winHr []float64
	eSol                               []float64

	phiIntAvg, phiPlugAvg, phiIllumAvg float64
	phiIntWkNt, phiIntWkeDay, phiIntWkeNt float64
	phiITot                            float64
	pWkNt, pWkeDay, pWkeNt             []float64

	tau          float64
	thAvg, tcAvg []float64
	hveHt, hveCl []float64

	qNeedHt, qNeedCl     []float64
	qNeedHtYr, qNeedClYr float64
	qFan                 []float64

	qElecHt, qGasHt, qClElec, qClGas []float64
	qPump                            []float64
	qDhwElec, qDhwGas                []float64
}

// scheduleAndOccupancy splits each month into weekday occupied, weekday
// night, weekend day and weekend night megaseconds.
func (r *monthlyRun) scheduleAndOccupancy() {
	pop := r.Population

	r.hoursOcc = pop.HoursEnd - pop.HoursStart
	if r.hoursOcc < 0 {
		r.hoursOcc += 24
	}
	days := pop.DaysEnd - pop.DaysStart + 1
	if days < 0 {
		days += 7
	}

	occWeek := r.hoursOcc * days
	r.fracWkDay = occWeek / hoursInWeek
	r.hoursUnocc = 24 - r.hoursOcc
	unoccWeek := (days - 1) * r.hoursUnocc
	r.fracWkNt = unoccWeek / hoursInWeek

	weekend := hoursInWeek - occWeek - unoccWeek
	r.fracWkeTot = weekend / hoursInWeek
	weekendOcc := (7 - days) * r.hoursOcc
	fracWkeDay := weekendOcc / hoursInWeek
	fracWkeNt := (weekend - weekendOcc) / hoursInWeek

	r.msWkDay = scale(r.fracWkDay, megasecondsInMonth)
	r.msWkNt = scale(r.fracWkNt, megasecondsInMonth)
	r.msWkeDay = scale(fracWkeDay, megasecondsInMonth)
	r.msWkeNt = scale(fracWkeNt, megasecondsInMonth)

	r.clockOcc = make([]float64, timeframe.HoursPerDay)
	r.clockUnocc = make([]float64, timeframe.HoursPerDay)
	for h := range r.clockOcc {
		d := float64(h - weekdayStartHour)
		if d >= 0 && d < r.hoursOcc {
			r.clockOcc[h] = 1
		} else {
			r.clockUnocc[h] = 1
		}
	}
}

// solarRadiationBreakdown derives day and night temperatures, the share of
// solar energy falling in each unoccupied interval, and the hours the sun
// is down each month.
func (r *monthlyRun) solarRadiationBreakdown() {
	w := r.Weather
	occHours := floats.Sum(r.clockOcc)
	unoccHours := floats.Sum(r.clockUnocc)

	r.tdbtDay = make([]float64, timeframe.Months)
	r.tdbtNt = make([]float64, timeframe.Months)
	eghDay := make([]float64, timeframe.Months)
	eghNt := make([]float64, timeframe.Months)
	r.fracPghWkNt = make([]float64, timeframe.Months)
	r.fracPghWkeDay = make([]float64, timeframe.Months)
	r.fracPghWkeNt = make([]float64, timeframe.Months)
	r.hrsSunDown = make([]float64, timeframe.Months)

	for m := 0; m < timeframe.Months; m++ {
		dbt := w.MHdbt.RawRowView(m)
		egh := w.MHEgh.RawRowView(m)

		r.tdbtDay[m] = safeDiv(floats.Dot(dbt, r.clockOcc), occHours)
		r.tdbtNt[m] = safeDiv(floats.Dot(dbt, r.clockUnocc), unoccHours)
		eghDay[m] = safeDiv(floats.Dot(egh, r.clockOcc), occHours)
		eghNt[m] = safeDiv(floats.Dot(egh, r.clockUnocc), unoccHours)

		wkDay := eghDay[m] * r.msWkDay[m]
		wkNt := eghNt[m] * r.msWkNt[m]
		wkeDay := eghDay[m] * r.msWkeDay[m]
		wkeNt := eghNt[m] * r.msWkeNt[m]
		tot := wkDay + wkNt + wkeDay + wkeNt
		r.fracPghWkNt[m] = safeDiv(wkNt, tot)
		r.fracPghWkeDay[m] = safeDiv(wkeDay, tot)
		r.fracPghWkeNt[m] = safeDiv(wkeNt, tot)

		up, down := 0, 0
		for h := 0; h < timeframe.HoursPerDay; h++ {
			if egh[h] != 0 {
				up = h
				break
			}
		}
		for h := timeframe.HoursPerDay - 1; h >= 0; h-- {
			if egh[h] != 0 {
				down = h
				break
			}
		}
		fracUp := float64(down-up+1) / 24.0
		r.hrsSunDown[m] = (1 - fracUp) * hoursInMonth[m]
	}
}

// lightingEnergyUse follows prEN 15193 daytime and nighttime operating hours.
func (r *monthlyRun) lightingEnergyUse() {
	lt, pop, b := r.Lighting, r.Population, r.Building

	dayHours := math.Min(lt.NDayEnd, pop.HoursEnd) - math.Max(pop.HoursStart, lt.NDayStart)
	if dayHours < 0 {
		dayHours += 24
	}
	days := pop.DaysEnd - pop.DaysStart + 1
	if days < 0 {
		days += 7
	}
	tD := dayHours * days * lt.NWeeks
	nightHours := math.Max(lt.NDayStart-pop.HoursStart, 0) + math.Max(pop.HoursEnd-lt.NDayEnd, 0)
	tN := nightHours * days * lt.NWeeks
	tUnocc := hoursInYear - tD - tN

	area := r.Structure.FloorArea
	r.qIllumOcc = area * lt.PowerDensityOccupied * b.ConstantIllumination * b.LightingOccupancySensor * (tD*lt.DimmingFraction + tN) / 1000
	r.qIllumUnocc = area * lt.PowerDensityUnoccupied * tUnocc / 1000
	r.qIllumTotYr = r.qIllumOcc + r.qIllumUnocc

	r.qIllumTot = make([]float64, timeframe.Months)
	for m := range r.qIllumTot {
		r.qIllumTot[m] = daysInMonth[m] / daysInYear * r.qIllumTotYr
	}
	r.qIllumExt = scale(lt.ExteriorEnergy/1000, r.hrsSunDown)
}

// envelopeCalculation sums the direct transmission coefficient H_tr (W/K).
func (r *monthlyRun) envelopeCalculation() {
	s := r.Structure
	r.hTr = floats.Dot(s.WallArea, s.WallUniform) + floats.Dot(s.WindowArea, s.WindowUniform)
}

// windowSolarGain computes effective solar collecting areas per ISO 13790 11.3.
func (r *monthlyRun) windowSolarGain() {
	s := r.Structure

	r.winASol = make([]float64, NumSurfaces)
	r.wallRSc = make([]float64, NumSurfaces)
	r.wallASol = make([]float64, NumSurfaces)
	for i := 0; i < NumSurfaces; i++ {
		sdf := shadingDeviceFactors[shadingDeviceIndex(s.WindowShadingDevice[i])]
		r.winASol[i] = sdf * s.WindowNormalIncidenceSolarEnergyTransmittance[i] * s.WinFW * (1 - s.WinFF) * s.WindowArea[i]
		r.wallRSc[i] = s.RScExt
		r.wallASol[i] = s.WallSolarAbsorption[i] * s.RScExt * s.WallUniform[i] * s.WallArea[i]
	}
	r.winHr = scale(5, s.WallThermalEmissivity)
}

// shadingDeviceIndex maps a 1-based device type onto shadingDeviceFactors.
func shadingDeviceIndex(sdf float64) int {
	i := int(sdf) - 1
	if i < 0 {
		return 0
	}
	if i >= len(shadingDeviceFactors) {
		return len(shadingDeviceFactors) - 1
	}
	return i
}

// solarHeatGain computes the monthly solar heat gain E_sol (MJ) per ISO
// 13790 11.3.2, net of thermal radiation to the sky.
func (r *monthlyRun) solarHeatGain() {
	s := r.Structure
	w := r.Weather

	iSol := mat.NewDense(timeframe.Months, NumSurfaces, nil)
	for m := 0; m < timeframe.Months; m++ {
		for c := 0; c < NumSurfaces-1; c++ {
			iSol.Set(m, c, w.MSolar.At(m, c))
		}
		iSol.Set(m, Roof, w.MEgh[m])
	}

	const thetaER = 11.0
	wallPhiR := make([]float64, NumSurfaces)
	for j := range wallPhiR {
		wallPhiR[j] = r.wallRSc[j] * s.WallUniform[j] * s.WallArea[j] * r.winHr[j] * thetaER
	}

	r.eSol = make([]float64, timeframe.Months)
	for m := 0; m < timeframe.Months; m++ {
		var win, wall float64
		for j := 0; j < NumSurfaces; j++ {
			irr := iSol.At(m, j)
			win += s.WindowShadingCorrectionFactor[j] * r.winASol[j] * irr
			wall += r.wallASol[j]*irr - wallPhiR[j]*envelopeFormFactors[j]
		}
		r.eSol[m] = (win + wall) * megasecondsInMonth[m]
	}
}

// heatGainsAndLosses computes people, plug and lighting gains (W/m2).
func (r *monthlyRun) heatGainsAndLosses() {
	pop, b := r.Population, r.Building
	area := r.Structure.FloorArea
	f := r.fracWkDay

	intOcc := pop.HeatGainPerPerson / pop.DensityOccupied
	intUnocc := pop.HeatGainPerPerson / pop.DensityUnoccupied
	r.phiIntAvg = f*intOcc + (1-f)*intUnocc

	plugOcc := b.ElectricApplianceHeatGainOccupied + b.GasApplianceHeatGainOccupied
	plugUnocc := b.ElectricApplianceHeatGainUnoccupied + b.GasApplianceHeatGainUnoccupied
	r.phiPlugAvg = plugOcc*f + plugUnocc*(1-f)

	illumUnocc := safeDiv(r.qIllumUnocc/area/hoursInYear, 1-f) * 1000
	r.phiIllumAvg = r.qIllumTotYr / area / hoursInYear * 1000

	// Weekday nights and the whole weekend run at unoccupied levels.
	unocc := intUnocc + plugUnocc + illumUnocc
	r.phiIntWkNt = unocc
	r.phiIntWkeDay = unocc
	r.phiIntWkeNt = unocc
}

// internalHeatGain is the average total internal gain in W.
func (r *monthlyRun) internalHeatGain() {
	r.phiITot = (r.phiIntAvg + r.phiPlugAvg + r.phiIllumAvg) * r.Structure.FloorArea
}

// unoccupiedHeatGain is the mean gain (W) during each unoccupied interval,
// combining internal gains with that interval's share of solar gain.
func (r *monthlyRun) unoccupiedHeatGain() {
	area := r.Structure.FloorArea
	interval := func(phi float64, ms, fracSol []float64) []float64 {
		out := make([]float64, timeframe.Months)
		for m := range out {
			if ms[m] == 0 {
				out[m] = math.MaxFloat64
				continue
			}
			out[m] = (ms[m]*phi*area + r.eSol[m]*fracSol[m]) / ms[m]
		}
		return out
	}

	r.pWkNt = interval(r.phiIntWkNt, r.msWkNt, r.fracPghWkNt)
	r.pWkeDay = interval(r.phiIntWkeDay, r.msWkeDay, r.fracPghWkeDay)
	r.pWkeNt = interval(r.phiIntWkeNt, r.msWkeNt, r.fracPghWkeNt)
}

// interiorTemp finds the effective monthly heating and cooling setpoints,
// accounting for exponential drift during setback periods.
func (r *monthlyRun) interiorTemp() {
	var tAdj float64
	switch int(r.Building.BuildingEnergyManagement) {
	case 2:
		tAdj = 0.5
	case 3:
		tAdj = 1
	}

	htCtrl := r.Heating.TemperatureSetPointOccupied - tAdj
	clCtrl := r.Cooling.TemperatureSetPointOccupied + tAdj
	htUnocc := r.Heating.TemperatureSetPointUnoccupied
	clUnocc := r.Cooling.TemperatureSetPointUnoccupied

	s := r.Structure
	cm := s.InteriorHeatCapacity*s.FloorArea + s.WallHeatCapacity*floats.Sum(s.WallArea)
	hTot := r.hTr + r.Ventilation.HVe
	r.tau = cm / hTot / 3600

	// Weekday night, then the weekend as day, night, day, night.
	ti := [5]float64{r.hoursUnocc, r.hoursOcc, r.hoursUnocc, r.hoursOcc, r.hoursUnocc}

	dT := mat.NewDense(timeframe.Months, 5, nil)
	te := mat.NewDense(timeframe.Months, 5, nil)
	for m := 0; m < timeframe.Months; m++ {
		dT.SetRow(m, []float64{r.pWkNt[m], r.pWkeDay[m], r.pWkeNt[m], r.pWkeDay[m], r.pWkeNt[m]})
		te.SetRow(m, []float64{r.tdbtNt[m], r.tdbtDay[m], r.tdbtNt[m], r.tdbtDay[m], r.tdbtNt[m]})
	}
	dT.Scale(1/hTot, dT)

	thWkDay, thWkNt, thWkeAvg := fill(htCtrl), fill(htCtrl), fill(htCtrl)
	if r.Heating.TControlFlag == 1 {
		thWkeAvg, thWkNt = r.setbackDecay(htCtrl, htCtrl, htUnocc, ti, dT, te)
	}

	tcWkDay, tcWkNt, tcWkeAvg := fill(clCtrl), fill(clCtrl), fill(clCtrl)
	if r.Cooling.TControlFlag == 1 {
		tcWkeAvg, tcWkNt = r.setbackDecay(clCtrl, math.Min(htCtrl, clUnocc), clUnocc, ti, dT, te)
	}

	r.thAvg = make([]float64, timeframe.Months)
	r.tcAvg = make([]float64, timeframe.Months)
	for m := 0; m < timeframe.Months; m++ {
		th := thWkDay[m]*r.fracWkDay + thWkNt[m]*r.fracWkNt + thWkeAvg[m]*r.fracWkeTot
		tc := tcWkDay[m]*r.fracWkDay + tcWkNt[m]*r.fracWkNt + tcWkeAvg[m]*r.fracWkeTot
		r.thAvg[m] = math.Min(th, htCtrl)
		r.tcAvg[m] = math.Min(tc, clCtrl)
	}
}

// setbackDecay integrates the interior temperature across the weekday night
// and weekend intervals. The temperature drifts exponentially from ctrl
// toward the free-running temperature and never falls below floor. It
// returns the mean over all intervals and the mean over the second one.
func (r *monthlyRun) setbackDecay(ctrl, firstStart, floor float64, ti [5]float64, dT, te *mat.Dense) (avg, second []float64) {
	avg = make([]float64, timeframe.Months)
	second = make([]float64, timeframe.Months)

	for m := 0; m < timeframe.Months; m++ {
		var end [4]float64
		t := ctrl
		for i := range end {
			free := te.At(m, i) + dT.At(m, i)
			t = (t-free)*math.Exp(-ti[i]/r.tau) + free
			end[i] = t
		}

		var means [5]float64
		for i := range means {
			start := firstStart
			if i > 0 {
				start = math.Max(end[i-1], floor)
			}
			free := te.At(m, i) + dT.At(m, i)
			mean := start
			if ti[i] > 0 {
				mean = r.tau/ti[i]*(start-free)*(1-math.Exp(-ti[i]/r.tau)) + free
			}
			means[i] = math.Max(mean, floor)
		}

		avg[m] = floats.Sum(means[:]) / float64(len(means))
		second[m] = means[1]
	}
	return avg, second
}

// ventilationCalc computes ventilation heat transfer coefficients (W/K/m2)
// per EN 15242 for the heating and cooling setpoints.
func (r *monthlyRun) ventilationCalc() {
	v, s := r.Ventilation, r.Structure
	w := r.Weather

	qvSupp := v.SupplyRate / s.FloorArea / 3.6
	qvExt := -(qvSupp - v.SupplyDifference/s.FloorArea/3.6)
	qvDiff := qvSupp + qvExt

	q4pa := s.InfiltrationRate
	hStack := v.ZoneFrac * math.Max(0.1, s.BuildingHeight)

	var opFrac float64
	switch int(v.VentRateFlag) {
	case 0:
		opFrac = 1
	case 1:
		opFrac = r.fracWkDay
	default:
		opFrac = r.fracWkDay + (1-r.fracWkDay)*r.Population.DensityOccupied/r.Population.DensityUnoccupied
	}

	mech := 0.0
	if v.Type != VentNatural {
		mech = opFrac * qvSupp * (1 - v.ExhaustAirRecirculated) * (1 - v.HeatRecoveryEfficiency)
	}

	const swCoeff = 0.14
	hve := func(tInt []float64) []float64 {
		out := make([]float64, timeframe.Months)
		for m := range out {
			stack := math.Max(v.StackCoeff*q4pa*math.Pow(math.Abs(w.Mdbt[m]-tInt[m])*hStack, v.StackExp), 0.001)
			wind := v.WindCoeff * q4pa * math.Pow(w.Mwind[m]*w.Mwind[m]*v.DCp*r.Location.Terrain, v.WindExp)
			sw := math.Max(stack, wind) + safeDiv(stack*wind*swCoeff, q4pa)
			inf := sw + math.Max(0, -qvDiff)
			out[m] = (inf + mech) * r.PhysicalQuantities.RhoCpAir * 1e6 / 3600
		}
		return out
	}

	r.hveHt = hve(r.thAvg)
	r.hveCl = hve(r.tcAvg)
}

// gainUtilization is the ISO 13790 utilisation factor for a gain/loss ratio
// gamma and numerical parameter a.
func gainUtilization(gamma, a float64) float64 {
	if gamma == 1 {
		return a / (a + 1)
	}
	return (1 - math.Pow(gamma, a)) / (1 - math.Pow(gamma, a+1))
}

// heatingAndCooling computes the monthly heating and cooling needs (MJ) and
// fan energy (kWh/m2).
func (r *monthlyRun) heatingAndCooling() {
	s, w := r.Structure, r.Weather
	rhoCp := r.PhysicalQuantities.RhoCpAir

	aH := r.Heating.AH0 + r.tau/r.Heating.TauH0
	tSupHt := r.Heating.TemperatureSetPointOccupied + r.Heating.DTSuppHt
	tSupCl := r.Cooling.TemperatureSetPointOccupied - r.Cooling.DTSuppCl

	r.qNeedHt = make([]float64, timeframe.Months)
	r.qNeedCl = make([]float64, timeframe.Months)
	r.qFan = make([]float64, timeframe.Months)

	for m := 0; m < timeframe.Months; m++ {
		ms := megasecondsInMonth[m]
		gain := ms*r.phiITot + r.eSol[m]

		dtHt := r.thAvg[m] - w.Mdbt[m]
		lossHt := dtHt*ms*r.hTr + r.hveHt[m]*s.FloorArea*dtHt*ms
		gammaHt := gain / (lossHt + dblMin)
		etaHt := 1 / (gammaHt + dblMin)
		if gammaHt > 0 {
			etaHt = gainUtilization(gammaHt, aH)
		}
		r.qNeedHt[m] = lossHt - etaHt*gain

		dtCl := r.tcAvg[m] - w.Mdbt[m]
		lossCl := dtCl*r.hTr*ms + r.hveCl[m]*s.FloorArea*dtCl*ms
		gammaCl := lossCl / (gain + dblMin)
		etaCl := 1.0
		if gammaCl > 0 {
			etaCl = gainUtilization(gammaCl, aH)
		}
		r.qNeedCl[m] = gain - etaCl*lossCl

		airHt := r.qNeedHt[m] / ((tSupHt-r.thAvg[m])*rhoCp + dblMin)
		airCl := r.qNeedCl[m] / ((r.tcAvg[m]-tSupCl)*rhoCp + dblMin)
		minAir := ms * r.Ventilation.SupplyRate * r.fracWkDay * 1e6 / 1000
		air := math.Max(airHt+airCl, minAir)
		fan := air * r.Ventilation.FanPower * r.Ventilation.FanControlFactor / 1000
		r.qFan[m] = fan / s.FloorArea / 3.6
	}

	r.qNeedHtYr = floats.Sum(r.qNeedHt)
	r.qNeedClYr = floats.Sum(r.qNeedCl)
}

// hvac applies distribution losses, system efficiencies and district
// heating and cooling to the needs (MJ).
func (r *monthlyRun) hvac() {
	h, c := r.Heating, r.Cooling

	ieer := c.COP * c.PartialLoadValue
	fDemHt := math.Max(safeDiv(r.qNeedHtYr, r.qNeedClYr+r.qNeedHtYr), 0.1)
	fDemCl := math.Max(1-fDemHt, 0.1)
	etaDistHt := 1 / (1 + h.HvacLossFactor + h.HotcoldWasteFactor/fDemHt)
	etaDistCl := 1 / (1 + c.HvacLossFactor + h.HotcoldWasteFactor/fDemCl)

	r.qElecHt = make([]float64, timeframe.Months)
	r.qGasHt = make([]float64, timeframe.Months)
	r.qClElec = make([]float64, timeframe.Months)
	r.qClGas = make([]float64, timeframe.Months)

	for m := 0; m < timeframe.Months; m++ {
		lossHt := r.qNeedHt[m] * (1 - etaDistHt) / etaDistHt
		lossCl := r.qNeedCl[m] * (1 - etaDistCl) / etaDistCl

		var htSys, htDH, clSys, clDC float64
		if h.DHYesNo == 1 {
			htDH = r.qNeedHt[m] + lossHt
		} else {
			htSys = (lossHt + r.qNeedHt[m]) / (h.Efficiency + dblMin)
		}
		if c.DCYesNo == 1 {
			clDC = r.qNeedCl[m] + lossCl
		} else {
			clSys = (lossCl + r.qNeedCl[m]) / (ieer + dblMin)
		}

		dcElec := clDC * (1 - c.EtaDCFracAbs) / (c.EtaDCCOP * c.EtaDCNetwork)
		dcAbs := clDC * (1 - c.FracDCFree) / c.EtaDCCOPAbs
		dhTotal := htDH * (1 - h.FracDHFree) / (h.EtaDHSys * h.EtaDHNetwork)

		r.qClElec[m] = clSys + dcElec
		r.qClGas[m] = dcAbs
		if h.EnergyType == Electric {
			r.qElecHt[m] = htSys
			r.qGasHt[m] = dhTotal
		} else {
			r.qGasHt[m] = htSys + dhTotal
		}
	}
}

// pump spreads the annual pump energy (MJ) over the months by their share
// of heating and cooling need.
func (r *monthlyRun) pump() {
	h, c := r.Heating, r.Cooling
	area := r.Structure.FloorArea
	msYear := floats.Sum(megasecondsInMonth)

	pumpsHt := msYear * h.EPumps * h.PumpControlReduction * area
	pumpsCl := msYear * c.EPumps * c.PumpControlReduction * area

	fracHt := make([]float64, timeframe.Months)
	fracCl := make([]float64, timeframe.Months)
	fracTot := make([]float64, timeframe.Months)
	for m := 0; m < timeframe.Months; m++ {
		need := r.qNeedHt[m] + r.qNeedCl[m]
		fracHt[m] = safeDiv(r.qNeedHt[m], need)
		fracCl[m] = safeDiv(r.qNeedCl[m], need)
		fracTot[m] = safeDiv(need, r.qNeedHtYr+r.qNeedClYr)
	}
	sumHt, sumCl, sumTot := floats.Sum(fracHt), floats.Sum(fracCl), floats.Sum(fracTot)

	r.qPump = make([]float64, timeframe.Months)
	for m := 0; m < timeframe.Months; m++ {
		if pumpsHt == 0 || pumpsCl == 0 {
			r.qPump[m] = safeDiv(fracHt[m]*pumpsHt, sumHt) + safeDiv(fracCl[m]*pumpsCl, sumCl)
		} else {
			r.qPump[m] = safeDiv(fracTot[m]*(pumpsHt+pumpsCl), sumTot)
		}
	}
}

// heatedWater computes domestic hot water energy (kWh) per NEN 2916 12.2.
func (r *monthlyRun) heatedWater() {
	h := r.Heating
	yearly := h.HotWaterDemand * (h.DHWTset - h.DHWTsupply) * r.PhysicalQuantities.RhoCpWater

	need := make([]float64, timeframe.Months)
	for m := range need {
		demand := daysInMonth[m] * yearly / daysInYear / h.HotWaterDistributionEfficiency / kWh2MJ
		need[m] = math.Max(demand/h.HotWaterSystemEfficiency, 0)
	}

	if h.HotWaterEnergyType == Electric {
		r.qDhwElec, r.qDhwGas = need, make([]float64, timeframe.Months)
	} else {
		r.qDhwElec, r.qDhwGas = make([]float64, timeframe.Months), need
	}
}

// outputGeneration converts everything to kWh/m2.
func (r *monthlyRun) outputGeneration() []EndUses {
	b := r.Building
	area := r.Structure.FloorArea
	f := r.fracWkDay

	plugElec := b.ElectricApplianceHeatGainOccupied*f + b.ElectricApplianceHeatGainUnoccupied*(1-f)
	plugGas := b.GasApplianceHeatGainOccupied*f + b.GasApplianceHeatGainUnoccupied*(1-f)

	results := make([]EndUses, timeframe.Months)
	for m := range results {
		u := &results[m]
		u.Set(ElecHeat, r.qElecHt[m]/area/kWh2MJ)
		u.Set(ElecCool, r.qClElec[m]/area/kWh2MJ)
		u.Set(ElecIntLights, r.qIllumTot[m]/area)
		u.Set(ElecExtLights, r.qIllumExt[m]/area)
		u.Set(ElecFans, r.qFan[m])
		u.Set(ElecPump, r.qPump[m]/area/kWh2MJ)
		u.Set(ElecEquipInt, hoursInMonth[m]*plugElec/1000)
		u.Set(ElecEquipExt, 0)
		u.Set(ElectDHW, r.qDhwElec[m]/area)
		u.Set(GasHeat, r.qGasHt[m]/area/kWh2MJ)
		u.Set(GasCool, r.qClGas[m]/area/kWh2MJ)
		u.Set(GasEquip, hoursInMonth[m]*plugGas/1000)
		u.Set(GasDHW, r.qDhwGas[m]/area)
	}
	return results
}

func scale(c float64, v []float64) []float64 {
	return floats.ScaleTo(make([]float64, len(v)), c, v)
}

func fill(v float64) []float64 {
	out := make([]float64, timeframe.Months)
	for i := range out {
		out[i] = v
	}
	return out
}

// safeDiv returns 0 where the denominator is 0.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
