package isomodel

import (
	"fmt"
	"math"

	"github.com/chrissnell/isomodel/pkg/epw"
	"github.com/chrissnell/isomodel/pkg/solar"
	"github.com/chrissnell/isomodel/pkg/timeframe"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// Interior temperature (C) of both thermal nodes before the first hour.
const initialInteriorTemp = 20.0

// HourlyModel is the ISO 13790 simple hourly (5R1C) method.
type HourlyModel struct {
	components

	epw    *epw.Data
	logger *zap.SugaredLogger
}

// Simulate runs every hour of the year. With aggregateByMonth the hourly
// results are summed into 12 monthly records, otherwise 8760 are returned.
func (m *HourlyModel) Simulate(aggregateByMonth bool) ([]EndUses, error) {
	if m.epw == nil {
		return nil, fmt.Errorf("%w: no weather data", ErrInvalidModel)
	}
	if err := m.components.validate(); err != nil {
		return nil, err
	}

	r := &hourlyRun{HourlyModel: m}
	r.populateSchedules()
	r.initialize()

	frame := timeframe.New()
	eglobe := solar.Calculate(frame, m.epw).Eglobe
	wind := m.epw.Column(epw.WSPD)
	temp := m.epw.Column(epw.DBT)
	egh := m.epw.Column(epw.EGH)

	raw := newHourSeries(timeframe.HoursPerYear)
	tmt1, tiHeatCool := initialInteriorTemp, initialInteriorTemp
	var irr [NumSurfaces]float64
	for i := 0; i < timeframe.HoursPerYear; i++ {
		copy(irr[:Roof], eglobe.RawRowView(i))
		irr[Roof] = egh[i]

		h := r.calculateHour(frame.Hour[i], frame.DayOfWeek[i], wind[i], temp[i], &irr, &tmt1, &tiHeatCool)
		raw.set(i, h)
	}

	results := r.endUses(raw)
	if aggregateByMonth {
		results = sumByMonth(results)
	}

	m.logger.Debugw("hourly simulation complete",
		"heating_need_wh_m2", floats.Sum(raw.qNeedHt),
		"cooling_need_wh_m2", floats.Sum(raw.qNeedCl),
		"final_interior_temp", tiHeatCool,
		"records", len(results))

	return results, nil
}

// hourResult is the per-m2 output of one hour, in W/m2.
type hourResult struct {
	qNeedHt, qNeedCl float64
	qIllum, qIllumExt float64
	qFan, qPump      float64
	phiPlug          float64
	extEquip         float64
	qDHW             float64
}

type hourSeries struct {
	qNeedHt, qNeedCl  []float64
	qIllum, qIllumExt []float64
	qFan, qPump       []float64
	phiPlug, extEquip []float64
	qDHW              []float64
}

func newHourSeries(n int) *hourSeries {
	return &hourSeries{
		qNeedHt:   make([]float64, n),
		qNeedCl:   make([]float64, n),
		qIllum:    make([]float64, n),
		qIllumExt: make([]float64, n),
		qFan:      make([]float64, n),
		qPump:     make([]float64, n),
		phiPlug:   make([]float64, n),
		extEquip:  make([]float64, n),
		qDHW:      make([]float64, n),
	}
}

func (s *hourSeries) set(i int, h hourResult) {
	s.qNeedHt[i] = h.qNeedHt
	s.qNeedCl[i] = h.qNeedCl
	s.qIllum[i] = h.qIllum
	s.qIllumExt[i] = h.qIllumExt
	s.qFan[i] = h.qFan
	s.qPump[i] = h.qPump
	s.phiPlug[i] = h.phiPlug
	s.extEquip[i] = h.extEquip
	s.qDHW[i] = h.qDHW
}

// weekSchedule is indexed by hour of day, then day of week.
type weekSchedule [timeframe.HoursPerDay][timeframe.DaysPerWeek]float64

// hourlyRun holds the schedules and the envelope constants derived once
// before the hourly loop.
type hourlyRun struct {
	*HourlyModel

	ventilation, extEquipment, intEquipment weekSchedule
	extLighting, intLighting                weekSchedule
	heatingSetpoint, coolingSetpoint        weekSchedule

	maxRatioElectricLighting float64
	elightNatural            float64
	naturalAreaRatio         float64

	naturalLightRatio               [NumSurfaces]float64
	naturalLightShadeRatioReduction [NumSurfaces]float64
	solarRatio                      [NumSurfaces]float64
	solarShadeRatioReduction        [NumSurfaces]float64
	shadingUsePerWPerM2             float64

	q4Pa                  float64
	hTrIs                 float64
	cm                    float64
	hWindow               float64
	hMs, hEm              float64
	prsInterior, prsSolar float64
	prmInterior, prmSolar float64
	windImpactHz          float64
	windImpactSupplyRatio float64
}

// populateSchedules fills the weekly schedules from the occupancy hours and
// days. Ventilation follows the occupied hours on every day.
func (r *hourlyRun) populateSchedules() {
	pop, b, lt := r.Population, r.Building, r.Lighting
	dayStart, dayEnd := int(pop.DaysStart), int(pop.DaysEnd)
	hourStart, hourEnd := int(pop.HoursStart), int(pop.HoursEnd)

	for h := 0; h < timeframe.HoursPerDay; h++ {
		hourOcc := h >= hourStart && h <= hourEnd
		for d := 0; d < timeframe.DaysPerWeek; d++ {
			occ := hourOcc && d >= dayStart && d <= dayEnd

			r.ventilation[h][d] = 0
			if hourOcc {
				r.ventilation[h][d] = r.Ventilation.SupplyRate
			}
			r.extEquipment[h][d] = b.ExternalEquipment
			// Exterior lights are enabled around the clock and switched off
			// in daylight by calculateHour.
			r.extLighting[h][d] = 1

			if occ {
				r.intEquipment[h][d] = b.ElectricApplianceHeatGainOccupied
				r.intLighting[h][d] = lt.PowerDensityOccupied
				r.heatingSetpoint[h][d] = r.Heating.TemperatureSetPointOccupied
				r.coolingSetpoint[h][d] = r.Cooling.TemperatureSetPointOccupied
			} else {
				r.intEquipment[h][d] = b.ElectricApplianceHeatGainUnoccupied
				r.intLighting[h][d] = lt.PowerDensityUnoccupied
				r.heatingSetpoint[h][d] = r.Heating.TemperatureSetPointUnoccupied
				r.coolingSetpoint[h][d] = r.Cooling.TemperatureSetPointUnoccupied
			}
		}
	}
}

// initialize derives the lighting controls, apertures and 5R1C network
// conductances.
func (r *hourlyRun) initialize() {
	lt, s, set := r.Lighting, r.Structure, r.SimulationSettings
	area := s.FloorArea

	occSensor := r.Building.LightingOccupancySensor < 1
	daylightSensor := lt.DimmingFraction < 1
	switch {
	case occSensor && daylightSensor:
		r.maxRatioElectricLighting, r.elightNatural = lt.PresenceAutoAd, lt.PresenceAutoLux
	case occSensor:
		r.maxRatioElectricLighting, r.elightNatural = lt.PresenceSensorAd, lt.PresenceSensorLux
	case daylightSensor:
		r.maxRatioElectricLighting, r.elightNatural = lt.AutomaticAd, lt.AutomaticLux
	default:
		r.maxRatioElectricLighting, r.elightNatural = lt.ManualSwitchAd, lt.ManualSwitchLux
	}

	r.naturalAreaRatio = math.Max(0.0001, lt.NaturallyLightedArea) / area

	var hWindow, hWall float64
	for i := 0; i < NumSurfaces; i++ {
		// The shading device column is the daylight transmittance input.
		windowT := s.WindowShadingDevice[i] / 0.87
		nla := s.WindowArea[i] * windowT
		wallSolar := s.WallArea[i] * s.WallSolarAbsorption[i] * s.WallUniform[i] * s.RSe
		sams := wallSolar + s.WindowArea[i]*s.WindowShadingCorrectionFactor[i]
		sa := wallSolar + s.WindowArea[i]*s.WindowNormalIncidenceSolarEnergyTransmittance[i]

		r.naturalLightRatio[i] = nla / area
		r.naturalLightShadeRatioReduction[i] = 0
		r.solarRatio[i] = sa / area
		r.solarShadeRatioReduction[i] = sams/area - sa/area

		win := s.WindowArea[i] * s.WindowUniform[i]
		hWindow += win
		hWall += s.WallArea[i] * s.WallUniform[i]
	}
	r.shadingUsePerWPerM2 = s.ShadingFactorAtMaxUse / s.IrradianceForMaxShadingUse

	// EN 15242 leakage at 4 Pa from the n50 air change rate.
	buildingV8 := 0.19 * r.Ventilation.N50 * area * s.BuildingHeight
	r.q4Pa = math.Max(0.000001, buildingV8/area)

	// ISO 13790 12.2.2
	hms := set.Hci + set.Hri*1.2
	his := 1 / (1/set.Hci - 1/hms)
	r.hTrIs = his * s.TotalAreaPerFloorArea

	r.cm = s.InteriorHeatCapacity/1000 + s.WallHeatCapacity*floats.Sum(s.WallArea)/area/1000
	am := effectiveMassArea(r.cm)

	r.hWindow = hWindow / area
	prs := (s.TotalAreaPerFloorArea - am - r.hWindow/hms) / s.TotalAreaPerFloorArea
	r.prsInterior = (1 - set.PhiIntFractionToAirNode) * prs
	r.prsSolar = (1 - set.PhiSolFractionToAirNode) * prs
	prm := am / s.TotalAreaPerFloorArea
	r.prmInterior = (1 - set.PhiIntFractionToAirNode) * prm
	r.prmSolar = (1 - set.PhiSolFractionToAirNode) * prm

	r.hMs = hms * am
	hOpaque := math.Max(hWall/area, 0.000001)
	r.hEm = 1 / (1/hOpaque - 1/r.hMs)

	r.windImpactHz = math.Max(0.1, r.Ventilation.HZone)
	r.windImpactSupplyRatio = math.Max(0.00001, r.Ventilation.FanControlFactor)
}

// effectiveMassArea is A_m per m2 of floor for a heat capacity C_m in
// kJ/m2K, per ISO 13790 table 12.
func effectiveMassArea(cm float64) float64 {
	switch {
	case cm > 370:
		return 3.5
	case cm > 260:
		return 3.0 + 0.5*((cm-260)/110)
	case cm > 165:
		return 2.5 + 0.5*((cm-165)/95)
	}
	return 2.5
}

// calculateHour solves the 5R1C network for one hour. tmt1 (thermal mass
// temperature) and tiHeatCool (air temperature) carry over between hours.
func (r *hourlyRun) calculateHour(hourOfDay, dayOfWeek int, windMps, temperature float64, irr *[NumSurfaces]float64, tmt1, tiHeatCool *float64) hourResult {
	var res hourResult
	area := r.Structure.FloorArea
	h, d := hourOfDay, dayOfWeek

	ventExhaust := r.ventilation[h][d] * 3.6 / area
	intLighting := r.intLighting[h][d]
	heatingSetpoint := r.heatingSetpoint[h][d]
	coolingSetpoint := r.coolingSetpoint[h][d]

	res.extEquip = r.extEquipment[h][d] / area
	res.phiPlug = r.intEquipment[h][d]

	invAreaRatio := 53.0 / r.naturalAreaRatio
	maxIrrad := r.Structure.IrradianceForMaxShadingUse

	var lightingLevel, solarGain float64
	for i, sr := range irr {
		capped := math.Min(maxIrrad, sr)
		lightingLevel += invAreaRatio * sr * (r.naturalLightRatio[i] + r.shadingUsePerWPerM2*r.naturalLightShadeRatioReduction[i]*capped)
		solarGain += sr * (r.solarRatio[i] + r.solarShadeRatioReduction[i]*r.shadingUsePerWPerM2*capped)
	}

	naturalElectric := math.Max(0, r.maxRatioElectricLighting*(1-lightingLevel/r.elightNatural))
	totalElectric := naturalElectric*r.naturalAreaRatio + (1-r.naturalAreaRatio)*r.maxRatioElectricLighting

	phiIllum := totalElectric * intLighting * r.Lighting.ElecInternalGains
	res.qIllum = totalElectric * intLighting

	phiInt := res.phiPlug + phiIllum
	phii := r.SimulationSettings.PhiSolFractionToAirNode*solarGain + r.SimulationSettings.PhiIntFractionToAirNode*phiInt
	phii10 := phii + 10

	// EN 15242 flows.
	v := r.Ventilation
	qSupply := ventExhaust * r.windImpactSupplyRatio
	exhaustSupply := -(qSupply - ventExhaust)
	tExchanged := (1-v.HeatRecoveryEfficiency)*temperature + v.HeatRecoveryEfficiency*20
	tSupplied := math.Max(v.VentPreheatDegC, tExchanged)

	qWind := 0.0769 * r.q4Pa * math.Pow(v.DCp*windMps*windMps, 0.667)
	qStack := 0.0146 * r.q4Pa * math.Pow(0.5*r.windImpactHz*math.Max(0.00001, math.Abs(temperature-*tiHeatCool)), 0.667)
	qExfiltration := math.Max(0, math.Max(qStack, qWind)-math.Abs(exhaustSupply)*(0.5*qStack+0.667*qWind/(qStack+qWind)))

	qEnvelope := math.Max(0, exhaustSupply) + qExfiltration
	qEntering := qEnvelope + qSupply

	// ISO 13790 9.3 supply temperature.
	tSup := (temperature*qEnvelope + tSupplied*qSupply) / qEntering
	hei := 0.34 * qEntering

	h1 := 1 / (1/hei + 1/r.hTrIs)
	h2 := h1 + r.hWindow
	h3 := 1 / (1/h2 + 1/r.hMs)

	phis := r.prsSolar*solarGain + r.prsInterior*phiInt
	phim := r.prmSolar*solarGain + r.prmInterior*phiInt

	cmTerm := r.cm / 3.6
	h3hemHalf := 0.5 * (h3 + r.hEm)

	// Air temperature reached with an air-node gain of phiAir.
	airTemp := func(phiAir float64) float64 {
		phimTot := phim + r.hEm*temperature + h3*(phis+r.hWindow*temperature+h1*(phiAir/hei+tSup))/h2
		tmNext := (*tmt1*(cmTerm-h3hemHalf) + phimTot) / (cmTerm + h3hemHalf)
		tm := 0.5 * (*tmt1 + tmNext)
		ts := (r.hMs*tm + phis + r.hWindow*temperature + h1*(tSup+phiAir/hei)) / (r.hMs + r.hWindow + h1)
		return (r.hTrIs*ts + hei*tSup + phiAir) / (r.hTrIs + hei)
	}

	ti10 := airTemp(phii10)
	ti0 := airTemp(phii)
	denom := ti10 - ti0
	phiCooling := 10 * (coolingSetpoint - ti0) / denom
	phiHeating := 10 * (heatingSetpoint - ti0) / denom
	phiActual := math.Max(0, phiHeating) + math.Min(phiCooling, 0)

	res.qNeedCl = math.Max(0, -phiActual)
	res.qNeedHt = math.Max(0, phiActual)

	tSupHt := r.Heating.TemperatureSetPointOccupied + r.Heating.DTSuppHt
	tSupCl := r.Cooling.TemperatureSetPointOccupied - r.Cooling.DTSuppCl
	rhoCp := r.PhysicalQuantities.RhoCpAir * 277.777778

	var airHt, airCl float64
	if r.Heating.ForcedAirHeating {
		airHt = res.qNeedHt / ((tSupHt-*tiHeatCool)*rhoCp + dblMin)
	}
	if r.Cooling.ForcedAirCooling {
		airCl = res.qNeedCl / ((*tiHeatCool-tSupCl)*rhoCp + dblMin)
	}
	res.qFan = math.Max(airHt+airCl, ventExhaust) * v.FanPower * 1000 / 3600

	switch {
	case res.qNeedCl > 0:
		res.qPump = r.Cooling.EPumps * r.Cooling.PumpControlReduction
	case res.qNeedHt > 0:
		res.qPump = r.Heating.EPumps * r.Heating.PumpControlReduction
	}

	if irr[Roof] <= 0 {
		res.qIllumExt = r.Lighting.ExteriorEnergy * r.extLighting[h][d] / area
	}

	// Advance the state with the load actually delivered.
	phiiHeatCool := phiActual + phii
	phimTot := phim + r.hEm*temperature + h3*(phis+r.hWindow*temperature+h1*(phiiHeatCool/hei+tSup))/h2
	prev := *tmt1
	*tmt1 = (prev*(cmTerm-h3hemHalf) + phimTot) / (cmTerm + h3hemHalf)
	tm := 0.5 * (*tmt1 + prev)
	ts := (r.hMs*tm + phis + r.hWindow*temperature + h1*(tSup+phiiHeatCool/hei)) / (r.hMs + r.hWindow + h1)
	*tiHeatCool = (r.hTrIs*ts + hei*tSup + phiiHeatCool) / (r.hTrIs + hei)

	return res
}

// endUses applies distribution losses and system efficiencies to the raw
// hourly needs and converts every value from Wh/m2 to kWh/m2.
func (r *hourlyRun) endUses(raw *hourSeries) []EndUses {
	h, c := r.Heating, r.Cooling

	htYr := floats.Sum(raw.qNeedHt)
	clYr := floats.Sum(raw.qNeedCl)
	fDemHt := math.Max(safeDiv(htYr, clYr+htYr), 0.1)
	fDemCl := math.Max(1-fDemHt, 0.1)
	etaDistHt := 1 / (1 + h.HvacLossFactor + h.HotcoldWasteFactor/fDemHt)
	etaDistCl := 1 / (1 + c.HvacLossFactor + h.HotcoldWasteFactor/fDemCl)

	const wToKWh = 1.0 / 1000
	out := make([]EndUses, len(raw.qNeedHt))
	for i := range out {
		u := &out[i]
		heating := raw.qNeedHt[i] / etaDistHt / h.Efficiency
		if h.EnergyType == Electric {
			u.Set(ElecHeat, heating*wToKWh)
		} else {
			u.Set(GasHeat, heating*wToKWh)
		}
		u.Set(ElecCool, raw.qNeedCl[i]/etaDistCl/c.COP*wToKWh)
		u.Set(ElecIntLights, raw.qIllum[i]*wToKWh)
		u.Set(ElecExtLights, raw.qIllumExt[i]*wToKWh)
		u.Set(ElecFans, raw.qFan[i]*wToKWh)
		u.Set(ElecPump, raw.qPump[i]*wToKWh)
		u.Set(ElecEquipInt, raw.phiPlug[i]*wToKWh)
		u.Set(ElecEquipExt, raw.extEquip[i]*wToKWh)
		u.Set(ElectDHW, raw.qDHW[i]*wToKWh)
	}
	return out
}

// sumByMonth adds hourly records into calendar months.
func sumByMonth(hourly []EndUses) []EndUses {
	out := make([]EndUses, timeframe.Months)
	for m := 0; m < timeframe.Months; m++ {
		for i := timeframe.MonthStartHour[m]; i < timeframe.MonthStartHour[m+1]; i++ {
			for e := range out[m] {
				out[m][e] += hourly[i][e]
			}
		}
	}
	return out
}
