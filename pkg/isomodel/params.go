package isomodel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chrissnell/isomodel/pkg/properties"
)

type scalarParam struct {
	key string
	dst *float64
}

type enumParam struct {
	key    string
	dst    *float64
	values map[string]float64
	names  []string
}

type vectorParam struct {
	key string
	dst *[]float64
}

// requiredScalars lists the numeric .ism keys every building must define.
func (c *components) requiredScalars() []scalarParam {
	return []scalarParam{
		{"terrainclass", &c.Location.Terrain},
		{"buildingheight", &c.Structure.BuildingHeight},
		{"floorarea", &c.Structure.FloorArea},
		{"occupancydayfirst", &c.Population.DaysStart},
		{"occupancydaylast", &c.Population.DaysEnd},
		{"occupancyhourfirst", &c.Population.HoursStart},
		{"occupancyhourlast", &c.Population.HoursEnd},
		{"peopledensityoccupied", &c.Population.DensityOccupied},
		{"peopledensityunoccupied", &c.Population.DensityUnoccupied},
		{"lightingpowerdensityoccupied", &c.Lighting.PowerDensityOccupied},
		{"lightingpowerdensityunoccupied", &c.Lighting.PowerDensityUnoccupied},
		{"electricappliancepowerdensityoccupied", &c.Building.ElectricApplianceHeatGainOccupied},
		{"electricappliancepowerdensityunoccupied", &c.Building.ElectricApplianceHeatGainUnoccupied},
		{"gasappliancepowerdensityoccupied", &c.Building.GasApplianceHeatGainOccupied},
		{"gasappliancepowerdensityunoccupied", &c.Building.GasApplianceHeatGainUnoccupied},
		{"exteriorlightingpower", &c.Lighting.ExteriorEnergy},
		{"hvacwastefactor", &c.Heating.HotcoldWasteFactor},
		{"hvacheatinglossfactor", &c.Heating.HvacLossFactor},
		{"hvaccoolinglossfactor", &c.Cooling.HvacLossFactor},
		{"daylightsensordimmingfraction", &c.Lighting.DimmingFraction},
		{"lightingoccupancysensordimmingfraction", &c.Building.LightingOccupancySensor},
		{"constantilluminationcontrolmultiplier", &c.Building.ConstantIllumination},
		{"coolingsystemcop", &c.Cooling.COP},
		{"coolingsystemiplvtocopratio", &c.Cooling.PartialLoadValue},
		{"heatingsystemefficiency", &c.Heating.Efficiency},
		{"ventilationintakerateoccupied", &c.Ventilation.SupplyRate},
		{"ventilationexhaustrateoccupied", &c.Ventilation.SupplyDifference},
		{"heatrecovery", &c.Ventilation.HeatRecoveryEfficiency},
		{"exhaustairrecirculation", &c.Ventilation.ExhaustAirRecirculated},
		{"infiltrationrateoccupied", &c.Structure.InfiltrationRate},
		{"dhwdemand", &c.Heating.HotWaterDemand},
		{"dhwsystemefficiency", &c.Heating.HotWaterSystemEfficiency},
		{"dhwdistributionefficiency", &c.Heating.HotWaterDistributionEfficiency},
		{"interiorheatcapacity", &c.Structure.InteriorHeatCapacity},
		{"exteriorheatcapacity", &c.Structure.WallHeatCapacity},
		{"heatingpumpcontrol", &c.Heating.PumpControlReduction},
		{"coolingpumpcontrol", &c.Cooling.PumpControlReduction},
		{"heatgainperperson", &c.Population.HeatGainPerPerson},
		{"specificfanpower", &c.Ventilation.FanPower},
		{"fanflowcontrolfactor", &c.Ventilation.FanControlFactor},
		{"coolingsetpointoccupied", &c.Cooling.TemperatureSetPointOccupied},
		{"coolingsetpointunoccupied", &c.Cooling.TemperatureSetPointUnoccupied},
		{"heatingsetpointoccupied", &c.Heating.TemperatureSetPointOccupied},
		{"heatingsetpointunoccupied", &c.Heating.TemperatureSetPointUnoccupied},
	}
}

// optionalScalars override the component defaults when present.
func (c *components) optionalScalars() []scalarParam {
	return []scalarParam{
		{"externalequipment", &c.Building.ExternalEquipment},
		{"electricappliancepowerfixedoccupied", &c.Building.ElectricAppliancePowerFixedOccupied},
		{"electricappliancepowerfixedunoccupied", &c.Building.ElectricAppliancePowerFixedUnoccupied},
		{"gasappliancepowerfixedoccupied", &c.Building.GasAppliancePowerFixedOccupied},
		{"gasappliancepowerfixedunoccupied", &c.Building.GasAppliancePowerFixedUnoccupied},

		{"dc_yesno", &c.Cooling.DCYesNo},
		{"dt_supp_cl", &c.Cooling.DTSuppCl},
		{"e_pumps_cl", &c.Cooling.EPumps},
		{"eta_dc_cop", &c.Cooling.EtaDCCOP},
		{"eta_dc_cop_abs", &c.Cooling.EtaDCCOPAbs},
		{"eta_dc_frac_abs", &c.Cooling.EtaDCFracAbs},
		{"eta_dc_network", &c.Cooling.EtaDCNetwork},
		{"frac_dc_free", &c.Cooling.FracDCFree},
		{"t_cl_ctrl_flag", &c.Cooling.TControlFlag},

		{"a_h0", &c.Heating.AH0},
		{"dh_yesno", &c.Heating.DHYesNo},
		{"dhw_tset", &c.Heating.DHWTset},
		{"dhw_tsupply", &c.Heating.DHWTsupply},
		{"dt_supp_ht", &c.Heating.DTSuppHt},
		{"e_pumps_ht", &c.Heating.EPumps},
		{"eta_dh_network", &c.Heating.EtaDHNetwork},
		{"eta_dh_sys", &c.Heating.EtaDHSys},
		{"frac_dh_free", &c.Heating.FracDHFree},
		{"t_ht_ctrl_flag", &c.Heating.TControlFlag},
		{"tau_h0", &c.Heating.TauH0},

		{"automaticad", &c.Lighting.AutomaticAd},
		{"automaticlux", &c.Lighting.AutomaticLux},
		{"elecinternalgains", &c.Lighting.ElecInternalGains},
		{"manualswitchad", &c.Lighting.ManualSwitchAd},
		{"manualswitchlux", &c.Lighting.ManualSwitchLux},
		{"n_day_end", &c.Lighting.NDayEnd},
		{"n_day_start", &c.Lighting.NDayStart},
		{"n_weeks", &c.Lighting.NWeeks},
		{"naturallylightedarea", &c.Lighting.NaturallyLightedArea},
		{"permlightpowerdensity", &c.Lighting.PermLightPowerDensity},
		{"presenceautoad", &c.Lighting.PresenceAutoAd},
		{"presenceautolux", &c.Lighting.PresenceAutoLux},
		{"presencesensorad", &c.Lighting.PresenceSensorAd},
		{"presencesensorlux", &c.Lighting.PresenceSensorLux},
		{"lightingpowerfixedoccupied", &c.Lighting.PowerFixedOccupied},
		{"lightingpowerfixedunoccupied", &c.Lighting.PowerFixedUnoccupied},

		{"rhocpair", &c.PhysicalQuantities.RhoCpAir},
		{"rhocpwater", &c.PhysicalQuantities.RhoCpWater},

		{"hci", &c.SimulationSettings.Hci},
		{"hri", &c.SimulationSettings.Hri},
		{"phiintfractiontoairnode", &c.SimulationSettings.PhiIntFractionToAirNode},
		{"phisolfractiontoairnode", &c.SimulationSettings.PhiSolFractionToAirNode},

		{"irradianceformaxshadinguse", &c.Structure.IrradianceForMaxShadingUse},
		{"r_sc_ext", &c.Structure.RScExt},
		{"r_se", &c.Structure.RSe},
		{"shadingfactoratmaxuse", &c.Structure.ShadingFactorAtMaxUse},
		{"totalareaperfloorarea", &c.Structure.TotalAreaPerFloorArea},
		{"win_f_w", &c.Structure.WinFW},
		{"win_ff", &c.Structure.WinFF},

		{"dcp", &c.Ventilation.DCp},
		{"h_ve", &c.Ventilation.HVe},
		{"hzone", &c.Ventilation.HZone},
		{"n50", &c.Ventilation.N50},
		{"p_exp", &c.Ventilation.PExp},
		{"stack_coeff", &c.Ventilation.StackCoeff},
		{"stack_exp", &c.Ventilation.StackExp},
		{"vent_rate_flag", &c.Ventilation.VentRateFlag},
		{"ventpreheatdegc", &c.Ventilation.VentPreheatDegC},
		{"wind_coeff", &c.Ventilation.WindCoeff},
		{"wind_exp", &c.Ventilation.WindExp},
		{"zone_frac", &c.Ventilation.ZoneFrac},
		{"ventilationintakerateunoccupied", &c.Ventilation.IntakeRateUnoccupied},
		{"ventilationexhaustrateunoccupied", &c.Ventilation.ExhaustRateUnoccupied},
		{"infiltrationrateunoccupied", &c.Ventilation.InfiltrationRateUnoccupied},
	}
}

var (
	fuelTypes = map[string]float64{"electric": Electric, "gas": Gas}
	ventTypes = map[string]float64{"mechanical": VentMechanical, "combined": VentCombined, "natural": VentNatural}
	bemTypes  = map[string]float64{"none": BEMNone, "simple": BEMSimple, "advanced": BEMAdvanced}
)

func (c *components) requiredEnums() []enumParam {
	return []enumParam{
		{"heatingfueltype", &c.Heating.EnergyType, fuelTypes, []string{"electric", "gas"}},
		{"ventilationtype", &c.Ventilation.Type, ventTypes, []string{"mechanical", "combined", "natural"}},
		{"dhwfueltype", &c.Heating.HotWaterEnergyType, fuelTypes, []string{"electric", "gas"}},
		{"bemtype", &c.Building.BuildingEnergyManagement, bemTypes, []string{"none", "simple", "advanced"}},
	}
}

// requiredVectors are read in the .ism surface order N, NE, E, SE, S, SW, W, NW, Roof.
func (c *components) requiredVectors() []vectorParam {
	s := &c.Structure
	return []vectorParam{
		{"wallArea", &s.WallArea},
		{"wallU", &s.WallUniform},
		{"wallEmissivity", &s.WallThermalEmissivity},
		{"wallAbsorption", &s.WallSolarAbsorption},
		{"windowArea", &s.WindowArea},
		{"windowU", &s.WindowUniform},
		{"windowSHGC", &s.WindowNormalIncidenceSolarEnergyTransmittance},
		{"windowSCF", &s.WindowShadingCorrectionFactor},
		{"windowSDF", &s.WindowShadingDevice},
	}
}

// initialize copies every known key from props into c.
func (c *components) initialize(props *properties.Properties) error {
	for _, p := range c.requiredScalars() {
		v, err := props.Float(p.key)
		if err != nil {
			return fmt.Errorf("required parameter %s: %w", p.key, err)
		}
		*p.dst = v
	}

	for _, p := range c.optionalScalars() {
		v, err := props.Float(p.key)
		switch {
		case errors.Is(err, properties.ErrNotFound):
			continue
		case err != nil:
			return fmt.Errorf("parameter %s: %w", p.key, err)
		}
		*p.dst = v
	}

	for _, b := range []struct {
		key string
		dst *bool
	}{
		{"forcedairheating", &c.Heating.ForcedAirHeating},
		{"forcedaircooling", &c.Cooling.ForcedAirCooling},
	} {
		v, err := props.Bool(b.key)
		switch {
		case errors.Is(err, properties.ErrNotFound):
			continue
		case err != nil:
			return fmt.Errorf("parameter %s: %w", b.key, err)
		}
		*b.dst = v
	}

	for _, e := range c.requiredEnums() {
		raw, ok := props.Get(e.key)
		if !ok {
			return fmt.Errorf("required parameter %s: %w", e.key, properties.ErrNotFound)
		}
		v, ok := e.values[strings.ToLower(strings.TrimSpace(raw))]
		if !ok {
			return fmt.Errorf("%s parameter must be one of %s, got %q", e.key, quoteJoin(e.names), raw)
		}
		*e.dst = v
	}

	if path, ok := props.Get("schedulefilepath"); ok {
		c.Population.ScheduleFilePath = path
	}

	for _, p := range c.requiredVectors() {
		v, err := props.FloatSlice(p.key)
		if err != nil {
			return fmt.Errorf("required parameter %s: %w", p.key, err)
		}
		if len(v) != NumSurfaces {
			return fmt.Errorf("invalid number of values for %s parameter: it must have %d, got %d", p.key, NumSurfaces, len(v))
		}
		*p.dst = northToSouth(v)
	}
	return c.checkSystemEfficiencies()
}

// checkSystemEfficiencies rejects the efficiencies end use conversion
// divides by.
func (c *components) checkSystemEfficiencies() error {
	if c.Heating.Efficiency <= 0 {
		return fmt.Errorf("heatingSystemEfficiency must be positive, got %v", c.Heating.Efficiency)
	}
	if c.Cooling.COP <= 0 {
		return fmt.Errorf("coolingSystemCOP must be positive, got %v", c.Cooling.COP)
	}
	return nil
}

// northToSouth reorders a surface vector from the .ism order
// N, NE, E, SE, S, SW, W, NW, Roof to S, SE, E, NE, N, NW, W, SW, Roof.
func northToSouth(v []float64) []float64 {
	out := cloneSlice(v)
	out[0], out[4] = out[4], out[0]
	out[1], out[3] = out[3], out[1]
	out[5], out[7] = out[7], out[5]
	return out
}

func quoteJoin(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = "'" + n + "'"
	}
	return strings.Join(q, ", ")
}
