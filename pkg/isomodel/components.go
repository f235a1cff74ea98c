package isomodel

import "fmt"

// NumSurfaces is the number of envelope surfaces: eight facades plus the roof,
// ordered S, SE, E, NE, N, NW, W, SW, Roof.
const NumSurfaces = 9

// Roof is the index of the roof in per-surface slices.
const Roof = 8

// Energy carriers used by Heating.EnergyType and Heating.HotWaterEnergyType.
const (
	Electric = 1.0
	Gas      = 2.0
)

// Ventilation types.
const (
	VentMechanical = 1.0
	VentCombined   = 2.0
	VentNatural    = 3.0
)

// Building energy management levels.
const (
	BEMNone     = 1.0
	BEMSimple   = 2.0
	BEMAdvanced = 3.0
)

// Population describes occupancy. Days are numbered 0..6 and hours 0..23,
// both inclusive.
type Population struct {
	DaysStart         float64
	DaysEnd           float64
	HoursStart        float64
	HoursEnd          float64
	DensityOccupied   float64 // m2 per person
	DensityUnoccupied float64 // m2 per person
	HeatGainPerPerson float64 // W
	ScheduleFilePath  string
}

// Location holds site exposure. Terrain is 0.8 for city, 0.9 for suburban
// and 1.0 for open country.
type Location struct {
	Terrain float64
}

// Lighting is interior and exterior lighting.
type Lighting struct {
	PowerDensityOccupied   float64 // W/m2
	PowerDensityUnoccupied float64 // W/m2
	DimmingFraction        float64
	ExteriorEnergy         float64 // W

	NDayStart             float64
	NDayEnd               float64
	NWeeks                float64
	ElecInternalGains     float64
	PermLightPowerDensity float64

	PresenceSensorAd  float64
	AutomaticAd       float64
	PresenceAutoAd    float64
	ManualSwitchAd    float64
	PresenceSensorLux float64
	AutomaticLux      float64
	PresenceAutoLux   float64
	ManualSwitchLux   float64

	NaturallyLightedArea float64

	PowerFixedOccupied   float64
	PowerFixedUnoccupied float64
}

// DefaultLighting returns Lighting with the fallback constants set.
func DefaultLighting() Lighting {
	return Lighting{
		NDayStart:         7,
		NDayEnd:           18,
		NWeeks:            50,
		ElecInternalGains: 1,
		PresenceSensorAd:  0.6,
		AutomaticAd:       0.8,
		PresenceAutoAd:    0.6,
		ManualSwitchAd:    1,
		PresenceSensorLux: 500,
		AutomaticLux:      300,
		PresenceAutoLux:   300,
		ManualSwitchLux:   500,
	}
}

// Building holds plug loads, lighting controls and energy management.
type Building struct {
	LightingOccupancySensor float64
	ConstantIllumination    float64

	ElectricApplianceHeatGainOccupied   float64 // W/m2
	ElectricApplianceHeatGainUnoccupied float64
	GasApplianceHeatGainOccupied        float64
	GasApplianceHeatGainUnoccupied      float64

	BuildingEnergyManagement float64
	ExternalEquipment        float64

	ElectricAppliancePowerFixedOccupied   float64
	ElectricAppliancePowerFixedUnoccupied float64
	GasAppliancePowerFixedOccupied        float64
	GasAppliancePowerFixedUnoccupied      float64
}

// Structure is the building envelope. Every slice has NumSurfaces entries.
type Structure struct {
	FloorArea            float64 // m2
	BuildingHeight       float64 // m
	InfiltrationRate     float64 // m3/h/m2 at 4 Pa
	InteriorHeatCapacity float64 // J/K/m2
	WallHeatCapacity     float64 // J/K/m2

	WallArea              []float64
	WallUniform           []float64
	WallThermalEmissivity []float64
	WallSolarAbsorption   []float64
	WindowArea            []float64
	WindowUniform         []float64

	// SHGC per surface.
	WindowNormalIncidenceSolarEnergyTransmittance []float64
	// SCF per surface.
	WindowShadingCorrectionFactor []float64
	// SDF per surface, a shading device type 1..3.
	WindowShadingDevice []float64

	WinFF                      float64
	WinFW                      float64
	RScExt                     float64
	RSe                        float64
	IrradianceForMaxShadingUse float64
	ShadingFactorAtMaxUse      float64
	TotalAreaPerFloorArea      float64
}

// DefaultStructure returns a Structure with empty surfaces and the fallback
// constants set.
func DefaultStructure() Structure {
	return Structure{
		WallArea:              make([]float64, NumSurfaces),
		WallUniform:           make([]float64, NumSurfaces),
		WallThermalEmissivity: make([]float64, NumSurfaces),
		WallSolarAbsorption:   make([]float64, NumSurfaces),
		WindowArea:            make([]float64, NumSurfaces),
		WindowUniform:         make([]float64, NumSurfaces),
		WindowNormalIncidenceSolarEnergyTransmittance: make([]float64, NumSurfaces),
		WindowShadingCorrectionFactor:                 make([]float64, NumSurfaces),
		WindowShadingDevice:                           make([]float64, NumSurfaces),

		WinFF:                      0.25,
		WinFW:                      0.9,
		RScExt:                     0.04,
		RSe:                        0.04,
		IrradianceForMaxShadingUse: 500,
		ShadingFactorAtMaxUse:      0.5,
		TotalAreaPerFloorArea:      4.5,
	}
}

func (s Structure) clone() Structure {
	c := s
	c.WallArea = cloneSlice(s.WallArea)
	c.WallUniform = cloneSlice(s.WallUniform)
	c.WallThermalEmissivity = cloneSlice(s.WallThermalEmissivity)
	c.WallSolarAbsorption = cloneSlice(s.WallSolarAbsorption)
	c.WindowArea = cloneSlice(s.WindowArea)
	c.WindowUniform = cloneSlice(s.WindowUniform)
	c.WindowNormalIncidenceSolarEnergyTransmittance = cloneSlice(s.WindowNormalIncidenceSolarEnergyTransmittance)
	c.WindowShadingCorrectionFactor = cloneSlice(s.WindowShadingCorrectionFactor)
	c.WindowShadingDevice = cloneSlice(s.WindowShadingDevice)
	return c
}

// surfaces returns every per-surface slice, for length validation.
func (s Structure) surfaces() map[string][]float64 {
	return map[string][]float64{
		"wallArea":       s.WallArea,
		"wallU":          s.WallUniform,
		"wallEmissivity": s.WallThermalEmissivity,
		"wallAbsorption": s.WallSolarAbsorption,
		"windowArea":     s.WindowArea,
		"windowU":        s.WindowUniform,
		"windowSHGC":     s.WindowNormalIncidenceSolarEnergyTransmittance,
		"windowSCF":      s.WindowShadingCorrectionFactor,
		"windowSDF":      s.WindowShadingDevice,
	}
}

// Heating covers space heating and domestic hot water.
type Heating struct {
	EnergyType                     float64
	Efficiency                     float64
	HvacLossFactor                 float64
	HotcoldWasteFactor             float64
	PumpControlReduction           float64
	TemperatureSetPointOccupied    float64
	TemperatureSetPointUnoccupied  float64
	HotWaterDemand                 float64 // m3/yr
	HotWaterSystemEfficiency       float64
	HotWaterDistributionEfficiency float64
	HotWaterEnergyType             float64

	ForcedAirHeating bool
	DTSuppHt         float64
	EPumps           float64
	TControlFlag     float64
	AH0              float64
	TauH0            float64
	DHYesNo          float64
	EtaDHNetwork     float64
	EtaDHSys         float64
	FracDHFree       float64
	DHWTset          float64
	DHWTsupply       float64
}

// DefaultHeating returns Heating with the fallback constants set.
func DefaultHeating() Heating {
	return Heating{
		ForcedAirHeating: true,
		DTSuppHt:         7,
		EPumps:           0.25,
		TControlFlag:     1,
		AH0:              1,
		TauH0:            15,
		EtaDHNetwork:     0.9,
		EtaDHSys:         0.87,
		DHWTset:          60,
		DHWTsupply:       20,
	}
}

// Cooling covers space cooling.
type Cooling struct {
	COP                           float64
	PartialLoadValue              float64
	HvacLossFactor                float64
	PumpControlReduction          float64
	TemperatureSetPointOccupied   float64
	TemperatureSetPointUnoccupied float64

	ForcedAirCooling bool
	TControlFlag     float64
	DTSuppCl         float64
	DCYesNo          float64
	EtaDCNetwork     float64
	EtaDCCOP         float64
	EtaDCFracAbs     float64
	EtaDCCOPAbs      float64
	FracDCFree       float64
	EPumps           float64
}

// DefaultCooling returns Cooling with the fallback constants set.
func DefaultCooling() Cooling {
	return Cooling{
		ForcedAirCooling: true,
		TControlFlag:     1,
		DTSuppCl:         7,
		EtaDCNetwork:     0.9,
		EtaDCCOP:         5.5,
		EtaDCCOPAbs:      1,
		EPumps:           0.25,
	}
}

// Ventilation covers mechanical ventilation and infiltration.
type Ventilation struct {
	SupplyRate             float64 // m3/h
	SupplyDifference       float64 // m3/h
	HeatRecoveryEfficiency float64
	ExhaustAirRecirculated float64
	Type                   float64
	FanPower               float64 // W/(L/s)
	FanControlFactor       float64

	VentPreheatDegC float64
	N50             float64
	HZone           float64
	PExp            float64
	ZoneFrac        float64
	StackExp        float64
	StackCoeff      float64
	WindExp         float64
	WindCoeff       float64
	DCp             float64
	VentRateFlag    float64
	HVe             float64

	IntakeRateUnoccupied       float64
	ExhaustRateUnoccupied      float64
	InfiltrationRateUnoccupied float64
}

// DefaultVentilation returns Ventilation with the fallback constants set.
func DefaultVentilation() Ventilation {
	return Ventilation{
		VentPreheatDegC: -50,
		N50:             2,
		HZone:           39,
		PExp:            0.65,
		ZoneFrac:        0.7,
		StackExp:        0.667,
		StackCoeff:      0.0146,
		WindExp:         0.667,
		WindCoeff:       0.0769,
		DCp:             0.75,
		VentRateFlag:    1,
	}
}

// PhysicalQuantities are material constants in MJ/m3K.
type PhysicalQuantities struct {
	RhoCpAir   float64
	RhoCpWater float64
}

// DefaultPhysicalQuantities returns air at 1.22521 kg/m3 and 1.012 kJ/kgK, and water.
func DefaultPhysicalQuantities() PhysicalQuantities {
	return PhysicalQuantities{
		RhoCpAir:   1.22521 * 0.001012,
		RhoCpWater: 4.1813,
	}
}

// SimulationSettings are the hourly model's heat transfer settings.
type SimulationSettings struct {
	PhiIntFractionToAirNode float64
	PhiSolFractionToAirNode float64
	Hci                     float64
	Hri                     float64
}

// DefaultSimulationSettings returns the ISO 13790 defaults.
func DefaultSimulationSettings() SimulationSettings {
	return SimulationSettings{
		PhiIntFractionToAirNode: 0.5,
		PhiSolFractionToAirNode: 0,
		Hci:                     2.5,
		Hri:                     5.5,
	}
}

// components is the full building description shared by both simulation
// models.
type components struct {
	Population         Population
	Location           Location
	Lighting           Lighting
	Building           Building
	Structure          Structure
	Heating            Heating
	Cooling            Cooling
	Ventilation        Ventilation
	PhysicalQuantities PhysicalQuantities
	SimulationSettings SimulationSettings
}

func defaultComponents() components {
	return components{
		Lighting:           DefaultLighting(),
		Structure:          DefaultStructure(),
		Heating:            DefaultHeating(),
		Cooling:            DefaultCooling(),
		Ventilation:        DefaultVentilation(),
		PhysicalQuantities: DefaultPhysicalQuantities(),
		SimulationSettings: DefaultSimulationSettings(),
	}
}

// validate checks what both simulations need from the building. Errors wrap
// ErrInvalidModel.
func (c *components) validate() error {
	if c.Structure.FloorArea <= 0 {
		return fmt.Errorf("%w: floor area must be positive, got %v", ErrInvalidModel, c.Structure.FloorArea)
	}
	for name, s := range c.Structure.surfaces() {
		if len(s) != NumSurfaces {
			return fmt.Errorf("%w: %s has %d values, expected %d", ErrInvalidModel, name, len(s), NumSurfaces)
		}
	}
	if err := c.checkSystemEfficiencies(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return nil
}

func (c components) clone() components {
	out := c
	out.Structure = c.Structure.clone()
	return out
}

func cloneSlice(s []float64) []float64 {
	if s == nil {
		return nil
	}
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
