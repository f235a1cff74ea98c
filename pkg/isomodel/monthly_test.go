package isomodel

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestScheduleFractionsCoverTheWeek(t *testing.T) {
	tests := []struct {
		name                     string
		dayFirst, dayLast        float64
		hourFirst, hourLast      float64
		wantHoursOcc, wantWkDay  float64
	}{
		{"office", 1, 5, 8, 18, 10, 50.0 / 168},
		{"wrapping hours", 1, 5, 20, 4, 8, 40.0 / 168},
		{"every day", 0, 6, 7, 19, 12, 84.0 / 168},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MonthlyModel{components: defaultComponents()}
			m.Population.DaysStart, m.Population.DaysEnd = tt.dayFirst, tt.dayLast
			m.Population.HoursStart, m.Population.HoursEnd = tt.hourFirst, tt.hourLast

			r := &monthlyRun{MonthlyModel: m}
			r.scheduleAndOccupancy()

			assert.Equal(t, tt.wantHoursOcc, r.hoursOcc)
			assert.InDelta(t, tt.wantWkDay, r.fracWkDay, 1e-12)
			assert.Equal(t, tt.wantHoursOcc, floats.Sum(r.clockOcc))
			assert.Equal(t, 24.0, floats.Sum(r.clockOcc)+floats.Sum(r.clockUnocc))

			for i := range megasecondsInMonth {
				sum := r.msWkDay[i] + r.msWkNt[i] + r.msWkeDay[i] + r.msWkeNt[i]
				assert.InDelta(t, megasecondsInMonth[i], sum, 1e-9)
			}
		})
	}
}

func TestGainUtilization(t *testing.T) {
	assert.InDelta(t, 0.5, gainUtilization(1, 1), 1e-12)
	assert.InDelta(t, 2.0/3, gainUtilization(1, 2), 1e-12)
	// Continuous through gamma == 1.
	assert.InDelta(t, gainUtilization(1, 2), gainUtilization(1+1e-7, 2), 1e-6)
	// Small gain ratios are almost fully used.
	assert.InDelta(t, 1, gainUtilization(0.01, 2), 1e-3)
}

func TestShadingDeviceIndex(t *testing.T) {
	for sdf, want := range map[float64]int{0: 0, 1: 0, 2: 1, 3: 2, 7: 2} {
		assert.Equal(t, want, shadingDeviceIndex(sdf), "sdf %v", sdf)
	}
}

func TestMonthlySimulate(t *testing.T) {
	u := loadFixture(t)
	mm, err := u.ToMonthlyModel()
	require.NoError(t, err)

	results, err := mm.Simulate()
	require.NoError(t, err)
	require.Len(t, results, 12)

	for m, r := range results {
		for _, e := range AllEndUses() {
			v := r.Get(e)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "month %d %s = %v", m+1, e, v)
		}
		assert.Greater(t, r.Get(ElecIntLights), 0.0)
		assert.Greater(t, r.Get(ElecEquipInt), 0.0)
		assert.Greater(t, r.Get(GasDHW), 0.0)
		assert.Equal(t, 0.0, r.Get(ElectDHW))
		assert.Equal(t, 0.0, r.Get(ElecHeat), "gas heated building")
		assert.Equal(t, 0.0, r.Get(ElecEquipExt))
	}

	jan, jul := results[0], results[6]
	assert.Greater(t, jan.Get(GasHeat), jul.Get(GasHeat))
	assert.Greater(t, jul.Get(ElecCool), jan.Get(ElecCool))
	assert.Greater(t, TotalEnergyUse(results), 0.0)

	// Lighting follows days in month.
	assert.InDelta(t, results[0].Get(ElecIntLights)*28/31, results[1].Get(ElecIntLights), 1e-9)
}

// Values for the synthetic weather year, kWh/m2 in EndUse order:
// ElecHeat, ElecCool, ElecIntLights, ElecExtLights, ElecFans, ElecPump,
// ElecEquipInt, ElecEquipExt, ElectDHW, GasHeat, GasCool, GasEquip, GasDHW.
func TestMonthlySimulateFixtureValues(t *testing.T) {
	u := loadFixture(t)
	mm, err := u.ToMonthlyModel()
	require.NoError(t, err)

	results, err := mm.Simulate()
	require.NoError(t, err)

	tests := []struct {
		month int
		want  EndUses
	}{
		{1, EndUses{0, 0.000315, 2.877989, 0.651, 0.481179, 0.301049, 2.816571, 0, 0, 12.716237, 0, 0, 0.548031}},
		{4, EndUses{0, 0.231906, 2.785151, 0.45, 0.068318, 0.032516, 2.725714, 0, 0, 0.257574, 0, 0, 0.530353}},
		{7, EndUses{0, 2.669732, 2.877989, 0.372, 0.645949, 0.304134, 2.816571, 0, 0, 0, 0, 0, 0.548031}},
	}
	for _, tt := range tests {
		assertEndUsesNear(t, tt.want, results[tt.month-1], fmt.Sprintf("month %d", tt.month))
	}
	assert.InDelta(t, 139.283613, TotalEnergyUse(results), 1e-3)
}

func assertEndUsesNear(t *testing.T, want, got EndUses, label string) {
	t.Helper()
	for _, e := range AllEndUses() {
		assert.InDelta(t, want[e], got[e], 1e-3, "%s %s", label, e)
	}
}

func TestMonthlySimulateElectricHeat(t *testing.T) {
	u := loadFixture(t)
	u.Heating.EnergyType = Electric
	u.Heating.HotWaterEnergyType = Electric

	mm, err := u.ToMonthlyModel()
	require.NoError(t, err)
	results, err := mm.Simulate()
	require.NoError(t, err)

	assert.Greater(t, results[0].Get(ElecHeat), 0.0)
	assert.Equal(t, 0.0, results[0].Get(GasHeat))
	assert.Greater(t, results[0].Get(ElectDHW), 0.0)
	assert.Equal(t, 0.0, results[0].Get(GasDHW))
}

func TestMonthlySimulateRepeatable(t *testing.T) {
	u := loadFixture(t)
	mm, err := u.ToMonthlyModel()
	require.NoError(t, err)

	first, err := mm.Simulate()
	require.NoError(t, err)
	second, err := mm.Simulate()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMonthlySimulateInvalid(t *testing.T) {
	mm := &MonthlyModel{components: defaultComponents()}
	_, err := mm.Simulate()
	assert.ErrorIs(t, err, ErrInvalidModel)

	mm.Weather = syntheticWeather(t)
	_, err = mm.Simulate()
	assert.ErrorIs(t, err, ErrInvalidModel)
}
