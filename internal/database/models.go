package database

import (
	"time"

	"github.com/chrissnell/isomodel/internal/types"
	"github.com/chrissnell/isomodel/pkg/isomodel"
)

// RunRecord is one simulation run.
type RunRecord struct {
	ID         string         `gorm:"primaryKey;column:id"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null;index"`
	DurationNS int64          `gorm:"column:duration_ns;not null"`
	Mode       string         `gorm:"column:mode;not null"`
	Building   string         `gorm:"column:building;not null"`
	Defaults   string         `gorm:"column:defaults"`
	Location   string         `gorm:"column:location"`
	Total      float64        `gorm:"column:total"`
	Periods    []PeriodRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for RunRecord
func (RunRecord) TableName() string {
	return "isomodel_runs"
}

// PeriodRecord holds the end uses of one month or hour of a run. Time is the
// period start and is the hypertable partitioning column.
type PeriodRecord struct {
	RunID         string    `gorm:"primaryKey;column:run_id"`
	Period        int       `gorm:"primaryKey;column:period"`
	Time          time.Time `gorm:"primaryKey;column:time;not null"`
	ElecHeat      float64   `gorm:"column:elec_heat"`
	ElecCool      float64   `gorm:"column:elec_cool"`
	ElecIntLights float64   `gorm:"column:elec_int_lights"`
	ElecExtLights float64   `gorm:"column:elec_ext_lights"`
	ElecFans      float64   `gorm:"column:elec_fans"`
	ElecPump      float64   `gorm:"column:elec_pump"`
	ElecEquipInt  float64   `gorm:"column:elec_equip_int"`
	ElecEquipExt  float64   `gorm:"column:elec_equip_ext"`
	ElectDHW      float64   `gorm:"column:elect_dhw"`
	GasHeat       float64   `gorm:"column:gas_heat"`
	GasCool       float64   `gorm:"column:gas_cool"`
	GasEquip      float64   `gorm:"column:gas_equip"`
	GasDHW        float64   `gorm:"column:gas_dhw"`
}

// TableName specifies the table name for PeriodRecord
func (PeriodRecord) TableName() string {
	return "isomodel_periods"
}

// EndUses returns the period's values in end use order.
func (p *PeriodRecord) EndUses() isomodel.EndUses {
	return isomodel.EndUses{
		p.ElecHeat, p.ElecCool, p.ElecIntLights, p.ElecExtLights, p.ElecFans, p.ElecPump,
		p.ElecEquipInt, p.ElecEquipExt, p.ElectDHW, p.GasHeat, p.GasCool, p.GasEquip, p.GasDHW,
	}
}

// NewRunRecord converts a run into its database rows.
func NewRunRecord(r *types.Run) *RunRecord {
	rec := &RunRecord{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		DurationNS: int64(r.Duration),
		Mode:       string(r.Mode),
		Building:   r.Building,
		Defaults:   r.Defaults,
		Location:   r.Location,
		Total:      r.Total,
		Periods:    make([]PeriodRecord, len(r.Results)),
	}
	for i, u := range r.Results {
		rec.Periods[i] = PeriodRecord{
			RunID:         r.ID,
			Period:        i,
			Time:          r.PeriodStart(i),
			ElecHeat:      u[isomodel.ElecHeat],
			ElecCool:      u[isomodel.ElecCool],
			ElecIntLights: u[isomodel.ElecIntLights],
			ElecExtLights: u[isomodel.ElecExtLights],
			ElecFans:      u[isomodel.ElecFans],
			ElecPump:      u[isomodel.ElecPump],
			ElecEquipInt:  u[isomodel.ElecEquipInt],
			ElecEquipExt:  u[isomodel.ElecEquipExt],
			ElectDHW:      u[isomodel.ElectDHW],
			GasHeat:       u[isomodel.GasHeat],
			GasCool:       u[isomodel.GasCool],
			GasEquip:      u[isomodel.GasEquip],
			GasDHW:        u[isomodel.GasDHW],
		}
	}
	return rec
}

// Run converts the record back. Results are filled only when Periods was
// preloaded.
func (rec *RunRecord) Run() *types.Run {
	r := &types.Run{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		Duration:  time.Duration(rec.DurationNS),
		Mode:      types.Mode(rec.Mode),
		Building:  rec.Building,
		Defaults:  rec.Defaults,
		Location:  rec.Location,
		Total:     rec.Total,
	}
	for i := range rec.Periods {
		r.Results = append(r.Results, rec.Periods[i].EndUses())
	}
	return r
}
