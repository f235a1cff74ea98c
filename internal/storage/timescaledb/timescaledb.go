// Package timescaledb stores simulation runs in TimescaleDB.
package timescaledb

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrissnell/isomodel/internal/database"
	"github.com/chrissnell/isomodel/internal/log"
	"github.com/chrissnell/isomodel/internal/storage"
	"github.com/chrissnell/isomodel/internal/types"
	"gorm.io/gorm"
)

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb`

const createHypertableSQL = `SELECT create_hypertable('isomodel_periods', 'time', if_not_exists => TRUE, migrate_data => TRUE)`

const createEndUseViewSQL = `
CREATE OR REPLACE VIEW isomodel_run_enduses AS
SELECT run_id,
	sum(elec_heat) AS elec_heat, sum(elec_cool) AS elec_cool,
	sum(elec_int_lights) AS elec_int_lights, sum(elec_ext_lights) AS elec_ext_lights,
	sum(elec_fans) AS elec_fans, sum(elec_pump) AS elec_pump,
	sum(elec_equip_int) AS elec_equip_int, sum(elec_equip_ext) AS elec_equip_ext,
	sum(elect_dhw) AS elect_dhw, sum(gas_heat) AS gas_heat, sum(gas_cool) AS gas_cool,
	sum(gas_equip) AS gas_equip, sum(gas_dhw) AS gas_dhw
FROM isomodel_periods
GROUP BY run_id`

// Storage holds the connection to a TimescaleDB run store
type Storage struct {
	TimescaleDBConn *gorm.DB
}

// New connects to TimescaleDB and creates the run schema. A database without
// the timescaledb extension still works, with plain tables.
func New(ctx context.Context, connectionString string) (*Storage, error) {
	conn, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}
	t := &Storage{TimescaleDBConn: conn}

	log.Info("creating TimescaleDB extension...")
	extension := true
	if err := conn.WithContext(ctx).Exec(createExtensionSQL).Error; err != nil {
		log.Warn("warning: could not create TimescaleDB extension, periods will be stored in a plain table: ", err)
		extension = false
	}

	log.Info("migrating run tables...")
	if err := conn.WithContext(ctx).AutoMigrate(&database.RunRecord{}, &database.PeriodRecord{}); err != nil {
		log.Warn("warning: could not migrate run tables")
		return nil, err
	}

	if extension {
		log.Info("creating hypertable...")
		if err := conn.WithContext(ctx).Exec(createHypertableSQL).Error; err != nil {
			log.Warn("warning: could not create hypertable: ", err)
		}
	}

	log.Info("creating end use summary view...")
	if err := conn.WithContext(ctx).Exec(createEndUseViewSQL).Error; err != nil {
		log.Warn("warning: could not create end use summary view")
		return nil, err
	}

	return t, nil
}

// Save stores the run and its periods.
func (t *Storage) Save(ctx context.Context, run *types.Run) error {
	rec := database.NewRunRecord(run)
	if err := t.TimescaleDBConn.WithContext(ctx).Create(rec).Error; err != nil {
		log.Error("could not store run:", err)
		return fmt.Errorf("failed to store run %s: %w", run.ID, err)
	}
	return nil
}

// Get loads a run with its periods in order.
func (t *Storage) Get(ctx context.Context, id string) (*types.Run, error) {
	var rec database.RunRecord
	err := t.TimescaleDBConn.WithContext(ctx).
		Preload("Periods", func(db *gorm.DB) *gorm.DB { return db.Order("period") }).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying database for run %s: %w", id, err)
	}
	return rec.Run(), nil
}

// List returns the newest runs first, without periods.
func (t *Storage) List(ctx context.Context, limit int) ([]*types.Run, error) {
	var recs []database.RunRecord
	if err := t.TimescaleDBConn.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("error querying database for runs: %w", err)
	}
	runs := make([]*types.Run, len(recs))
	for i := range recs {
		runs[i] = recs[i].Run()
	}
	return runs, nil
}

// Ping checks the underlying connection.
func (t *Storage) Ping(ctx context.Context) error {
	db, err := t.TimescaleDBConn.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close closes the underlying connection.
func (t *Storage) Close() error {
	db, err := t.TimescaleDBConn.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

var _ storage.Store = (*Storage)(nil)
