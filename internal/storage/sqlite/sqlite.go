// Package sqlite stores simulation runs in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/chrissnell/isomodel/internal/log"
	"github.com/chrissnell/isomodel/internal/storage"
	"github.com/chrissnell/isomodel/internal/types"
	"github.com/chrissnell/isomodel/pkg/isomodel"
	"github.com/chrissnell/isomodel/pkg/migrate"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrations returns the run store schema migrations.
func Migrations() *migrate.FSProvider {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		panic(err)
	}
	return migrate.NewFSProvider(sub, "schema_migrations")
}

// endUseColumns are the run_periods value columns in end use order.
var endUseColumns = func() []string {
	cols := make([]string, 0, isomodel.NumEndUses)
	for _, e := range isomodel.AllEndUses() {
		cols = append(cols, strings.ToLower(e.String()))
	}
	return cols
}()

// Store implements storage.Store on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path.
func New(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrate.NewMigrator(db, Migrations(), log.GetSugaredLogger()).MigrateUp(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite schema: %w", err)
	}

	log.Infof("SQLite run store ready at %s", path)
	return &Store{db: db}, nil
}

// Save writes the run and its periods in one transaction.
func (s *Store) Save(ctx context.Context, run *types.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, duration_ns, mode, building, defaults, location, total) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), int64(run.Duration), string(run.Mode),
		run.Building, run.Defaults, run.Location, run.Total)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(endUseColumns)+2), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO run_periods (run_id, period, %s) VALUES (%s)`,
		strings.Join(endUseColumns, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare period insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, 2+len(endUseColumns))
	for i := range run.Results {
		args[0], args[1] = run.ID, i
		for j, v := range run.Results[i] {
			args[2+j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert period %d of run %s: %w", i, run.ID, err)
		}
	}

	return tx.Commit()
}

const selectRunSQL = `SELECT id, created_at, duration_ns, mode, building, defaults, location, total FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*types.Run, error) {
	var (
		r        types.Run
		created  string
		duration int64
		mode     string
	)
	if err := row.Scan(&r.ID, &created, &duration, &mode, &r.Building, &r.Defaults, &r.Location, &r.Total); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("run %s has invalid created_at %q: %w", r.ID, created, err)
	}
	r.CreatedAt = t
	r.Duration = time.Duration(duration)
	r.Mode = types.Mode(mode)
	return &r, nil
}

// Get loads a run with its results.
func (s *Store) Get(ctx context.Context, id string) (*types.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, selectRunSQL+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM run_periods WHERE run_id = ? ORDER BY period`, strings.Join(endUseColumns, ", ")), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods of run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var u isomodel.EndUses
		dest := make([]any, len(u))
		for i := range u {
			dest[i] = &u[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan period of run %s: %w", id, err)
		}
		run.Results = append(run.Results, u)
	}
	return run, rows.Err()
}

// List returns the newest runs first, without results.
func (s *Store) List(ctx context.Context, limit int) ([]*types.Run, error) {
	rows, err := s.db.QueryContext(ctx, selectRunSQL+` ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*types.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ storage.Store = (*Store)(nil)
