package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"001_create_widgets.up.sql":   {Data: []byte(`CREATE TABLE widgets (id INTEGER PRIMARY KEY)`)},
		"001_create_widgets.down.sql": {Data: []byte(`DROP TABLE widgets`)},
		"002_add_name.up.sql":         {Data: []byte(`ALTER TABLE widgets ADD COLUMN name TEXT`)},
		"002_add_name.down.sql":       {Data: []byte(`ALTER TABLE widgets DROP COLUMN name`)},
		"README.md":                   {Data: []byte("not a migration")},
	}
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMigrations(t *testing.T) {
	migrations, err := NewFSProvider(testFS(), "").GetMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "create widgets", migrations[0].Name)
	assert.Contains(t, migrations[1].Down, "DROP COLUMN")

	fsys := testFS()
	delete(fsys, "002_add_name.up.sql")
	_, err = NewFSProvider(fsys, "").GetMigrations()
	assert.ErrorContains(t, err, "no up script")
}

func TestMigrateUpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	m := NewMigrator(db, NewFSProvider(testFS(), "widget_migrations"), nil)

	pending, err := m.GetPendingMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, m.MigrateUp(ctx))
	v, err := m.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = db.Exec(`INSERT INTO widgets (id, name) VALUES (1, 'gear')`)
	require.NoError(t, err)

	// Running again is a no-op.
	require.NoError(t, m.MigrateUp(ctx))

	require.NoError(t, m.MigrateTo(ctx, 1))
	v, err = m.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	_, err = db.Exec(`INSERT INTO widgets (id, name) VALUES (2, 'cog')`)
	assert.Error(t, err, "name column should be gone")

	require.NoError(t, m.MigrateDown(ctx, 0))
	v, err = m.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	assert.Error(t, m.MigrateDown(ctx, 0))
}

func TestFailedMigrationRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	fsys := testFS()
	fsys["003_broken.up.sql"] = &fstest.MapFile{Data: []byte(`CREATE TABLE oops (`)}
	m := NewMigrator(db, NewFSProvider(fsys, ""), nil)

	require.Error(t, m.MigrateUp(ctx))
	v, err := m.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}
