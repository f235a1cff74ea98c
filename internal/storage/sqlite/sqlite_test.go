package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/isomodel/internal/storage"
	"github.com/chrissnell/isomodel/internal/types"
	"github.com/chrissnell/isomodel/pkg/isomodel"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun(id string, created time.Time) *types.Run {
	results := make([]isomodel.EndUses, 12)
	for i := range results {
		results[i].Set(isomodel.ElecCool, float64(i)/4)
		results[i].Set(isomodel.GasHeat, 12-float64(i))
	}
	return &types.Run{
		ID:        id,
		CreatedAt: created,
		Duration:  1500 * time.Millisecond,
		Mode:      types.ModeMonthly,
		Building:  "/data/office.ism",
		Defaults:  "/data/defaults.ism",
		Location:  "Chicago Ohare",
		Results:   results,
		Total:     isomodel.TotalEnergyUse(results),
	}
}

func TestSaveGetList(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(ctx))

	base := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
	older := testRun("older", base)
	newer := testRun("newer", base.Add(time.Hour))
	require.NoError(t, s.Save(ctx, older))
	require.NoError(t, s.Save(ctx, newer))

	got, err := s.Get(ctx, "older")
	require.NoError(t, err)
	if diff := cmp.Diff(older, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}

	runs, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "newer", runs[0].ID)
	assert.Nil(t, runs[0].Results)

	runs, err = s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "absent")
	assert.ErrorIs(t, err, storage.ErrRunNotFound)
}

func TestSaveDuplicateRollsBack(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer s.Close()

	run := testRun("dup", time.Now().UTC())
	require.NoError(t, s.Save(ctx, run))
	assert.Error(t, s.Save(ctx, run))

	got, err := s.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, got.Results, 12)
}

func TestReopenKeepsSchemaVersion(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, testRun("a", time.Now())))
	require.NoError(t, s.Close())

	s, err = New(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	migrations, err := Migrations().GetMigrations()
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].Version, version)

	_, err = s.Get(ctx, "a")
	assert.NoError(t, err)
}
