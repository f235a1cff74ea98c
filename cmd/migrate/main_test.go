package main

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/chrissnell/isomodel/internal/storage/sqlite"
	"github.com/chrissnell/isomodel/pkg/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestRunCommands(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	m := migrate.NewMigrator(db, sqlite.Migrations(), nil)

	var out bytes.Buffer
	require.NoError(t, run(ctx, &out, m, "status", ""))
	assert.Contains(t, out.String(), "Current version: 0")
	assert.Contains(t, out.String(), "1: create runs")
	assert.Contains(t, out.String(), "2: create run periods")

	out.Reset()
	require.NoError(t, run(ctx, &out, m, "up", ""))
	out.Reset()
	require.NoError(t, run(ctx, &out, m, "version", ""))
	assert.Equal(t, "Current version: 2\n", out.String())

	require.NoError(t, run(ctx, &out, m, "down", "1"))
	out.Reset()
	require.NoError(t, run(ctx, &out, m, "version", ""))
	assert.Equal(t, "Current version: 1\n", out.String())

	tests := []struct {
		command, target, wantErr string
	}{
		{"down", "", "-target flag is required"},
		{"to", "two", "invalid target version"},
		{"sideways", "", "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.ErrorContains(t, run(ctx, &out, m, tt.command, tt.target), tt.wantErr)
		})
	}
}
