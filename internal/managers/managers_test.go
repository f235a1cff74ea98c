package managers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/isomodel/pkg/config"
)

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	_, _, err := NewStore(ctx, config.StorageData{})
	assert.ErrorIs(t, err, ErrNoStore)

	s, name, err := NewStore(ctx, config.StorageData{
		SQLite:      &config.SQLiteData{Path: filepath.Join(t.TempDir(), "runs.db")},
		TimescaleDB: &config.TimescaleDBData{ConnectionString: "postgres://unused"},
	})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "sqlite", name)
	assert.NoError(t, s.Ping(ctx))
}

func TestNewPublishers(t *testing.T) {
	ctx := context.Background()

	pubs, err := NewPublishers(ctx, &config.ConfigData{})
	require.NoError(t, err)
	assert.Empty(t, pubs)

	_, err = NewPublishers(ctx, &config.ConfigData{InfluxDB: &config.InfluxDBData{URL: "http://localhost:8086"}})
	assert.Error(t, err)
}
