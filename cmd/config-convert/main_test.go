package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/chrissnell/isomodel/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
simulation:
  mode: hourly
storage:
  sqlite:
    path: /var/lib/isomodel/runs.db
mqtt:
  broker: tcp://localhost:1883
  password: hunter2
`

func writeYAML(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testYAML), 0o644))
	return path
}

func TestConvert(t *testing.T) {
	yamlFile := writeYAML(t)
	sqliteFile := filepath.Join(t.TempDir(), "nested", "config.db")

	var out bytes.Buffer
	require.NoError(t, convert(&out, yamlFile, sqliteFile, false, false))
	assert.Contains(t, out.String(), "[storage.sqlite]")
	assert.Contains(t, out.String(), "password = ********")
	assert.NotContains(t, out.String(), "hunter2")

	p, err := config.NewSQLiteProvider(sqliteFile)
	require.NoError(t, err)
	cfg, err := p.LoadConfig()
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.Equal(t, "hourly", cfg.Simulation.Mode)
	require.NotNil(t, cfg.MQTT)
	assert.Equal(t, "hunter2", cfg.MQTT.Password)

	err = convert(&out, yamlFile, sqliteFile, false, false)
	assert.ErrorContains(t, err, "already exists")
	assert.NoError(t, convert(&out, yamlFile, sqliteFile, true, false))
}

func TestConvertDryRun(t *testing.T) {
	sqliteFile := filepath.Join(t.TempDir(), "config.db")

	var out bytes.Buffer
	require.NoError(t, convert(&out, writeYAML(t), sqliteFile, false, true))
	assert.Contains(t, out.String(), "DRY RUN")
	assert.NoFileExists(t, sqliteFile)
}

func TestConvertMissingYAML(t *testing.T) {
	err := convert(&bytes.Buffer{}, filepath.Join(t.TempDir(), "absent.yaml"), "x.db", false, false)
	assert.ErrorContains(t, err, "does not exist")
}
