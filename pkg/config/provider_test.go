package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
simulation:
  data-dir: /srv/isomodel/buildings
  defaults-file: /etc/isomodel/defaults.ism
  weather-cache: /var/cache/isomodel/weather.msgpack
storage:
  sqlite:
    path: /var/lib/isomodel/runs.db
mqtt:
  broker: tcp://localhost:1883
  username: isomodel
influxdb:
  url: http://localhost:8086
  org: energy
  bucket: simulations
rest:
  port: 9090
  allowed-origins:
    - https://example.org
`

func TestYAMLProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	p := NewYAMLProvider(path)
	defer p.Close()
	assert.True(t, p.IsReadOnly())

	cfg, err := p.LoadConfig()
	require.NoError(t, err)
	cfg.ApplyDefaults()

	want := &ConfigData{
		Simulation: SimulationData{
			DataDir:          "/srv/isomodel/buildings",
			DefaultsFile:     "/etc/isomodel/defaults.ism",
			WeatherCachePath: "/var/cache/isomodel/weather.msgpack",
			Mode:             DefaultMode,
		},
		Storage: StorageData{SQLite: &SQLiteData{Path: "/var/lib/isomodel/runs.db"}},
		MQTT: &MQTTData{
			Broker:      "tcp://localhost:1883",
			ClientID:    DefaultClientID,
			Username:    "isomodel",
			TopicPrefix: DefaultTopicPrefix,
		},
		InfluxDB: &InfluxDBData{URL: "http://localhost:8086", Org: "energy", Bucket: "simulations"},
		REST: &RESTServerData{
			Port:           9090,
			ListenAddr:     DefaultListenAddr,
			AllowedOrigins: []string{"https://example.org"},
			RunLimit:       DefaultRunLimit,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	storage, err := p.GetStorageConfig()
	require.NoError(t, err)
	assert.Nil(t, storage.TimescaleDB)
}

func TestYAMLProviderMissingFile(t *testing.T) {
	_, err := NewYAMLProvider(filepath.Join(t.TempDir(), "nope.yaml")).LoadConfig()
	assert.Error(t, err)
}

func TestSQLiteProvider(t *testing.T) {
	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	require.NoError(t, err)
	defer p.Close()
	assert.False(t, p.IsReadOnly())

	require.NoError(t, p.SetValue("simulation", "mode", "hourly"))
	require.NoError(t, p.SetValue("storage.timescaledb", "connection-string", "postgres://localhost/isomodel"))
	require.NoError(t, p.SetValue("rest", "port", "8081"))
	require.NoError(t, p.SetValue("rest", "port", "8082"))
	require.NoError(t, p.SetValue("rest", "allowed-origins", "https://a.example, https://b.example"))

	cfg, err := p.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "hourly", cfg.Simulation.Mode)
	require.NotNil(t, cfg.Storage.TimescaleDB)
	assert.Equal(t, "postgres://localhost/isomodel", cfg.Storage.TimescaleDB.ConnectionString)
	assert.Nil(t, cfg.Storage.SQLite)
	assert.Nil(t, cfg.MQTT)
	require.NotNil(t, cfg.REST)
	assert.Equal(t, 8082, cfg.REST.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.REST.AllowedOrigins)

	require.NoError(t, p.DeleteSection("rest"))
	cfg, err = p.LoadConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg.REST)

	require.NoError(t, p.SetValue("rest", "port", "eighty"))
	_, err = p.LoadConfig()
	assert.Error(t, err)
}

func TestApplyDefaultsEmpty(t *testing.T) {
	var cfg ConfigData
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultMode, cfg.Simulation.Mode)
	assert.Equal(t, DefaultDataDir, cfg.Simulation.DataDir)
	assert.Nil(t, cfg.MQTT)
	require.NotNil(t, cfg.REST)
	assert.Equal(t, DefaultPort, cfg.REST.Port)
}

func TestSQLiteImportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	want, err := NewYAMLProvider(path).LoadConfig()
	require.NoError(t, err)

	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.SetValue("stale", "key", "value"))
	require.NoError(t, p.Import(want))

	got, err := p.LoadConfig()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-yaml +sqlite):\n%s", diff)
	}

	sections, err := p.sections()
	require.NoError(t, err)
	assert.NotContains(t, sections, "stale")
}

func TestSections(t *testing.T) {
	cfg := &ConfigData{
		Simulation: SimulationData{Mode: "hourly"},
		REST:       &RESTServerData{Port: 8081, AllowedOrigins: []string{"a", "b"}},
	}
	want := map[string]map[string]string{
		"simulation": {"mode": "hourly"},
		"rest":       {"port": "8081", "allowed-origins": "a,b"},
	}
	if diff := cmp.Diff(want, Sections(cfg)); diff != "" {
		t.Errorf("Sections() mismatch (-want +got):\n%s", diff)
	}
}
