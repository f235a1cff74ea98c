package config

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/chrissnell/isomodel/pkg/migrate"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func migrations() (*migrate.FSProvider, error) {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.NewFSProvider(sub, "config_migrations"), nil
}

// SQLiteProvider implements ConfigProvider for SQLite database configuration.
// Settings live in a single key/value table keyed by section and key, using
// the same names as the YAML file.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	provider, err := migrations()
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate.NewMigrator(db, provider, nil).MigrateUp(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create config table: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// SetValue stores one setting, replacing any existing value.
func (s *SQLiteProvider) SetValue(section, key, value string) error {
	_, err := s.db.Exec(`INSERT INTO config (section, key, value) VALUES (?, ?, ?)
		ON CONFLICT(section, key) DO UPDATE SET value = excluded.value`, section, key, value)
	if err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", section, key, err)
	}
	return nil
}

// DeleteSection removes every setting of a section.
func (s *SQLiteProvider) DeleteSection(section string) error {
	if _, err := s.db.Exec(`DELETE FROM config WHERE section = ?`, section); err != nil {
		return fmt.Errorf("failed to delete section %s: %w", section, err)
	}
	return nil
}

// Import replaces the stored configuration with cfg.
func (s *SQLiteProvider) Import(cfg *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM config`); err != nil {
		return fmt.Errorf("failed to clear config: %w", err)
	}

	for section, values := range Sections(cfg) {
		for key, value := range values {
			if _, err := tx.Exec(`INSERT INTO config (section, key, value) VALUES (?, ?, ?)`, section, key, value); err != nil {
				return fmt.Errorf("failed to set %s.%s: %w", section, key, err)
			}
		}
	}

	return tx.Commit()
}

// Sections flattens cfg into the section/key layout used by the config
// table. Empty values are left out.
func Sections(cfg *ConfigData) map[string]map[string]string {
	out := make(map[string]map[string]string)
	set := func(section, key, value string) {
		if value == "" {
			return
		}
		if out[section] == nil {
			out[section] = make(map[string]string)
		}
		out[section][key] = value
	}
	itoa := func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}

	set("simulation", "data-dir", cfg.Simulation.DataDir)
	set("simulation", "defaults-file", cfg.Simulation.DefaultsFile)
	set("simulation", "weather-cache", cfg.Simulation.WeatherCachePath)
	set("simulation", "mode", cfg.Simulation.Mode)

	if cfg.Storage.SQLite != nil {
		set("storage.sqlite", "path", cfg.Storage.SQLite.Path)
	}
	if cfg.Storage.TimescaleDB != nil {
		set("storage.timescaledb", "connection-string", cfg.Storage.TimescaleDB.ConnectionString)
	}

	if m := cfg.MQTT; m != nil {
		set("mqtt", "broker", m.Broker)
		set("mqtt", "client-id", m.ClientID)
		set("mqtt", "username", m.Username)
		set("mqtt", "password", m.Password)
		set("mqtt", "topic-prefix", m.TopicPrefix)
	}

	if i := cfg.InfluxDB; i != nil {
		set("influxdb", "url", i.URL)
		set("influxdb", "token", i.Token)
		set("influxdb", "org", i.Org)
		set("influxdb", "bucket", i.Bucket)
	}

	if r := cfg.REST; r != nil {
		set("rest", "cert", r.Cert)
		set("rest", "key", r.Key)
		set("rest", "listen-addr", r.ListenAddr)
		set("rest", "port", itoa(r.Port))
		set("rest", "run-limit", itoa(r.RunLimit))
		set("rest", "allowed-origins", strings.Join(r.AllowedOrigins, ","))
	}

	return out
}

func (s *SQLiteProvider) sections() (map[string]map[string]string, error) {
	rows, err := s.db.Query(`SELECT section, key, value FROM config ORDER BY section, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query config: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[string]string)
	for rows.Next() {
		var section, key, value string
		if err := rows.Scan(&section, &key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan config row: %w", err)
		}
		if out[section] == nil {
			out[section] = make(map[string]string)
		}
		out[section][key] = value
	}
	return out, rows.Err()
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	sections, err := s.sections()
	if err != nil {
		return nil, err
	}

	config := &ConfigData{}

	if sim, ok := sections["simulation"]; ok {
		config.Simulation = SimulationData{
			DataDir:          sim["data-dir"],
			DefaultsFile:     sim["defaults-file"],
			WeatherCachePath: sim["weather-cache"],
			Mode:             sim["mode"],
		}
	}

	config.Storage = storageFromSections(sections)

	if m, ok := sections["mqtt"]; ok {
		config.MQTT = &MQTTData{
			Broker:      m["broker"],
			ClientID:    m["client-id"],
			Username:    m["username"],
			Password:    m["password"],
			TopicPrefix: m["topic-prefix"],
		}
	}

	if i, ok := sections["influxdb"]; ok {
		config.InfluxDB = &InfluxDBData{
			URL:    i["url"],
			Token:  i["token"],
			Org:    i["org"],
			Bucket: i["bucket"],
		}
	}

	if r, ok := sections["rest"]; ok {
		config.REST = &RESTServerData{
			Cert:       r["cert"],
			Key:        r["key"],
			ListenAddr: r["listen-addr"],
		}
		if config.REST.Port, err = atoiOrZero(r["port"]); err != nil {
			return nil, fmt.Errorf("invalid rest.port: %w", err)
		}
		if config.REST.RunLimit, err = atoiOrZero(r["run-limit"]); err != nil {
			return nil, fmt.Errorf("invalid rest.run-limit: %w", err)
		}
		if origins := r["allowed-origins"]; origins != "" {
			for _, o := range strings.Split(origins, ",") {
				config.REST.AllowedOrigins = append(config.REST.AllowedOrigins, strings.TrimSpace(o))
			}
		}
	}

	return config, nil
}

// GetStorageConfig returns storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	sections, err := s.sections()
	if err != nil {
		return nil, err
	}
	storage := storageFromSections(sections)
	return &storage, nil
}

func storageFromSections(sections map[string]map[string]string) StorageData {
	var storage StorageData
	if v, ok := sections["storage.sqlite"]; ok {
		storage.SQLite = &SQLiteData{Path: v["path"]}
	}
	if v, ok := sections["storage.timescaledb"]; ok {
		storage.TimescaleDB = &TimescaleDBData{ConnectionString: v["connection-string"]}
	}
	return storage
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// IsReadOnly returns false since SQLite supports writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
