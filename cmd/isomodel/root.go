package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chrissnell/isomodel/internal/log"
	"github.com/chrissnell/isomodel/pkg/config"
)

const defaultConfigFile = "config.yaml"

// Environment variables that override secrets from the configuration.
const (
	envMQTTPassword  = "ISOMODEL_MQTT_PASSWORD"
	envInfluxDBToken = "ISOMODEL_INFLUXDB_TOKEN"
)

type globalOptions struct {
	cfgFile    string
	cfgBackend string
	debug      bool
	logFile    string
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	o := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "isomodel [building.ism [defaults.ism]]",
		Short: "Simulate building energy use with the ISO 13790 monthly and hourly methods",
		Long: `isomodel loads a building description (.ism) and its weather file, runs the
ISO 13790 monthly or simple hourly simulation and prints the energy use of
each end use in kWh/m2 as CSV.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, args, g, o)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.cfgFile, "config", "", "Path to configuration source (YAML file or SQLite database; default "+defaultConfigFile+" when one is needed)")
	pf.StringVar(&g.cfgBackend, "config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	pf.BoolVar(&g.debug, "debug", false, "Turn on debugging output")
	pf.StringVar(&g.logFile, "log-file", "", "Also write JSON logs to this file, rotated by size")

	o.addFlags(cmd)

	cmd.AddCommand(newServeCmd(g), newWeatherCmd(), newRunsCmd(g), newVersionCmd())
	return cmd
}

// setup loads .env and initialises logging.
func (g *globalOptions) setup() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("error loading .env: %w", err)
		}
	}
	if err := log.InitWithFile(g.debug, g.logFile); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// provider returns the configured provider. Without --config it returns nil
// unless required, in which case config.yaml is used.
func (g *globalOptions) provider(required bool) (config.ConfigProvider, error) {
	path := g.cfgFile
	if path == "" {
		if !required {
			return nil, nil
		}
		path = defaultConfigFile
	}
	filename, _ := filepath.Abs(path)

	switch g.cfgBackend {
	case "yaml":
		return envOverrides{config.NewYAMLProvider(filename)}, nil
	case "sqlite":
		p, err := config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		return envOverrides{p}, nil
	}
	return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", g.cfgBackend)
}

// loadConfig reads the configuration, or returns an empty one when none was
// given and none is required.
func (g *globalOptions) loadConfig(required bool) (*config.ConfigData, error) {
	p, err := g.provider(required)
	if err != nil {
		return nil, err
	}
	if p == nil {
		cfg := &config.ConfigData{}
		cfg.ApplyDefaults()
		return cfg, nil
	}
	defer p.Close()

	cfg, err := p.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config. Did you pass the --config flag? Run with -h for help: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// envOverrides replaces secrets in the loaded configuration with values from
// the environment.
type envOverrides struct {
	config.ConfigProvider
}

func (e envOverrides) LoadConfig() (*config.ConfigData, error) {
	cfg, err := e.ConfigProvider.LoadConfig()
	if err != nil {
		return nil, err
	}
	if v := os.Getenv(envMQTTPassword); v != "" && cfg.MQTT != nil {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv(envInfluxDBToken); v != "" && cfg.InfluxDB != nil {
		cfg.InfluxDB.Token = v
	}
	return cfg, nil
}

var errNoStore = errors.New("no storage backend configured; add storage.sqlite or storage.timescaledb to the configuration")
