package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig ConfigYAML
	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	config := &ConfigData{
		Simulation: SimulationData{
			DataDir:          yamlConfig.Simulation.DataDir,
			DefaultsFile:     yamlConfig.Simulation.DefaultsFile,
			WeatherCachePath: yamlConfig.Simulation.WeatherCachePath,
			Mode:             yamlConfig.Simulation.Mode,
		},
	}

	if yamlConfig.Storage.SQLite != nil {
		config.Storage.SQLite = &SQLiteData{
			Path: yamlConfig.Storage.SQLite.Path,
		}
	}
	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}

	if yamlConfig.MQTT != nil {
		config.MQTT = &MQTTData{
			Broker:      yamlConfig.MQTT.Broker,
			ClientID:    yamlConfig.MQTT.ClientID,
			Username:    yamlConfig.MQTT.Username,
			Password:    yamlConfig.MQTT.Password,
			TopicPrefix: yamlConfig.MQTT.TopicPrefix,
		}
	}

	if yamlConfig.InfluxDB != nil {
		config.InfluxDB = &InfluxDBData{
			URL:    yamlConfig.InfluxDB.URL,
			Token:  yamlConfig.InfluxDB.Token,
			Org:    yamlConfig.InfluxDB.Org,
			Bucket: yamlConfig.InfluxDB.Bucket,
		}
	}

	if yamlConfig.REST != nil {
		config.REST = &RESTServerData{
			Cert:           yamlConfig.REST.Cert,
			Key:            yamlConfig.REST.Key,
			Port:           yamlConfig.REST.Port,
			ListenAddr:     yamlConfig.REST.ListenAddr,
			AllowedOrigins: yamlConfig.REST.AllowedOrigins,
			RunLimit:       yamlConfig.REST.RunLimit,
		}
	}

	y.config = config
	return config, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the file format
type ConfigYAML struct {
	Simulation SimulationYAML  `yaml:"simulation,omitempty"`
	Storage    StorageYAML     `yaml:"storage,omitempty"`
	MQTT       *MQTTYAML       `yaml:"mqtt,omitempty"`
	InfluxDB   *InfluxDBYAML   `yaml:"influxdb,omitempty"`
	REST       *RESTServerYAML `yaml:"rest,omitempty"`
}

type SimulationYAML struct {
	DataDir          string `yaml:"data-dir,omitempty"`
	DefaultsFile     string `yaml:"defaults-file,omitempty"`
	WeatherCachePath string `yaml:"weather-cache,omitempty"`
	Mode             string `yaml:"mode,omitempty"`
}

type StorageYAML struct {
	SQLite      *SQLiteYAML      `yaml:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBYAML `yaml:"timescaledb,omitempty"`
}

type SQLiteYAML struct {
	Path string `yaml:"path"`
}

type TimescaleDBYAML struct {
	ConnectionString string `yaml:"connection-string"`
}

type MQTTYAML struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client-id,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic-prefix,omitempty"`
}

type InfluxDBYAML struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token,omitempty"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

type RESTServerYAML struct {
	Cert           string   `yaml:"cert,omitempty"`
	Key            string   `yaml:"key,omitempty"`
	Port           int      `yaml:"port,omitempty"`
	ListenAddr     string   `yaml:"listen-addr,omitempty"`
	AllowedOrigins []string `yaml:"allowed-origins,omitempty"`
	RunLimit       int      `yaml:"run-limit,omitempty"`
}
