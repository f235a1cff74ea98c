package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetStorageConfig() (*StorageData, error)

	IsReadOnly() bool
	Close() error
}

// Defaults applied by ApplyDefaults.
const (
	DefaultMode        = "monthly"
	DefaultTopicPrefix = "isomodel"
	DefaultClientID    = "isomodel"
	DefaultListenAddr  = "0.0.0.0"
	DefaultPort        = 8080
	DefaultRunLimit    = 50
	DefaultDataDir     = "."
)

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Simulation SimulationData  `json:"simulation"`
	Storage    StorageData     `json:"storage,omitempty"`
	MQTT       *MQTTData       `json:"mqtt,omitempty"`
	InfluxDB   *InfluxDBData   `json:"influxdb,omitempty"`
	REST       *RESTServerData `json:"rest,omitempty"`
}

// SimulationData holds settings for running simulations
type SimulationData struct {
	// DataDir holds the building and defaults files REST requests may name.
	DataDir          string `json:"data_dir,omitempty"`
	DefaultsFile     string `json:"defaults_file,omitempty"`
	WeatherCachePath string `json:"weather_cache_path,omitempty"`
	Mode             string `json:"mode,omitempty"`
}

// StorageData holds the configuration for the run stores. At most one is
// used; SQLite wins when both are set.
type StorageData struct {
	SQLite      *SQLiteData      `json:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

type SQLiteData struct {
	Path string `json:"path"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

type MQTTData struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id,omitempty"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	TopicPrefix string `json:"topic_prefix,omitempty"`
}

type InfluxDBData struct {
	URL    string `json:"url"`
	Token  string `json:"token,omitempty"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

type RESTServerData struct {
	Cert           string   `json:"cert,omitempty"`
	Key            string   `json:"key,omitempty"`
	Port           int      `json:"port,omitempty"`
	ListenAddr     string   `json:"listen_addr,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	RunLimit       int      `json:"run_limit,omitempty"`
}

// ApplyDefaults fills unset values. Sections that are not configured stay nil.
func (c *ConfigData) ApplyDefaults() {
	if c.Simulation.Mode == "" {
		c.Simulation.Mode = DefaultMode
	}
	if c.Simulation.DataDir == "" {
		c.Simulation.DataDir = DefaultDataDir
	}
	if c.MQTT != nil {
		if c.MQTT.TopicPrefix == "" {
			c.MQTT.TopicPrefix = DefaultTopicPrefix
		}
		if c.MQTT.ClientID == "" {
			c.MQTT.ClientID = DefaultClientID
		}
	}
	if c.REST == nil {
		c.REST = &RESTServerData{}
	}
	if c.REST.ListenAddr == "" {
		c.REST.ListenAddr = DefaultListenAddr
	}
	if c.REST.Port == 0 {
		c.REST.Port = DefaultPort
	}
	if c.REST.RunLimit == 0 {
		c.REST.RunLimit = DefaultRunLimit
	}
}
