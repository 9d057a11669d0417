// Package am ("as configured") loads actorgraph configuration from TOML files
// and ACTORGRAPH_* environment variables.
package am

// Config represents the actorgraph configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database" json:"database" yaml:"database" toml:"database"`
	Server   ServerConfig   `mapstructure:"server" json:"server" yaml:"server" toml:"server"`
	Explore  ExploreConfig  `mapstructure:"explore" json:"explore" yaml:"explore" toml:"explore"`
}

// DatabaseConfig selects and configures the actor/movie store
type DatabaseConfig struct {
	Backend       string `mapstructure:"backend" json:"backend" yaml:"backend" toml:"backend"` // sqlite or mongo
	Path          string `mapstructure:"path" json:"path" yaml:"path" toml:"path"`             // SQLite file
	MongoURI      string `mapstructure:"mongo_uri" json:"mongo_uri" yaml:"mongo_uri" toml:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database" json:"mongo_database" yaml:"mongo_database" toml:"mongo_database"`
}

// ServerConfig configures the proxy HTTP server and websocket sessions
type ServerConfig struct {
	Port                int      `mapstructure:"port" json:"port" yaml:"port" toml:"port"`
	AllowedOrigins      []string `mapstructure:"allowed_origins" json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	LegacyErrors        bool     `mapstructure:"legacy_errors" json:"legacy_errors" yaml:"legacy_errors" toml:"legacy_errors"` // answer 200 with an error body
	WSMessagesPerSecond float64  `mapstructure:"ws_messages_per_second" json:"ws_messages_per_second" yaml:"ws_messages_per_second" toml:"ws_messages_per_second"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" json:"read_timeout_seconds" yaml:"read_timeout_seconds" toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" json:"write_timeout_seconds" yaml:"write_timeout_seconds" toml:"write_timeout_seconds"`
}

// ExploreConfig configures exploration sessions
type ExploreConfig struct {
	StartingActor    string `mapstructure:"starting_actor" json:"starting_actor" yaml:"starting_actor" toml:"starting_actor"`
	ExpandLimit      int    `mapstructure:"expand_limit" json:"expand_limit" yaml:"expand_limit" toml:"expand_limit"`
	MaxSelected      int    `mapstructure:"max_selected" json:"max_selected" yaml:"max_selected" toml:"max_selected"`
	FetchConcurrency int    `mapstructure:"fetch_concurrency" json:"fetch_concurrency" yaml:"fetch_concurrency" toml:"fetch_concurrency"`
	ProxyURL         string `mapstructure:"proxy_url" json:"proxy_url" yaml:"proxy_url" toml:"proxy_url"` // empty = in-process store
	ColorData        string `mapstructure:"color_data" json:"color_data" yaml:"color_data" toml:"color_data"`
	ColorScheme      string `mapstructure:"color_scheme" json:"color_scheme" yaml:"color_scheme" toml:"color_scheme"`
}

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Defaults
const (
	DefaultServerPort       = 4201
	DefaultDatabasePath     = "actorgraph.db"
	DefaultMongoURI         = "mongodb://localhost:27017"
	DefaultMongoDatabase    = "ActorExplorer"
	DefaultStartingActor    = "Zac Efron"
	DefaultExpandLimit      = 5
	DefaultMaxSelected      = 3
	DefaultFetchConcurrency = 5
	DefaultColorData        = "revenueTotal"
	DefaultColorScheme      = "viridis"
)

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
