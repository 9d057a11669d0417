package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// DefaultAllowedOrigins covers the Angular dev server the REST API was built for
var DefaultAllowedOrigins = []string{
	"http://localhost:4200",
	"http://127.0.0.1:4200",
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.backend", BackendSQLite)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("database.mongo_uri", DefaultMongoURI)
	v.SetDefault("database.mongo_database", DefaultMongoDatabase)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", DefaultAllowedOrigins)
	v.SetDefault("server.legacy_errors", false)
	v.SetDefault("server.ws_messages_per_second", 20)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)

	v.SetDefault("explore.starting_actor", DefaultStartingActor)
	v.SetDefault("explore.expand_limit", DefaultExpandLimit)
	v.SetDefault("explore.max_selected", DefaultMaxSelected)
	v.SetDefault("explore.fetch_concurrency", DefaultFetchConcurrency)
	v.SetDefault("explore.proxy_url", "")
	v.SetDefault("explore.color_data", DefaultColorData)
	v.SetDefault("explore.color_scheme", DefaultColorScheme)
}

// BindSensitiveEnvVars binds values commonly injected by deployment tooling
// under names that do not follow the ACTORGRAPH_ prefix.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("database.mongo_uri", "ACTORGRAPH_DATABASE_MONGO_URI", "MONGODB_URI")
	v.BindEnv("database.path", "ACTORGRAPH_DATABASE_PATH", "DB_PATH")
	v.BindEnv("server.port", "ACTORGRAPH_SERVER_PORT", "PORT")
}

// GetServerAllowedOrigins returns the allowed CORS origins
func (c *Config) GetServerAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return DefaultAllowedOrigins
	}
	return c.Server.AllowedOrigins
}

// GetServerPort returns server.port or DefaultServerPort
func (c *Config) GetServerPort() int {
	if c.Server.Port == 0 {
		return DefaultServerPort
	}
	return c.Server.Port
}

// GetExpandLimit returns explore.expand_limit, falling back to 5
func (c *Config) GetExpandLimit() int {
	if c.Explore.ExpandLimit <= 0 {
		return DefaultExpandLimit
	}
	return c.Explore.ExpandLimit
}

// GetMaxSelected returns explore.max_selected, falling back to 3
func (c *Config) GetMaxSelected() int {
	if c.Explore.MaxSelected <= 0 {
		return DefaultMaxSelected
	}
	return c.Explore.MaxSelected
}

// GetFetchConcurrency returns explore.fetch_concurrency, falling back to 5
func (c *Config) GetFetchConcurrency() int {
	if c.Explore.FetchConcurrency <= 0 {
		return DefaultFetchConcurrency
	}
	return c.Explore.FetchConcurrency
}

// GetStartingActor returns the actor every session opens with
func (c *Config) GetStartingActor() string {
	if c.Explore.StartingActor == "" {
		return DefaultStartingActor
	}
	return c.Explore.StartingActor
}

// GetDatabasePath returns the configured SQLite path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: {%s %s}, Server: {Port: %d}, Explore: {Start: %q, Expand: %d}}",
		c.Database.Backend, c.GetDatabasePath(), c.GetServerPort(), c.GetStartingActor(), c.GetExpandLimit())
}
