package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at a fresh temp dir so no
// real config file leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	Reset()
	t.Cleanup(Reset)
	return dir
}

// writeFile writes a config file, creating its parent directories
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), DefaultFilePermissions))
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Database.Backend)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, "ActorExplorer", cfg.Database.MongoDatabase)
	assert.Equal(t, 4201, cfg.Server.Port)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:4200")
	assert.False(t, cfg.Server.LegacyErrors)
	assert.Equal(t, "Zac Efron", cfg.Explore.StartingActor)
	assert.Equal(t, 5, cfg.Explore.ExpandLimit)
	assert.Equal(t, 3, cfg.Explore.MaxSelected)
	assert.Equal(t, "viridis", cfg.Explore.ColorScheme)
	assert.NoError(t, cfg.Validate())
}

func TestGetters_FallBackOnZero(t *testing.T) {
	var cfg Config
	assert.Equal(t, DefaultServerPort, cfg.GetServerPort())
	assert.Equal(t, DefaultExpandLimit, cfg.GetExpandLimit())
	assert.Equal(t, DefaultMaxSelected, cfg.GetMaxSelected())
	assert.Equal(t, DefaultFetchConcurrency, cfg.GetFetchConcurrency())
	assert.Equal(t, DefaultStartingActor, cfg.GetStartingActor())
	assert.Equal(t, DefaultDatabasePath, cfg.GetDatabasePath())
	assert.Equal(t, DefaultAllowedOrigins, cfg.GetServerAllowedOrigins())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "empty config is valid", mutate: func(c *Config) {}},
		{name: "mongo backend with uri", mutate: func(c *Config) {
			c.Database.Backend = BackendMongo
			c.Database.MongoURI = "mongodb://localhost:27017"
		}},
		{name: "mongo backend without uri", mutate: func(c *Config) {
			c.Database.Backend = BackendMongo
		}, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Database.Backend = "postgres" }, wantErr: true},
		{name: "negative port", mutate: func(c *Config) { c.Server.Port = -1 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.Server.WSMessagesPerSecond = -1 }, wantErr: true},
		{name: "zero expand limit uses default", mutate: func(c *Config) { c.Explore.ExpandLimit = 0 }},
		{name: "negative expand limit", mutate: func(c *Config) { c.Explore.ExpandLimit = -2 }, wantErr: true},
		{name: "relative proxy url", mutate: func(c *Config) { c.Explore.ProxyURL = "localhost:4201" }, wantErr: true},
		{name: "absolute proxy url", mutate: func(c *Config) { c.Explore.ProxyURL = "http://localhost:4201" }},
		{name: "unknown color data", mutate: func(c *Config) { c.Explore.ColorData = "budget" }, wantErr: true},
		{name: "unknown color scheme", mutate: func(c *Config) { c.Explore.ColorScheme = "rainbow" }, wantErr: true},
		{name: "heatmap scheme", mutate: func(c *Config) { c.Explore.ColorScheme = "heatmap" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, `
[server]
port = 9000
legacy_errors = true

[explore]
starting_actor = "Emma Stone"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Server.LegacyErrors)
	assert.Equal(t, "Emma Stone", cfg.Explore.StartingActor)
	// untouched keys keep their defaults
	assert.Equal(t, 5, cfg.Explore.ExpandLimit)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_ProjectConfigAndEnvPrecedence(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "actorgraph.toml"), `
[server]
port = 5000

[explore]
expand_limit = 8
`)
	t.Setenv("ACTORGRAPH_EXPLORE_EXPAND_LIMIT", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Explore.ExpandLimit, "environment wins over project file")

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, again, "Load caches until Reset")
}

func TestFindProjectConfig_WalksUp(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "am.toml"), "")
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, DefaultDirPermissions))
	t.Chdir(nested)

	found := FindProjectConfig()
	assert.Equal(t, "am.toml", filepath.Base(found))
}

func TestIntrospect_ReportsSources(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "actorgraph.toml"), "[database]\npath = \"movies.db\"\n")
	t.Setenv("ACTORGRAPH_SERVER_PORT", "6000")

	settings := Introspect(GetViper())
	byKey := map[string]SettingInfo{}
	for _, s := range settings {
		byKey[s.Key] = s
	}

	assert.Equal(t, SourceProject, byKey["database.path"].Source)
	assert.Equal(t, SourceEnvironment, byKey["server.port"].Source)
	assert.Equal(t, "ACTORGRAPH_SERVER_PORT", byKey["server.port"].SourcePath)
	assert.Equal(t, SourceDefault, byKey["explore.starting_actor"].Source)
}

func TestSetValueInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "am.toml")

	require.NoError(t, SetValueInFile(path, "explore.expand_limit", int64(7)))
	require.NoError(t, SetValueInFile(path, "server.legacy_errors", true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg Config
	require.NoError(t, toml.Unmarshal(data, &cfg))
	assert.Equal(t, 7, cfg.Explore.ExpandLimit)
	assert.True(t, cfg.Server.LegacyErrors)

	// second write rotated the first version into .back1
	_, err = os.Stat(path + ".back1")
	assert.NoError(t, err)
}

func TestSetValueInFile_RotatesThreeBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, SetValueInFile(path, "explore.expand_limit", i))
	}
	for _, suffix := range []string{".back1", ".back2", ".back3"} {
		_, err := os.Stat(path + suffix)
		assert.NoError(t, err, suffix)
	}
	_, err := os.Stat(path + ".back4")
	assert.True(t, os.IsNotExist(err))
}

func TestSetValueInFile_RejectsWrongType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	err := SetValueInFile(path, "explore.expand_limit", "lots")
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing written on error")
}

func TestSetValueInFile_InvalidKey(t *testing.T) {
	err := SetValueInFile(filepath.Join(t.TempDir(), "am.toml"), "explore..limit", int64(1))
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(5), ParseValue("5"))
	assert.Equal(t, 2.5, ParseValue("2.5"))
	assert.Equal(t, true, ParseValue("true"))
	assert.Equal(t, "Zac Efron", ParseValue("Zac Efron"))
}

func TestIsBackupFile(t *testing.T) {
	assert.True(t, isBackupFile("/x/am.toml.back1"))
	assert.True(t, isBackupFile("actorgraph.toml.back3"))
	assert.False(t, isBackupFile("/x/am.toml"))
}

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "actorgraph.toml")
	writeFile(t, path, "[explore]\nexpand_limit = 5\n")

	w, err := NewConfigWatcher(path)
	require.NoError(t, err)
	w.debouncePeriod = 10 * time.Millisecond
	defer w.Stop()

	reloaded := make(chan int, 16)
	w.OnReload(func(c *Config) error {
		select {
		case reloaded <- c.Explore.ExpandLimit:
		default:
		}
		return nil
	})
	w.Start()

	writeFile(t, path, "[explore]\nexpand_limit = 9\n")

	// an editor-style truncate+write can surface an intermediate reload
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-reloaded:
			if got == 9 {
				return
			}
		case <-deadline:
			t.Fatal("watcher did not reload")
		}
	}
}

func TestConfigWatcher_SkipsOwnWrite(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "actorgraph.toml")
	writeFile(t, path, "")

	w, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer w.Stop()

	w.MarkOwnWrite()
	assert.True(t, w.consumeOwnWrite())
	assert.False(t, w.consumeOwnWrite())
}
