package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// configHome points HOME and the working directory at fresh temp dirs and
// returns them. Global config state is reset around the test.
func configHome(t *testing.T) (home, project string) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)

	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)
	return home, project
}

func settingFor(t *testing.T, key string) SettingInfo {
	t.Helper()
	for _, s := range Introspect(GetViper()) {
		if s.Key == key {
			return s
		}
	}
	t.Fatalf("setting %q not found", key)
	return SettingInfo{}
}

// TestSourceTrackingIntegration checks that loading records which layer
// provided every setting, through the whole load -> introspection flow
func TestSourceTrackingIntegration(t *testing.T) {
	t.Run("project file wins over user file", func(t *testing.T) {
		home, _ := configHome(t)

		writeFile(t, filepath.Join(home, ".actorgraph", "am.toml"), `
[database]
path = "user.db"

[explore]
expand_limit = 7
`)
		writeFile(t, "actorgraph.toml", `
[database]
path = "project.db"
`)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "project.db", cfg.Database.Path)
		assert.Equal(t, 7, cfg.Explore.ExpandLimit)

		dbPath := settingFor(t, "database.path")
		assert.Equal(t, SourceProject, dbPath.Source)
		assert.Equal(t, "actorgraph.toml", filepath.Base(dbPath.SourcePath))

		expand := settingFor(t, "explore.expand_limit")
		assert.Equal(t, SourceUser, expand.Source)
		assert.Equal(t, filepath.Join(home, ".actorgraph", "am.toml"), expand.SourcePath)
	})

	t.Run("environment wins over files", func(t *testing.T) {
		_, _ = configHome(t)
		writeFile(t, "actorgraph.toml", `
[database]
path = "project.db"
`)
		t.Setenv("ACTORGRAPH_DATABASE_PATH", "env.db")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "env.db", cfg.Database.Path)

		dbPath := settingFor(t, "database.path")
		assert.Equal(t, SourceEnvironment, dbPath.Source)
		assert.Equal(t, "ACTORGRAPH_DATABASE_PATH", dbPath.SourcePath)
		assert.Equal(t, "env.db", dbPath.Value)
	})

	t.Run("untouched keys report defaults", func(t *testing.T) {
		_, _ = configHome(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DefaultServerPort, cfg.Server.Port)

		port := settingFor(t, "server.port")
		assert.Equal(t, SourceDefault, port.Source)
		assert.Equal(t, "built-in default", port.SourcePath)
	})

	t.Run("actorgraph.toml is preferred over am.toml", func(t *testing.T) {
		_, _ = configHome(t)
		writeFile(t, "am.toml", `
[explore]
starting_actor = "Emma Stone"
`)
		writeFile(t, "actorgraph.toml", `
[explore]
starting_actor = "Hugh Jackman"
`)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "Hugh Jackman", cfg.Explore.StartingActor)
		assert.Equal(t, "actorgraph.toml", filepath.Base(FindProjectConfig()))
	})

	t.Run("am.toml is found in a parent directory", func(t *testing.T) {
		_, project := configHome(t)
		writeFile(t, filepath.Join(project, "am.toml"), `
[server]
port = 9000
`)
		nested := filepath.Join(project, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0755))
		t.Chdir(nested)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, SourceProject, settingFor(t, "server.port").Source)
	})

	t.Run("unreadable layers are skipped", func(t *testing.T) {
		home, _ := configHome(t)
		writeFile(t, filepath.Join(home, ".actorgraph", "am.toml"), "this is [not toml")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	})
}
