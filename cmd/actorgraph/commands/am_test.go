package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/actorgraph/am"
)

func TestPrintConfig(t *testing.T) {
	cfg := &am.Config{
		Database: am.DatabaseConfig{Backend: am.BackendSQLite, Path: "actors.db"},
		Explore:  am.ExploreConfig{ExpandLimit: 7},
	}

	tests := []struct {
		format string
		want   string
	}{
		{"toml", "expand_limit = 7"},
		{"yaml", "expand_limit: 7"},
		{"json", `"expand_limit": 7`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printConfig(&buf, cfg, tt.format))
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "actors.db")
		})
	}

	t.Run("json parses", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printConfig(&buf, cfg, "json"))
		var back am.Config
		require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, *cfg, back)
	})

	assert.Error(t, printConfig(&bytes.Buffer{}, cfg, "ini"))
}

func TestPrintSources(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSources(&buf, []am.SettingInfo{
		{Key: "server.port", Value: 4201, Source: am.SourceDefault},
		{Key: "explore.starting_actor", Value: "Hugh Jackman", Source: am.SourceProject, SourcePath: "/srv/actorgraph.toml"},
	}))

	out := buf.String()
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "server.port")
	assert.Contains(t, out, "project (/srv/actorgraph.toml)")
}
