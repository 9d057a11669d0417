package display

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldOutputJSON(t *testing.T) {
	newCmd := func() (*cobra.Command, *cobra.Command) {
		root := &cobra.Command{Use: "root"}
		child := &cobra.Command{Use: "child", Run: func(*cobra.Command, []string) {}}
		child.Flags().Bool("json", false, "")
		root.AddCommand(child)
		return root, child
	}

	_, child := newCmd()
	assert.False(t, ShouldOutputJSON(child))

	_, child = newCmd()
	require.NoError(t, child.Flags().Set("json", "true"))
	assert.True(t, ShouldOutputJSON(child))

	assert.False(t, ShouldOutputJSON(nil))
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputJSON(&buf, map[string]int{"nodes": 3}))
	assert.Equal(t, "{\n  \"nodes\": 3\n}\n", buf.String())

	Compact = true
	defer func() { Compact = false }()
	buf.Reset()
	require.NoError(t, OutputJSON(&buf, map[string]int{"nodes": 3}))
	assert.Equal(t, "{\"nodes\":3}\n", buf.String())
}
