package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
	assert.Equal(t, "0123456", Info{CommitHash: "0123456789abcdef"}.Short())
}

func TestString(t *testing.T) {
	i := Info{Version: "v1.2.0", CommitHash: "0123456789", BuildTime: "2026-01-01"}
	assert.Equal(t, "actorgraph v1.2.0 (commit 0123456, built 2026-01-01)", i.String())
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "actorgraph/"+Version, UserAgent())
}
