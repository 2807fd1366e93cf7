package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	SetVersion("test-version-1.0.0")
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "pagesmith version test-version-1.0.0")
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()

	version = "dev"
	SetVersion("")
	assert.Equal(t, "dev", version)
}
