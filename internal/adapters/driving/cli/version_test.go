package cli

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	saved := version
	version = v
	t.Cleanup(func() { version = saved })
}

func TestVersion_Full(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	withVersion(t, "1.4.0")

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "regula version 1.4.0")
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersion_Short(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	withVersion(t, "dev")

	out, err := execute(t, "version", "--short")

	require.NoError(t, err)
	assert.Equal(t, "dev", strings.TrimSpace(out))
}

func TestVersion_RejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "version", "extra")

	assert.Error(t, err)
}
