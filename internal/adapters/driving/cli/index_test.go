package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regula/internal/core/domain"
)

func TestIndexCmd_Flags(t *testing.T) {
	force := indexCmd.Flags().Lookup("force")
	require.NotNil(t, force)
	assert.Equal(t, "f", force.Shorthand)
	assert.NotNil(t, indexCmd.Flags().Lookup("workers"))
}

func TestIndexCmd_Executes(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "index", "--force", "--workers", "8")

	require.NoError(t, err)
	assert.True(t, ts.index.force)
	assert.Equal(t, 8, ts.index.workers)
	assert.Contains(t, out, "Indexed:  142/143 chunks")
	assert.Contains(t, out, "Duration: 3s")
	assert.Contains(t, out, "jzsj_5.1.1_1: rate limited")
}

func TestIndexCmd_DefaultNotForced(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "index")

	require.NoError(t, err)
	assert.False(t, ts.index.force)
	assert.Zero(t, ts.index.workers)
}

func TestIndexStatusCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "index", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Run:      run-1")
	assert.Contains(t, out, "Started:  2026-10-01T09:00:00Z")
}

func TestIndexStatusCmd_NoRuns(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.lastErr = domain.ErrNotFound

	out, err := execute(t, "index", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "No index builds recorded.")
}
