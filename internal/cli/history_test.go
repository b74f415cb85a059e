package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCommand_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	stdout, _, err := executeRoot(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No runs archived.\n", stdout)
}

func TestHistoryCommand_ListAndShow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	simulateInto(t, db, "sim-fast", 0)
	simulateInto(t, db, "sim-slow", 25)

	stdout, _, err := executeRoot(t, "history", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	// Same start time; ties break by ID descending.
	assert.True(t, strings.HasPrefix(lines[0], "sim-slow"))
	assert.True(t, strings.HasPrefix(lines[1], "sim-fast"))
	assert.Contains(t, lines[0], "probe median=12ms  end-to-end median=37ms")

	stdout, _, err = executeRoot(t, "history", "--db", db, "sim-slow")
	require.NoError(t, err)
	assert.Contains(t, stdout, "run      sim-slow\n")
	assert.Contains(t, stdout, "scenario simulate\n")
	assert.Contains(t, stdout, "walk     seed=42 board=20x20 origin=(10,10) steps=10 interval=50ms\n")
	assert.Contains(t, stdout, "host     frame=16ms main-work=2ms downstream=25ms\n")
	assert.Contains(t, stdout, "unseen by probe (median): 25ms")
}

func TestHistoryCommand_JSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	simulateInto(t, db, "sim-1", 10)

	stdout, _, err := executeRoot(t, "--format", "json", "history", "--db", db, "sim-1")
	require.NoError(t, err)

	var resp struct {
		Data RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "sim-1", resp.Data.ID)
	assert.Equal(t, 11, resp.Data.Probe.Count)
	assert.Equal(t, 10*time.Millisecond, resp.Data.Gap())
}

func TestHistoryCommand_FilterByConfig(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	simulateInto(t, db, "sim-1", 0)

	stdout, _, err := executeRoot(t, "history", "--db", db, "--config", "no-such-hash")
	require.NoError(t, err)
	assert.Equal(t, "No runs archived.\n", stdout)
}

func TestHistoryCommand_NotFound(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	_, _, err := executeRoot(t, "history", "--db", db, "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found")
}
