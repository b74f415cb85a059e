package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framewalk/internal/probe"
	"github.com/roach88/framewalk/internal/store"
)

func TestRunCommand_RealTime(t *testing.T) {
	stdout, _, err := executeRoot(t, "--format", "json", "run",
		"--steps", "3", "--interval", "15", "--frame", "5", "--main-work", "0", "--downstream", "5")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 4, resp.Data.Steps)
	assert.Equal(t, 0, resp.Data.Unresolved)
	assert.Equal(t, 4, resp.Data.Probe.Count)
	assert.Equal(t, 4, resp.Data.EndToEnd.Count)
	assert.GreaterOrEqual(t, resp.Data.Probe.Min, time.Duration(0))
	// Every frame spends the downstream cost after presentation; allow
	// for the clock reads between commit and the probe's resolution.
	assert.GreaterOrEqual(t, resp.Data.EndToEnd.Min, resp.Data.Probe.Min+4*time.Millisecond)
}

func TestRunCommand_Archives(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	stdout, _, err := executeRoot(t, "run", "--steps", "2", "--interval", "10", "--frame", "5", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "run    ")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Empty(t, runs[0].Scenario)
	assert.Equal(t, 0, runs[0].Unresolved)

	samples, err := st.ReadSamples(context.Background(), runs[0].ID)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	for i, s := range samples {
		assert.Equal(t, int64(i+1), s.Seq)
		assert.Equal(t, s.Presented-s.Issued, s.Latency)
	}
}

func TestRunCommand_InvalidBounds(t *testing.T) {
	stdout, _, err := executeRoot(t, "run", "--height", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "INVALID_BOUNDS")
}

func TestTrialSettle_CountsUnresolved(t *testing.T) {
	// A presenter that never presents.
	p := probe.New(probe.PresenterFunc(func(func()) {}))
	tr := &trial{
		visible:   make(map[int64]time.Time),
		visibleCh: make(chan struct{}, 2),
	}
	tr.pendings = append(tr.pendings, p.Arm(), p.Arm())

	start := time.Now()
	assert.Equal(t, 2, tr.settle(context.Background(), 20*time.Millisecond))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 2, p.Outstanding())
}
