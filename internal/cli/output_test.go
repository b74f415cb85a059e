package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framewalk/internal/stats"
)

func TestExitError(t *testing.T) {
	inner := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to open database", inner)

	assert.Equal(t, "failed to open database: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("x")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))

	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestOutputFormatter_SuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"steps": 3}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"steps": float64(3)}, resp.Data)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Error(ErrCodeInvalidConfig, "bad board", "details"))
	assert.Equal(t, "Error [E_INVALID_CONFIG]: bad board\n", buf.String())
}

func TestOutputFormatter_FailureTextWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Failure("data", ErrCodeTestFailed, "1 failed"))
	assert.Empty(t, buf.String())
}

func TestOutputFormatter_VerboseLogToErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut, Verbose: true}

	f.VerboseLog("found %d", 2)
	assert.Empty(t, out.String())
	assert.Equal(t, "found 2\n", errOut.String())

	f.Verbose = false
	f.VerboseLog("hidden")
	assert.Equal(t, "found 2\n", errOut.String())
}

func TestWriteReport(t *testing.T) {
	probe := stats.Summarize([]time.Duration{10 * time.Millisecond, 12 * time.Millisecond})
	e2e := stats.Summarize([]time.Duration{35 * time.Millisecond, 37 * time.Millisecond})
	r := LatencyReport{Probe: probe, EndToEnd: e2e}
	assert.Equal(t, 25*time.Millisecond, r.Gap())

	var buf bytes.Buffer
	writeReport(&buf, r)
	assert.Contains(t, buf.String(), "probe       n=2 min=10ms")
	assert.Contains(t, buf.String(), "end-to-end  n=2 min=35ms")
	assert.Contains(t, buf.String(), "unseen by probe (median): 25ms")

	buf.Reset()
	writeReport(&buf, LatencyReport{Probe: probe})
	assert.Contains(t, buf.String(), "end-to-end  not observed")
}
