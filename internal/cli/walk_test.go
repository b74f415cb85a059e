package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framewalk/internal/walk"
)

func TestWalkCommand_Text(t *testing.T) {
	stdout, _, err := executeRoot(t, "walk", "--seed", "42", "--steps", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "config "))
	assert.Equal(t, "   0 (10,10)", lines[1])
	assert.Equal(t, "   1 (10,9)", lines[2])
	assert.Equal(t, "   2 (9,9)", lines[3])
	assert.Equal(t, "   3 (9,10)", lines[4])
}

func TestWalkCommand_JSON(t *testing.T) {
	stdout, _, err := executeRoot(t, "walk", "--format", "json", "--steps", "2",
		"--height", "3", "--width", "3", "--origin-row", "0", "--origin-col", "0")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   WalkResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Steps, 3)
	assert.Equal(t, walk.Step{Index: 0, Position: walk.Position{}}, resp.Data.Steps[0])

	cfg := walk.Config{
		Seed:     "42",
		Bounds:   walk.Bounds{Height: 3, Width: 3},
		MaxSteps: 2,
		Interval: 50_000_000,
	}
	assert.Equal(t, cfg.Hash(), resp.Data.ConfigHash)
}

func TestWalkCommand_InvalidBounds(t *testing.T) {
	tests := [][]string{
		{"walk", "--height", "0", "--width", "10"},
		{"walk", "--height", "10", "--width", "10", "--origin-row", "15"},
	}
	for _, args := range tests {
		stdout, _, err := executeRoot(t, args...)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.True(t, walk.IsInvalidBounds(err))
		assert.Contains(t, stdout, "INVALID_BOUNDS")
	}
}
