package walk

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Seed:     "42",
		Bounds:   Bounds{Height: 20, Width: 20},
		Origin:   DefaultOrigin,
		MaxSteps: 10,
	}
}

func positions(steps []Step) []Position {
	out := make([]Position, len(steps))
	for i, s := range steps {
		out[i] = s.Position
	}
	return out
}

func TestSteps_KnownWalk(t *testing.T) {
	steps, err := Steps(testConfig())
	require.NoError(t, err)

	expected := []Position{
		{10, 10}, {10, 9}, {9, 9}, {9, 10}, {10, 10}, {9, 10},
		{8, 10}, {8, 9}, {9, 9}, {9, 8}, {8, 8},
	}
	assert.Equal(t, expected, positions(steps))
	for i, s := range steps {
		assert.Equal(t, i, s.Index)
	}
}

func TestSteps_Deterministic(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSteps = 500

	first, err := Steps(cfg)
	require.NoError(t, err)
	second, err := Steps(cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSteps_SeedChangesWalk(t *testing.T) {
	a, err := Steps(testConfig())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Seed = "demo"
	b, err := Steps(cfg)
	require.NoError(t, err)

	assert.NotEqual(t, positions(a), positions(b))
}

func TestSteps_StaysInBounds(t *testing.T) {
	boards := []Bounds{
		{1, 1}, {1, 5}, {5, 1}, {2, 2}, {3, 7}, {20, 20},
	}
	for _, b := range boards {
		t.Run(fmt.Sprintf("%dx%d", b.Height, b.Width), func(t *testing.T) {
			cfg := Config{
				Seed:     "bounds",
				Bounds:   b,
				Origin:   Position{Row: b.Height - 1, Col: 0},
				MaxSteps: 2000,
			}
			steps, err := Steps(cfg)
			require.NoError(t, err)
			require.Len(t, steps, cfg.MaxSteps+1)

			for _, s := range steps {
				require.True(t, b.Contains(s.Position), "step %d at %s", s.Index, s.Position)
			}
		})
	}
}

func TestSteps_SingleSquareNeverMoves(t *testing.T) {
	cfg := Config{
		Seed:     "42",
		Bounds:   Bounds{Height: 1, Width: 1},
		MaxSteps: 5,
	}
	steps, err := Steps(cfg)
	require.NoError(t, err)

	require.Len(t, steps, 6)
	for _, s := range steps {
		assert.Equal(t, Position{0, 0}, s.Position)
	}
}

func TestSteps_NarrowColumnBoundaryPolicy(t *testing.T) {
	cfg := Config{
		Seed:     "42",
		Bounds:   Bounds{Height: 3, Width: 1},
		MaxSteps: 8,
	}
	steps, err := Steps(cfg)
	require.NoError(t, err)

	// From row 0 the walk can only go down, from row 2 only up.
	expected := []Position{
		{0, 0}, {0, 0}, {0, 0}, {1, 0}, {1, 0}, {1, 0}, {2, 0}, {1, 0}, {0, 0},
	}
	assert.Equal(t, expected, positions(steps))
}

func TestSteps_MovesOneSquareAtATime(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSteps = 1000
	steps, err := Steps(cfg)
	require.NoError(t, err)

	for i := 1; i < len(steps); i++ {
		dr := abs(steps[i].Row - steps[i-1].Row)
		dc := abs(steps[i].Col - steps[i-1].Col)
		require.Equal(t, 1, dr+dc, "step %d moved from %s to %s", i, steps[i-1].Position, steps[i].Position)
	}
}

func TestWalker_NextTerminates(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSteps = 3
	w, err := NewWalker(cfg)
	require.NoError(t, err)

	assert.Equal(t, 4, w.Remaining())
	origin, ok := w.Next()
	require.True(t, ok)
	assert.Equal(t, Step{Index: 0, Position: DefaultOrigin}, origin)

	for i := 1; i <= 3; i++ {
		s, ok := w.Next()
		require.True(t, ok)
		assert.Equal(t, i, s.Index)
	}
	assert.Equal(t, 0, w.Remaining())

	_, ok = w.Next()
	assert.False(t, ok)
	_, ok = w.Next()
	assert.False(t, ok)
}

func TestWalker_ZeroStepsDeliversOnlyOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSteps = 0
	steps, err := Steps(cfg)
	require.NoError(t, err)

	require.Len(t, steps, 1)
	assert.Equal(t, DefaultOrigin, steps[0].Position)
}

func TestNewWalker_InvalidBounds(t *testing.T) {
	tests := []struct {
		name   string
		bounds Bounds
		origin Position
	}{
		{"zero height", Bounds{0, 20}, Position{}},
		{"negative width", Bounds{20, -1}, Position{}},
		{"origin row outside", Bounds{20, 20}, Position{20, 0}},
		{"origin col negative", Bounds{20, 20}, Position{0, -1}},
		{"default origin on small board", Bounds{5, 5}, DefaultOrigin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWalker(Config{Seed: "x", Bounds: tt.bounds, Origin: tt.origin, MaxSteps: 1})
			require.Error(t, err)
			assert.True(t, IsInvalidBounds(err))
			assert.False(t, IsInvalidConfig(err))
		})
	}
}

func TestNewWalker_NegativeMaxSteps(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSteps = -1
	_, err := NewWalker(cfg)
	require.Error(t, err)
	assert.True(t, IsInvalidConfig(err))
}

func TestConfigError_Message(t *testing.T) {
	_, err := NewWalker(Config{Bounds: Bounds{5, 5}, Origin: DefaultOrigin})
	require.Error(t, err)
	assert.Equal(t, "INVALID_BOUNDS: origin lies outside the board (board=5x5, origin=(10,10))", err.Error())

	wrapped := fmt.Errorf("starting walk: %w", err)
	assert.True(t, IsInvalidBounds(wrapped))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
