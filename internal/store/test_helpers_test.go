package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/framewalk/internal/host"
	"github.com/roach88/framewalk/internal/walk"
)

var testStart = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with a small walk and the default host.
func createTestRun(id string, startedAt time.Time) Run {
	cfg := walk.Config{
		Seed:     "42",
		Bounds:   walk.Bounds{Height: 20, Width: 20},
		Origin:   walk.DefaultOrigin,
		MaxSteps: 3,
		Interval: 50 * time.Millisecond,
	}
	return Run{
		ID:         id,
		Walk:       cfg,
		Host:       host.DefaultConfig(),
		ConfigHash: cfg.Hash(),
		StartedAt:  startedAt,
	}
}
