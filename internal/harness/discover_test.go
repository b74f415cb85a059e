package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverScenarios_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.cue", "c.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	paths, err := DiscoverScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.cue"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "c.yml"),
	}, paths)
}

func TestDiscoverScenarios_MissingDir(t *testing.T) {
	_, err := DiscoverScenarios(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	var dirErr *ScenarioDirError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "does not exist", dirErr.Reason)
}

func TestDiscoverScenarios_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := DiscoverScenarios(path)
	var dirErr *ScenarioDirError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "not a directory", dirErr.Reason)
}

func TestIsScenarioFile(t *testing.T) {
	assert.True(t, IsScenarioFile("x.yaml"))
	assert.True(t, IsScenarioFile("x.yml"))
	assert.True(t, IsScenarioFile("x.cue"))
	assert.False(t, IsScenarioFile("x.json"))
	assert.False(t, IsScenarioFile("x"))
}
