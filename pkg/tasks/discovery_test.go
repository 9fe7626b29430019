package tasks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/webshot/pkg/config"
)

func discoveryProfile(t *testing.T, files ...string) *config.Profile {
	t.Helper()
	profile, err := config.NewProfile("demo", t.TempDir(), "tasks", "screenshots", nil, nil)
	require.NoError(t, err)
	for _, rel := range files {
		path := filepath.Join(profile.TasksDirPath(), filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("module.exports = function () {};\n"), 0o600))
	}
	return profile
}

func relPaths(t *testing.T, profile *config.Profile, abs []string) []string {
	t.Helper()
	rels := make([]string, len(abs))
	for i, p := range abs {
		rel, err := filepath.Rel(profile.TasksDirPath(), p)
		require.NoError(t, err)
		rels[i] = filepath.ToSlash(rel)
	}
	return rels
}

func TestFind_DefaultPatternMatchesEverything(t *testing.T) {
	profile := discoveryProfile(t, "a.js", "b/c.js", "b/d/e.js")

	found, err := Find(profile, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.js", "b/c.js", "b/d/e.js"}, relPaths(t, profile, found))
	for _, p := range found {
		assert.True(t, filepath.IsAbs(p))
	}
}

func TestFind_DeduplicatesAcrossPatterns(t *testing.T) {
	profile := discoveryProfile(t, "a.js", "b/c.js")

	found, err := Find(profile, []string{"**/*.js", "a.js"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.js", "b/c.js"}, relPaths(t, profile, found))
}

func TestFind_PatternsResolveIndependently(t *testing.T) {
	profile := discoveryProfile(t, "a.js", "b/c.js", "notes.txt")

	found, err := Find(profile, []string{"*.txt", "b/*.js"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"notes.txt", "b/c.js"}, relPaths(t, profile, found))
}

func TestFind_ExcludesDirectories(t *testing.T) {
	profile := discoveryProfile(t, "b/c.js")

	found, err := Find(profile, []string{"**"})
	require.NoError(t, err)

	assert.Equal(t, []string{"b/c.js"}, relPaths(t, profile, found))
}

func TestFind_NoTasksFound(t *testing.T) {
	t.Run("empty tasks directory", func(t *testing.T) {
		profile := discoveryProfile(t)
		require.NoError(t, os.MkdirAll(profile.TasksDirPath(), 0o755))

		_, err := Find(profile, []string{"**/*.js"})
		assert.ErrorIs(t, err, ErrNoTasksFound)
	})

	t.Run("missing tasks directory", func(t *testing.T) {
		profile := discoveryProfile(t)

		_, err := Find(profile, nil)
		assert.ErrorIs(t, err, ErrNoTasksFound)
	})

	t.Run("patterns that match nothing", func(t *testing.T) {
		profile := discoveryProfile(t, "a.js")

		_, err := Find(profile, []string{"*.ts"})
		assert.ErrorIs(t, err, ErrNoTasksFound)
	})
}

func TestFind_InvalidPattern(t *testing.T) {
	profile := discoveryProfile(t, "a.js")

	_, err := Find(profile, []string{"[unclosed"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTasksFound)
}
