package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("loads profiles with defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, `
profiles:
  demo:
    data:
      baseUrl: https://example.com
  demo_mobile: {}
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"demo", "demo_mobile"}, cfg.ProfileNames())

		profile, err := cfg.Profile("demo")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cfg.RootDirPath(), "tasks", "demo"), profile.TasksDirPath())
		assert.Equal(t, "https://example.com", profile.Data()["baseUrl"])

		variant, err := cfg.Profile("demo_mobile")
		require.NoError(t, err)
		assert.Equal(t, profile.TasksDirPath(), variant.TasksDirPath())
	})

	t.Run("honors custom directories and hooks", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, `
tasksDir: scripts
screenshotsDir: shots
profiles:
  demo:
    hooks:
      beforeAll: hooks/before.js
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		profile, err := cfg.Profile("demo")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cfg.RootDirPath(), "scripts", "demo"), profile.TasksDirPath())
		assert.Equal(t, filepath.Join(cfg.RootDirPath(), "shots", "demo"), profile.ScreenshotsDirPath())

		hook, ok := profile.HookPath(HookBeforeAll)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(cfg.RootDirPath(), "hooks", "before.js"), hook)
	})

	t.Run("rejects invalid profile names at load time", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, `
profiles:
  bad-name: {}
`)

		_, err := Load(path)
		var nameErr *InvalidNameError
		require.ErrorAs(t, err, &nameErr)
	})

	t.Run("rejects unknown hook keys at load time", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, `
profiles:
  demo:
    hooks:
      beforeEach: hooks/x.js
`)

		_, err := Load(path)
		var dataErr *InvalidDataError
		require.ErrorAs(t, err, &dataErr)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("undefined profile", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "profiles:\n  demo: {}\n")

		cfg, err := Load(path)
		require.NoError(t, err)

		_, err = cfg.Profile("other")
		assert.ErrorContains(t, err, "not defined")
	})
}
