package screenshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/webshot/pkg/config"
)

func testProfile(t *testing.T, name string) *config.Profile {
	t.Helper()
	profile, err := config.NewProfile(name, "/project", "tasks", "screenshots", nil, nil)
	require.NoError(t, err)
	return profile
}

func TestNewPathFunc_CounterSequence(t *testing.T) {
	profile := testProfile(t, "demo")
	taskFile := filepath.Join(profile.TasksDirPath(), "home.js")

	pathFn, err := NewPathFunc(profile, taskFile)
	require.NoError(t, err)

	base := filepath.Join(profile.ScreenshotsDirPath(), "home")

	// Suffix numbering is global across image types.
	first, err := pathFn("png", "")
	require.NoError(t, err)
	assert.Equal(t, base+".png", first)

	second, err := pathFn("png", "")
	require.NoError(t, err)
	assert.Equal(t, base+"-1.png", second)

	third, err := pathFn("jpeg", "")
	require.NoError(t, err)
	assert.Equal(t, base+"-2.jpg", third)
}

func TestNewPathFunc_NamedCalls(t *testing.T) {
	profile := testProfile(t, "demo")
	taskFile := filepath.Join(profile.TasksDirPath(), "home.js")
	base := filepath.Join(profile.ScreenshotsDirPath(), "home")

	t.Run("named paths are deterministic and skip the counter", func(t *testing.T) {
		pathFn, err := NewPathFunc(profile, taskFile)
		require.NoError(t, err)

		named, err := pathFn("png", "hero")
		require.NoError(t, err)
		assert.Equal(t, base+"-hero.png", named)

		again, err := pathFn("png", "hero")
		require.NoError(t, err)
		assert.Equal(t, named, again)

		// The unnamed counter was never consumed.
		unnamed, err := pathFn("png", "")
		require.NoError(t, err)
		assert.Equal(t, base+".png", unnamed)
	})

	t.Run("names are sanitized", func(t *testing.T) {
		pathFn, err := NewPathFunc(profile, taskFile)
		require.NoError(t, err)

		got, err := pathFn("png", "hero image (v2)!")
		require.NoError(t, err)
		assert.Equal(t, base+"-heroimagev2.png", got)
	})

	t.Run("distinct names can collapse after sanitization", func(t *testing.T) {
		pathFn, err := NewPathFunc(profile, taskFile)
		require.NoError(t, err)

		a, err := pathFn("png", "top.nav")
		require.NoError(t, err)
		b, err := pathFn("png", "top!nav")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestNewPathFunc_NestedTaskKeepsLocation(t *testing.T) {
	profile := testProfile(t, "demo")
	taskFile := filepath.Join(profile.TasksDirPath(), "pages", "more.js")

	pathFn, err := NewPathFunc(profile, taskFile)
	require.NoError(t, err)

	got, err := pathFn("png", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(profile.ScreenshotsDirPath(), "pages", "more.png"), got)
}

func TestNewPathFunc_SubprofileSplitsDirs(t *testing.T) {
	profile := testProfile(t, "demo_mobile")
	// The task lives in the parent's tasks dir but the screenshot goes
	// to the subprofile's own dir.
	taskFile := filepath.Join(profile.TasksDirPath(), "home.js")

	pathFn, err := NewPathFunc(profile, taskFile)
	require.NoError(t, err)

	got, err := pathFn("png", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/project", "screenshots", "demo_mobile", "home.png"), got)
	assert.Contains(t, taskFile, filepath.Join("tasks", "demo"))
}

func TestNewPathFunc_UnknownType(t *testing.T) {
	profile := testProfile(t, "demo")
	pathFn, err := NewPathFunc(profile, filepath.Join(profile.TasksDirPath(), "home.js"))
	require.NoError(t, err)

	_, err = pathFn("nyancat", "")
	require.Error(t, err)
	var typeErr *UnknownImageTypeError
	assert.ErrorAs(t, err, &typeErr)
	assert.Regexp(t, "unknown type", err.Error())

	// A failed call must not advance the counter.
	got, err := pathFn("png", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(profile.ScreenshotsDirPath(), "home.png"), got)
}

func TestNewPathFunc_TaskOutsideTasksDir(t *testing.T) {
	profile := testProfile(t, "demo")

	_, err := NewPathFunc(profile, "/elsewhere/home.js")
	assert.ErrorContains(t, err, "outside the tasks directory")

	_, err = NewPathFunc(profile, filepath.Join(profile.TasksDirPath(), "..", "other", "home.js"))
	assert.ErrorContains(t, err, "outside the tasks directory")
}
