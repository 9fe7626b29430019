package tasks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/entrhq/webshot/pkg/config"
)

// DefaultPattern matches every file recursively under the tasks
// directory.
const DefaultPattern = "**"

// ErrNoTasksFound is returned when discovery resolves zero task files.
// It is a hard stop for the run; the browser is never launched.
var ErrNoTasksFound = errors.New("no tasks found")

// Find resolves glob patterns against the profile's tasks directory
// into absolute, deduplicated task file paths. An empty pattern list
// falls back to DefaultPattern. Directories are excluded. A path
// matched by several patterns appears once, at its first match
// position; callers must not rely on ordering beyond that.
func Find(profile *config.Profile, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}

	matchers := make([][]glob.Glob, len(patterns))
	for i, pattern := range patterns {
		compiled, err := compilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid task pattern %q: %w", pattern, err)
		}
		matchers[i] = compiled
	}

	dir := profile.TasksDirPath()
	files, err := listFiles(dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var found []string
	for _, matcher := range matchers {
		for _, rel := range files {
			if !matchesAny(matcher, rel) {
				continue
			}
			abs := filepath.Join(dir, filepath.FromSlash(rel))
			if _, dup := seen[abs]; dup {
				continue
			}
			seen[abs] = struct{}{}
			found = append(found, abs)
		}
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w matching %v under %s", ErrNoTasksFound, patterns, dir)
	}
	return found, nil
}

// compilePattern compiles a pattern with '/' as the separator. A
// leading "**/" is also compiled without the prefix so such patterns
// cover files at the top of the tasks directory.
func compilePattern(pattern string) ([]glob.Glob, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}
	compiled := []glob.Glob{g}

	if trimmed, ok := strings.CutPrefix(pattern, "**/"); ok && trimmed != "" {
		tg, err := glob.Compile(trimmed, '/')
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, tg)
	}
	return compiled, nil
}

func matchesAny(matchers []glob.Glob, rel string) bool {
	for _, m := range matchers {
		if m.Match(rel) {
			return true
		}
	}
	return false
}

// listFiles walks dir and returns slash-separated file paths relative
// to it. A missing directory yields an empty list so discovery reports
// ErrNoTasksFound instead of an I/O error.
func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking tasks directory %s: %w", dir, err)
	}
	return files, nil
}
