// Package config loads the webshot project configuration and exposes
// profiles: named units that define where task scripts live, where
// screenshots are written, which lifecycle hooks run, and arbitrary
// user data handed to every task.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// HookKey identifies a lifecycle hook slot on a profile.
type HookKey string

const (
	// HookBeforeAll runs once before the task batch and may register
	// extra arguments for every task.
	HookBeforeAll HookKey = "beforeAll"
	// HookAfterAll runs once after every task has been attempted.
	HookAfterAll HookKey = "afterAll"
)

// hookKeys lists the recognized lifecycle hook slots.
var hookKeys = []HookKey{HookBeforeAll, HookAfterAll}

// IsValidHookKey reports whether key names a recognized lifecycle slot.
func IsValidHookKey(key HookKey) bool {
	for _, k := range hookKeys {
		if k == key {
			return true
		}
	}
	return false
}

// profileNamePattern constrains profile names to a base segment with at
// most one underscore-separated variant segment (a "subprofile").
var profileNamePattern = regexp.MustCompile(`^[0-9A-Za-z]+(_[0-9A-Za-z]+)?$`)

// InvalidNameError reports a profile name that does not match the
// required pattern.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid profile name %q: must match %s", e.Name, profileNamePattern.String())
}

// InvalidDataError reports a structurally invalid profile definition.
type InvalidDataError struct {
	Name   string
	Reason string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("invalid profile %q: %s", e.Name, e.Reason)
}

// Profile is a validated, read-only configuration unit. A name
// containing an underscore designates a subprofile: it shares the task
// directory of its parent segment but gets its own screenshot directory.
type Profile struct {
	name           string
	root           string
	tasksDir       string
	screenshotsDir string
	hooks          map[HookKey]string
	data           map[string]interface{}
}

// NewProfile builds a profile rooted at the project directory root.
// tasksDir and screenshotsDir are the base directories (relative to
// root) under which per-profile subdirectories are resolved. Hook paths
// are kept relative to root. Name validity is enforced here; no profile
// observable to the rest of the system violates it.
func NewProfile(name, root, tasksDir, screenshotsDir string, hooks map[HookKey]string, data map[string]interface{}) (*Profile, error) {
	if !profileNamePattern.MatchString(name) {
		return nil, &InvalidNameError{Name: name}
	}
	copied := make(map[HookKey]string, len(hooks))
	for key, path := range hooks {
		if !IsValidHookKey(key) {
			return nil, &InvalidDataError{Name: name, Reason: fmt.Sprintf("unknown hook key %q", key)}
		}
		if path == "" {
			return nil, &InvalidDataError{Name: name, Reason: fmt.Sprintf("hook %q has an empty path", key)}
		}
		if filepath.IsAbs(path) {
			return nil, &InvalidDataError{Name: name, Reason: fmt.Sprintf("hook %q path must be relative to the project root", key)}
		}
		copied[key] = path
	}
	return &Profile{
		name:           name,
		root:           root,
		tasksDir:       tasksDir,
		screenshotsDir: screenshotsDir,
		hooks:          copied,
		data:           data,
	}, nil
}

// Name returns the full profile name.
func (p *Profile) Name() string {
	return p.name
}

// ParentName returns the segment before the first underscore. For a
// plain profile this is the name itself.
func (p *Profile) ParentName() string {
	if idx := strings.Index(p.name, "_"); idx >= 0 {
		return p.name[:idx]
	}
	return p.name
}

// IsSubprofile reports whether the profile is an underscore variant of
// a parent profile.
func (p *Profile) IsSubprofile() bool {
	return strings.Contains(p.name, "_")
}

// RootDirPath returns the project root directory the profile was
// loaded from. Hook paths resolve against it.
func (p *Profile) RootDirPath() string {
	return p.root
}

// TasksDirPath returns the directory holding the profile's task
// scripts. Subprofiles share their parent's directory.
func (p *Profile) TasksDirPath() string {
	return filepath.Join(p.root, p.tasksDir, p.ParentName())
}

// ScreenshotsDirPath returns the directory screenshots are written
// under. Unlike tasks, subprofiles get their own directory.
func (p *Profile) ScreenshotsDirPath() string {
	return filepath.Join(p.root, p.screenshotsDir, p.name)
}

// HookPath returns the absolute path of the hook script bound to key,
// or ok=false when the profile declares none.
func (p *Profile) HookPath(key HookKey) (string, bool) {
	rel, ok := p.hooks[key]
	if !ok {
		return "", false
	}
	return filepath.Join(p.root, rel), true
}

// Data returns the user-supplied payload verbatim. Callers must treat
// it as read-only; it is shared across every task invocation.
func (p *Profile) Data() map[string]interface{} {
	return p.data
}
