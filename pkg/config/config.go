package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file webshot looks for in the project
// directory when no explicit path is given.
const DefaultFileName = "webshot.yaml"

const (
	defaultTasksDir       = "tasks"
	defaultScreenshotsDir = "screenshots"
)

// profileSpec is the on-disk shape of a single profile entry.
type profileSpec struct {
	Hooks map[string]string      `yaml:"hooks"`
	Data  map[string]interface{} `yaml:"data"`
}

// fileSpec is the on-disk shape of webshot.yaml.
type fileSpec struct {
	TasksDir       string                 `yaml:"tasksDir"`
	ScreenshotsDir string                 `yaml:"screenshotsDir"`
	Profiles       map[string]profileSpec `yaml:"profiles"`
}

// Config is a loaded project configuration.
type Config struct {
	root           string
	tasksDir       string
	screenshotsDir string
	profiles       map[string]profileSpec
}

// Load reads and validates the config file at path. The directory
// containing the file becomes the project root every profile path
// resolves against.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var spec fileSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	if spec.TasksDir == "" {
		spec.TasksDir = defaultTasksDir
	}
	if spec.ScreenshotsDir == "" {
		spec.ScreenshotsDir = defaultScreenshotsDir
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	cfg := &Config{
		root:           root,
		tasksDir:       spec.TasksDir,
		screenshotsDir: spec.ScreenshotsDir,
		profiles:       spec.Profiles,
	}

	// Validate every profile eagerly so a broken entry surfaces at load
	// time, not when the user happens to select it.
	for name := range spec.Profiles {
		if _, err := cfg.Profile(name); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// RootDirPath returns the project root directory.
func (c *Config) RootDirPath() string {
	return c.root
}

// ProfileNames returns the configured profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile builds the validated profile for name.
func (c *Config) Profile(name string) (*Profile, error) {
	spec, ok := c.profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile %q is not defined", name)
	}

	hooks := make(map[HookKey]string, len(spec.Hooks))
	for key, path := range spec.Hooks {
		hooks[HookKey(key)] = path
	}

	return NewProfile(name, c.root, c.tasksDir, c.screenshotsDir, hooks, spec.Data)
}
