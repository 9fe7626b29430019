// Package logging provides the logger factory handed to tasks and
// hooks. Level and output are explicit configuration created once at
// process start and threaded down; there is no process-global level.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CoreName is the component name reserved for the runner itself. The
// factory rejects it for user code.
const CoreName = "core"

// Config controls how loggers produced by a Factory behave.
type Config struct {
	// Level is a logrus level name (trace, debug, info, warn, error,
	// fatal, panic). Empty means info.
	Level string
	// Output receives all log lines. Nil means stderr.
	Output io.Writer
}

// Factory creates named component loggers for one run. Every entry
// carries the run ID so interleaved worker output can be correlated.
type Factory struct {
	logger *logrus.Logger
	runID  string
}

// NewFactory builds a factory from cfg.
func NewFactory(cfg Config) (*Factory, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Factory{
		logger: logger,
		runID:  uuid.New().String(),
	}, nil
}

// GetLogger returns a leveled logger for the named component. The name
// "core" is reserved for the runner and rejected here.
func (f *Factory) GetLogger(name string) (*logrus.Entry, error) {
	if name == "" {
		return nil, fmt.Errorf("logger name must not be empty")
	}
	if name == CoreName {
		return nil, fmt.Errorf("logger name %q is reserved", CoreName)
	}
	return f.entry(name), nil
}

// Core returns the runner's own logger.
func (f *Factory) Core() *logrus.Entry {
	return f.entry(CoreName)
}

// RunID returns the identifier attached to every entry from this
// factory.
func (f *Factory) RunID() string {
	return f.runID
}

// Level returns the factory's configured level.
func (f *Factory) Level() logrus.Level {
	return f.logger.GetLevel()
}

func (f *Factory) entry(name string) *logrus.Entry {
	return f.logger.WithFields(logrus.Fields{
		"component": name,
		"run":       f.runID,
	})
}
