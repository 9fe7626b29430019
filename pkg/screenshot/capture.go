package screenshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/entrhq/webshot/pkg/browser"
	"github.com/entrhq/webshot/pkg/config"
)

// CaptureOptions are the caller-facing knobs of one capture. Type is
// consulted only when it names a recognized format; everything else is
// forwarded to the browser capability.
type CaptureOptions struct {
	Type     string
	FullPage bool
	Quality  int
}

// CaptureFunc takes one screenshot of target. It is built per task and
// carries that task's path generator.
type CaptureFunc func(target browser.Target, name string, opts CaptureOptions) error

// EnsureDirFunc creates a directory tree if it does not exist. It must
// be idempotent and may race harmlessly across concurrent tasks.
type EnsureDirFunc func(path string) error

func defaultEnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Option customizes capture construction.
type Option func(*captureConfig)

type captureConfig struct {
	ensureDir EnsureDirFunc
}

// WithEnsureDir overrides the directory-creation capability.
func WithEnsureDir(fn EnsureDirFunc) Option {
	return func(c *captureConfig) {
		c.ensureDir = fn
	}
}

// NewCaptureFunc builds the screenshot function handed to one task.
// Each call resolves the destination path, creates the parent directory
// and delegates to the target's native capture. Errors from directory
// creation or the capture itself propagate unchanged; type validation
// errors surface before any filesystem side effect.
func NewCaptureFunc(profile *config.Profile, taskFilePath string, opts ...Option) (CaptureFunc, error) {
	cfg := captureConfig{ensureDir: defaultEnsureDir}
	for _, opt := range opts {
		opt(&cfg)
	}

	pathFn, err := NewPathFunc(profile, taskFilePath)
	if err != nil {
		return nil, err
	}

	return func(target browser.Target, name string, captureOpts CaptureOptions) error {
		imageType := captureOpts.Type
		if imageType == "" {
			imageType = "png"
		}

		dest, err := pathFn(imageType, name)
		if err != nil {
			return err
		}

		if err := cfg.ensureDir(filepath.Dir(dest)); err != nil {
			return fmt.Errorf("creating screenshot directory: %w", err)
		}

		// Destination path and resolved type override whatever the
		// caller put in its options.
		return target.Screenshot(browser.ScreenshotOptions{
			Path:     dest,
			Type:     imageType,
			FullPage: captureOpts.FullPage,
			Quality:  captureOpts.Quality,
		})
	}, nil
}
