// Package screenshot derives collision-free output paths for captures
// and wraps the browser's pixel capture with directory creation.
package screenshot

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/entrhq/webshot/pkg/config"
)

// imageTypes maps recognized capture formats to file extensions.
var imageTypes = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
}

// UnknownImageTypeError reports a capture request for an unsupported
// format.
type UnknownImageTypeError struct {
	Type string
}

func (e *UnknownImageTypeError) Error() string {
	return fmt.Sprintf("unknown type %q: screenshot type must be one of png, jpeg", e.Type)
}

// sanitizePattern removes every character a user-supplied screenshot
// name may not contribute to a file name. Distinct names can collapse
// to the same sanitized form; the last capture then wins.
var sanitizePattern = regexp.MustCompile(`[^0-9A-Za-z_-]+`)

// PathFunc produces the destination path for one capture. An empty
// name selects the auto-incrementing suffix; a non-empty name is
// sanitized and appended without consuming the counter.
type PathFunc func(imageType, name string) (string, error)

// NewPathFunc builds a path generator for one task of one profile. The
// task file must lie inside the profile's tasks directory; its relative
// location, minus the script extension, becomes the base name under the
// profile's screenshots directory.
//
// The unnamed-capture counter is private to the returned closure: the
// first unnamed call gets no suffix, later ones get -1, -2, and so on,
// numbering shared across image types. The closure is owned by a single
// task's goroutine and is not safe for concurrent use.
func NewPathFunc(profile *config.Profile, taskFilePath string) (PathFunc, error) {
	tasksDir := profile.TasksDirPath()
	rel, err := filepath.Rel(tasksDir, taskFilePath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("task file %s is outside the tasks directory %s", taskFilePath, tasksDir)
	}

	base := strings.TrimSuffix(rel, filepath.Ext(rel))
	prefix := filepath.Join(profile.ScreenshotsDirPath(), base)

	counter := 0
	return func(imageType, name string) (string, error) {
		ext, ok := imageTypes[imageType]
		if !ok {
			return "", &UnknownImageTypeError{Type: imageType}
		}

		var suffix string
		if name == "" {
			if counter > 0 {
				suffix = fmt.Sprintf("-%d", counter)
			}
			counter++
		} else {
			suffix = "-" + sanitizePattern.ReplaceAllString(name, "")
		}

		return prefix + suffix + ext, nil
	}, nil
}
