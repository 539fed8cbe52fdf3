// SPDX-License-Identifier: MPL-2.0

package gamedir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CacheDirs are the game subdirectories regenerated by every build.
var CacheDirs = []string{"cache", "data", "gfx"} //nolint:gochecknoglobals // Fixed list.

// ClearCache recursively removes the CacheDirs under dir. Directories that
// do not exist are skipped. It returns the directories that were removed.
func ClearCache(dir string) ([]string, error) {
	var removed []string
	for _, name := range CacheDirs {
		path := filepath.Join(dir, name)
		if _, err := os.Lstat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("checking %s: %w", path, err)
		}
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("removing %s: %w", path, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}
