// SPDX-License-Identifier: MPL-2.0

package gamedir

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// VersionFile is the file every build ships with at its root.
	VersionFile = "VERSION.txt"

	buildNumberKey = "build number"
)

// ErrBuildNumberMissing is returned when VERSION.txt exists but has no
// "build number" line.
var ErrBuildNumberMissing = errors.New("VERSION.txt has no build number line")

// BuildNumber returns the build number recorded in dir/VERSION.txt, or ""
// when the file does not exist (no installation yet). The value is the text
// after the last ':' on the first line that starts with "build number".
func BuildNumber(dir string) (string, error) {
	path := filepath.Join(dir, VersionFile)

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() // read-only file handle

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, buildNumberKey) {
			continue
		}
		value := line[strings.LastIndex(line, ":")+1:]
		return strings.TrimSpace(value), nil
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return "", fmt.Errorf("%s: %w", path, ErrBuildNumberMissing)
}
