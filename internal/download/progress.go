// SPDX-License-Identifier: MPL-2.0

package download

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const bytesPerMB = 1024 * 1024

// FormatMB renders a byte count in mebibytes with two decimals.
func FormatMB(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/bytesPerMB)
}

// ProgressLine renders the single-line progress report, e.g.
// "downloaded: 1.50 MB / 200.00 MB".
func ProgressLine(downloaded, total int64) string {
	return "downloaded: " + FormatMB(downloaded) + " / " + FormatMB(total)
}

// Purge removes every cached archive and leftover ".part" file from dir and
// returns the number of files removed. A missing dir is not an error.
func Purge(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading download directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("removing %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}
