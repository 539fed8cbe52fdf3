// SPDX-License-Identifier: MPL-2.0

package gamedir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ReceiptFile is the install receipt's file name inside the game directory.
const ReceiptFile = ".cdda-updater.toml"

// Receipt records what was installed into the game directory and when.
// It is informational: VERSION.txt stays authoritative for update checks.
type Receipt struct {
	Release     string    `toml:"release"`
	Build       string    `toml:"build"`
	Asset       string    `toml:"asset"`
	PublishedAt time.Time `toml:"published_at"`
	InstalledAt time.Time `toml:"installed_at"`
}

// WriteReceipt stores r as dir/.cdda-updater.toml.
func WriteReceipt(dir string, r Receipt) error {
	data, err := toml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding receipt: %w", err)
	}

	path := filepath.Join(dir, ReceiptFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadReceipt loads dir/.cdda-updater.toml. It returns (nil, nil) when no
// receipt has been written yet.
func ReadReceipt(dir string) (*Receipt, error) {
	path := filepath.Join(dir, ReceiptFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil //nolint:nilnil // Absent receipt is a normal state.
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var r Receipt
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &r, nil
}
